package info

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"tableflip.dev/rollcall/pkg/glyph"
	"tableflip.dev/rollcall/pkg/store"
)

type Info struct {
	Config      store.Config
	Persistence store.Persistence
}

func (n *Info) Do(ctx context.Context) error {

	if override := os.Getenv("ROLLCALL_CONFIG_PATH"); override != "" {
		fmt.Println("ROLLCALL_CONFIG_PATH found on env, using ", override)
	} else {
		fmt.Println("ROLLCALL_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	fmt.Println("Config.path: ", n.Config.BasePath())

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}

	fmt.Printf("Streams:\n")
	foundStreams := 0
	for _, s := range n.Persistence.Streams(ctx) {
		if s.Name != "" {
			fmt.Printf("  %s (%s)\n", s.ID, s.Name)
		} else {
			fmt.Printf("  %s\n", s.ID)
		}
		foundStreams++
	}
	if foundStreams == 0 {
		fmt.Printf("  %s\n", "no streams")
	}

	legend, err := renderLegend()
	if err != nil {
		return err
	}
	fmt.Print(legend)

	return nil
}

// renderLegend builds the notation key as markdown and renders it for the
// terminal.
func renderLegend() (string, error) {
	md := strings.Builder{}
	md.WriteString("# Notation\n\n")
	md.WriteString("| Symbol | Meaning |\n")
	md.WriteString("| --- | --- |\n")
	for _, g := range glyph.DefaultGlyphs() {
		fmt.Fprintf(&md, "| %s | %s |\n", g.Symbol, g.Meaning)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md.String())
}

package store

import (
	"log"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config interface {
	BasePath() string
}

// LoadConfig resolves the storage location from a .rollcall config file or
// ROLLCALL_* environment variables, defaulting to ~/.rollcall.db.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.rollcall.db")
	viper.SetConfigName(".rollcall") // .yaml is implicit
	viper.SetEnvPrefix("ROLLCALL")
	viper.AutomaticEnv()

	if override := os.Getenv("ROLLCALL_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("error reading config file: %v", err)
			return nil, err
		}
	}

	return &fileConfig{Path: expandHome(viper.GetString("path"))}, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

type fileConfig struct {
	Path string `json:"path"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

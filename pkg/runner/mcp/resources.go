package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerStreamsResource(srv, svc)
	registerSlotsTemplate(srv, svc)
	registerWeekTemplate(srv, svc)
}

func registerStreamsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"rollcall://streams",
		"Streams",
		mcp.WithResourceDescription("All tracked streams with slot counts."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := svc.ListStreams(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"streams": summaries,
			"count":   len(summaries),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerSlotsTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"rollcall://streams/{stream}/slots",
		"Weekly Template",
		mcp.WithTemplateDescription("The recurring weekly slots for a stream."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stream, _ := request.Params.Arguments["stream"].(string)
		if stream == "" {
			return nil, fmt.Errorf("stream id is required")
		}

		slots, err := svc.ListSlots(ctx, stream)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"stream": stream,
			"count":  len(slots),
			"slots":  slots,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerWeekTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"rollcall://streams/{stream}/weeks/{date}",
		"Weekly Schedule",
		mcp.WithTemplateDescription("The indexed schedule for the week containing a date."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stream, _ := request.Params.Arguments["stream"].(string)
		if stream == "" {
			return nil, fmt.Errorf("stream id is required")
		}
		date, _ := request.Params.Arguments["date"].(string)
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}

		entries, start, end, err := svc.GetWeek(ctx, stream, date)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"stream":  stream,
			"start":   start,
			"end":     end,
			"count":   len(entries),
			"entries": entries,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

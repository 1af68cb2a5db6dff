package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetWeekTool(srv, svc)
	registerMarkAttendanceTool(srv, svc)
	registerCancelClassTool(srv, svc)
	registerReplaceClassTool(srv, svc)
	registerAddSubjectTool(srv, svc)
	registerListStreamsTool(srv, svc)
	registerListSlotsTool(srv, svc)
}

func registerGetWeekTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_week",
		mcp.WithDescription("Fetch the indexed weekly schedule for the week containing a date."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier, e.g. cs-2a."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Any date inside the week, YYYY-MM-DD."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stream, err := request.RequireString("stream")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date, err := request.RequireString("date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		entries, start, end, err := svc.GetWeek(ctx, stream, date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"stream":  stream,
			"start":   start,
			"end":     end,
			"entries": entries,
			"count":   len(entries),
		})
	})
}

func registerMarkAttendanceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"mark_attendance",
		mcp.WithDescription("Mark one occurrence of a subject as occurred, missed, or cancelled."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Occurrence date, YYYY-MM-DD."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name exactly as it appears in the schedule."),
		),
		mcp.WithNumber("index",
			mcp.Description("Occurrence ordinal when the subject repeats on the day (default 0)."),
			mcp.Min(0),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New attendance status."),
			mcp.Enum("occurred", "missed", "cancelled"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Stream  string `json:"stream"`
			Date    string `json:"date"`
			Subject string `json:"subject"`
			Index   int    `json:"index"`
			Status  string `json:"status"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.MarkAttendance(ctx, args.Stream, args.Date, args.Subject, args.Index, args.Status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCancelClassTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"cancel_class",
		mcp.WithDescription("Cancel one occurrence of a subject for everyone in the stream."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Occurrence date, YYYY-MM-DD."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name exactly as it appears in the schedule."),
		),
		mcp.WithNumber("index",
			mcp.Description("Occurrence ordinal when the subject repeats on the day (default 0)."),
			mcp.Min(0),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Stream  string `json:"stream"`
			Date    string `json:"date"`
			Subject string `json:"subject"`
			Index   int    `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.CancelClass(ctx, args.Stream, args.Date, args.Subject, args.Index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerReplaceClassTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"replace_class",
		mcp.WithDescription("Cancel one occurrence and schedule a different subject in its place."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Occurrence date, YYYY-MM-DD."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject being replaced."),
		),
		mcp.WithNumber("index",
			mcp.Description("Occurrence ordinal of the replaced subject (default 0)."),
			mcp.Min(0),
		),
		mcp.WithString("with",
			mcp.Required(),
			mcp.Description("Subject taking the slot."),
		),
		mcp.WithString("course_code",
			mcp.Description("Optional course code for the replacement."),
		),
		mcp.WithString("start_time",
			mcp.Description("Optional start time, HH:MM. Defaults to the replaced slot's time."),
		),
		mcp.WithString("end_time",
			mcp.Description("Optional end time, HH:MM."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Stream     string `json:"stream"`
			Date       string `json:"date"`
			Subject    string `json:"subject"`
			Index      int    `json:"index"`
			With       string `json:"with"`
			CourseCode string `json:"course_code"`
			StartTime  string `json:"start_time"`
			EndTime    string `json:"end_time"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.ReplaceClass(ctx, args.Stream, args.Date, args.Subject, args.Index,
			args.With, args.CourseCode, args.StartTime, args.EndTime)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAddSubjectTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_subject",
		mcp.WithDescription("Add an ad-hoc class to a date, outside the weekly template."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier."),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date for the extra class, YYYY-MM-DD."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject name for the extra class."),
		),
		mcp.WithString("course_code",
			mcp.Description("Optional course code."),
		),
		mcp.WithString("start_time",
			mcp.Description("Optional start time, HH:MM."),
		),
		mcp.WithString("end_time",
			mcp.Description("Optional end time, HH:MM."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Stream     string `json:"stream"`
			Date       string `json:"date"`
			Subject    string `json:"subject"`
			CourseCode string `json:"course_code"`
			StartTime  string `json:"start_time"`
			EndTime    string `json:"end_time"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.AddSubject(ctx, args.Stream, args.Date, args.Subject,
			args.CourseCode, args.StartTime, args.EndTime)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListStreamsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_streams",
		mcp.WithDescription("List all streams tracked by rollcall."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries, err := svc.ListStreams(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"streams": summaries,
			"count":   len(summaries),
		})
	})
}

func registerListSlotsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_slots",
		mcp.WithDescription("List the weekly template slots for a stream."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stream, err := request.RequireString("stream")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		slots, err := svc.ListSlots(ctx, strings.TrimSpace(stream))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"stream": stream,
			"slots":  slots,
			"count":  len(slots),
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}

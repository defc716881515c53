package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nbryan/concierge/internal/executor"
	"github.com/nbryan/concierge/internal/store"
)

// handleInterpret runs the utterance through the conversation manager.
func (s *Server) handleInterpret(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	utterance, err := request.RequireString("utterance")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: utterance"), nil
	}

	turn, err := s.manager.Submit(ctx, utterance)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("interpretation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(turn.Text), nil
}

// handleAddItem writes straight to the store.
func (s *Server) handleAddItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindStr, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}
	kind, ok := store.ParseKind(kindStr)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown collection %q", kindStr)), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	item := store.Item{
		Title:     title,
		Frequency: request.GetString("frequency", ""),
		Priority:  request.GetInt("priority", 0),
	}
	if raw := request.GetString("datetime", ""); raw != "" {
		item.Due, item.Timed = executor.ParseWhen(raw, time.Now())
	}

	if err := s.store.Create(ctx, kind, item); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating item: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Added %s %q.", kind, title)), nil
}

// handleListItems reads one collection.
func (s *Server) handleListItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindStr, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}
	kind, ok := store.ParseKind(kindStr)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown collection %q", kindStr)), nil
	}

	items, err := s.store.List(ctx, kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing items: %v", err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %ss yet.", kind)), nil
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, it.Title)
		if it.Due != nil {
			fmt.Fprintf(&b, " (due %s)", it.Due.Format("Mon Jan 2 15:04"))
		}
		if it.Frequency != "" {
			fmt.Fprintf(&b, " (%s)", it.Frequency)
		}
		if it.Done {
			b.WriteString(" [done]")
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

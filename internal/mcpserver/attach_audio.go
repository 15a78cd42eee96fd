package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

type attachResult struct {
	SongID   string `json:"songId"`
	AudioURL string `json:"audioUrl"`
}

func (s *Server) attachAudio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uri, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dl, err := s.fetcher.Fetch(ctx, uri, req.GetString("filename", ""))
	if err != nil {
		return errorResult(err), nil
	}

	d, err := s.svc.AttachAudio(ctx, id, dl.Name, bytes.NewReader(dl.Data))
	if err != nil {
		return errorResult(err), nil
	}

	out, _ := json.Marshal(attachResult{SongID: id, AudioURL: d.Song.AudioURL})
	return mcp.NewToolResultText(string(out)), nil
}

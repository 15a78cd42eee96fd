// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes chordbook tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/chordbook/internal/apperr"
	"github.com/starford/chordbook/internal/pitch"
	"github.com/starford/chordbook/internal/render"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/songservice"
	"github.com/starford/chordbook/internal/storage"
	"github.com/starford/chordbook/internal/tuning"
)

const blockFormatURI = "chordbook://block-format"

// Server wraps the MCP server with chordbook tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *songservice.Service
	fetcher *storage.Fetcher
}

// New creates a new MCP server with all chordbook tools registered.
func New(svc *songservice.Service) *Server {
	s := &Server{svc: svc, fetcher: storage.NewFetcher(nil)}

	s.mcp = server.NewMCPServer(
		"Chordbook",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("transpose_chord",
		mcp.WithDescription("Transpose a chord symbol by a number of semitones. Output uses sharp spelling."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Chord symbol, e.g. Am7 or Bb/F")),
		mcp.WithNumber("semitones", mcp.Required(), mcp.Description("Semitones to shift, may be negative")),
	), s.transposeChord)

	s.mcp.AddTool(mcp.NewTool("list_tunings",
		mcp.WithDescription("List the supported instrument tunings with their keys, offsets and string names."),
	), s.listTunings)

	s.mcp.AddTool(mcp.NewTool("list_songs",
		mcp.WithDescription("List songs in the library."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithString("sort", mcp.Description("Sort by title, artist or updated (default)")),
	), s.listSongs)

	s.mcp.AddTool(mcp.NewTool("search_songs",
		mcp.WithDescription("Full-text search through song titles, artists, lyrics and block labels."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchSongs)

	s.mcp.AddTool(mcp.NewTool("read_song",
		mcp.WithDescription("Read the JSON document of a song."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Song id")),
	), s.readSong)

	s.mcp.AddTool(mcp.NewTool("create_song",
		mcp.WithDescription("Create a new song from a JSON document. "+
			"The document MUST follow the song format. Read it first via the "+
			"get_block_format tool or the "+blockFormatURI+" resource."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Song JSON document")),
	), s.createSong)

	s.mcp.AddTool(mcp.NewTool("render_song",
		mcp.WithDescription("Render a stored song as a chord sheet: chords above lyrics, tabs and drum grids, "+
			"with transpose, capo and tuning applied."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Song id")),
		mcp.WithString("view", mcp.Description("full (default) or drummer")),
		mcp.WithString("format", mcp.Description("text (default) or html")),
	), s.renderSong)

	s.mcp.AddTool(mcp.NewTool("import_song",
		mcp.WithDescription("Convert a plain-text chord sheet into a song document."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Sheet text")),
		mcp.WithBoolean("save", mcp.Description("Store the result in the library (default false)")),
	), s.importSong)

	s.mcp.AddTool(mcp.NewTool("attach_audio",
		mcp.WithDescription("Download an audio recording (http(s) URL or base64 data URI) and link it from a song."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Song id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:audio/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional file name to store under")),
	), s.attachAudio)

	s.mcp.AddTool(mcp.NewTool("get_block_format",
		mcp.WithDescription("Returns the song document format. "+
			"Call this before creating songs to ensure correct structure."),
	), s.getBlockFormat)

	// Resource: song document format.
	s.mcp.AddResource(
		mcp.NewResource(blockFormatURI, "Song Document Format",
			mcp.WithResourceDescription("JSON shape of songs and their lyrics, tab, drum and reference blocks."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBlockFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) transposeChord(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := req.RequireString("symbol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := req.RequireFloat("semitones")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(pitch.TransposeChord(symbol, int(n))), nil
}

func (s *Server) listTunings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(tuning.All()), nil
}

func (s *Server) listSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", 50))
	items, total, err := s.svc.List(ctx, limit, 0, req.GetString("sort", ""))
	if err != nil {
		return errorResult(err), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no songs found"), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s\t%s\t%s", it.ID, it.Title, it.Artist)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchSongs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	data, err := song.Encode(d.Song)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sg, err := song.Decode([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Create(ctx, sg)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.Song.ID)), nil
}

func (s *Server) renderSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := render.ParseView(req.GetString("view", ""))
	switch req.GetString("format", "text") {
	case "text", "":
		text, err := s.svc.RenderText(ctx, id, view)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(text), nil
	case "html":
		page, err := s.svc.RenderHTML(ctx, id, view)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(string(page)), nil
	default:
		return mcp.NewToolResultError("format must be text or html"), nil
	}
}

func (s *Server) importSong(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Import(ctx, text, req.GetBool("save", false))
	if err != nil {
		return errorResult(err), nil
	}
	data, err := song.Encode(d.Song)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getBlockFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BlockFormatContract), nil
}

func (s *Server) readBlockFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      blockFormatURI,
			MIMEType: "text/markdown",
			Text:     BlockFormatContract,
		},
	}, nil
}

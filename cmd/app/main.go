package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/chordbook/internal"
	pkgconfig "github.com/starford/chordbook/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// output opens --out, or stdout when it is empty.
func output(cmd *cli.Command) (io.WriteCloser, error) {
	path := cmd.String("out")
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func renderFile(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("render: expected one song file")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err := internal.RenderFile(cfg, cmd.Args().First(), cmd.String("format"), cmd.String("view"), w); err != nil {
		_ = w.Close()
		return fmt.Errorf("render: %w", err)
	}
	return w.Close()
}

func importFile(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("import: expected one sheet file")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err := internal.ImportFile(cfg, cmd.Args().First(), w); err != nil {
		_ = w.Close()
		return fmt.Errorf("import: %w", err)
	}
	return w.Close()
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Write output to this file instead of stdout",
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "chordbook",
		Usage:  "Song library with chord sheets, guitar tabs and drum grids",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the song library over MCP on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:      "render",
				Usage:     "Render a song document (.json) or plain-text sheet",
				ArgsUsage: "<file>",
				Action:    renderFile,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, html or pdf",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:  "view",
						Usage: "full or drummer",
						Value: "full",
					},
					outFlag(),
				},
			},
			{
				Name:      "import",
				Usage:     "Convert a plain-text chord sheet into a song document",
				ArgsUsage: "<file>",
				Action:    importFile,
				Flags:     []cli.Flag{outFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

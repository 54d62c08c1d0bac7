package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/engine"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check level files (all files in --levels-dir when none are given)",
		ArgsUsage: "[level files...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				if files, err = levelFiles(cmd.String("levels-dir")); err != nil {
					return err
				}
			}
			return validateFiles(cmd.Root().Writer, files)
		},
	}
}

// levelFiles lists the level files of a directory
func levelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLevelFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// validateFiles prints one line per level file and fails if any is unplayable
func validateFiles(w io.Writer, files []string) error {
	invalid := 0
	for _, file := range files {
		level, err := config.ReadFile(file)
		if err == nil {
			err = engine.ValidateLevelConfig(level)
		}
		if err != nil {
			invalid++
			fmt.Fprintf(w, "✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		stats := engine.AnalyzeLayout(level.Layout)
		fmt.Fprintf(w, "✓ %s: %s (%dx%d, %d baggage)\n", filepath.Base(file), level.Name, stats.Rows, stats.Cols, stats.Baggage)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d level files invalid", invalid, len(files))
	}
	log.Debug().Int("files", len(files)).Msg("all levels valid")
	return nil
}

func newLevelCommand() *cli.Command {
	return &cli.Command{
		Name:  "new-level",
		Usage: "Print a level template, or save it to --levels-dir",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "rows", Value: 7, Usage: "Number of rows"},
			&cli.IntFlag{Name: "cols", Value: 9, Usage: "Number of columns"},
			&cli.StringFlag{Name: "name", Value: "New Level", Usage: "Level name"},
			&cli.StringFlag{Name: "description", Value: "A fresh warehouse.", Usage: "Level description"},
			&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or yaml"},
			&cli.StringFlag{Name: "save", Usage: "Save the template under this level id instead of printing it"},
			&cli.StringFlag{Name: "from", Usage: "Start from an existing level file; --rows and --cols resize it"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var level *engine.LevelConfig
			var err error
			if path := cmd.String("from"); path != "" {
				var rows, cols int
				if cmd.IsSet("rows") {
					rows = cmd.Int("rows")
				}
				if cmd.IsSet("cols") {
					cols = cmd.Int("cols")
				}
				level, err = editLevel(path, rows, cols)
				if err != nil {
					return err
				}
				if cmd.IsSet("name") {
					level.Name = cmd.String("name")
				}
				if cmd.IsSet("description") {
					level.Description = cmd.String("description")
				}
			} else {
				level, err = levelTemplate(cmd.Int("rows"), cmd.Int("cols"), cmd.String("name"), cmd.String("description"))
				if err != nil {
					return err
				}
			}

			if id := cmd.String("save"); id != "" {
				manager, err := config.NewManager(cmd.String("levels-dir"))
				if err != nil {
					return err
				}
				if err := manager.SaveConfig(id, level); err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "Saved %s\n", filepath.Join(cmd.String("levels-dir"), id+".json"))
				return nil
			}
			return writeLevel(cmd.Root().Writer, level, cmd.String("format"))
		},
	}
}

// levelTemplate builds a walled room with one player, one bag and one target
func levelTemplate(rows, cols int, name, description string) (*engine.LevelConfig, error) {
	if rows < 3 || cols < 5 {
		return nil, fmt.Errorf("template needs at least 3 rows and 5 columns, got %dx%d", rows, cols)
	}
	builder, err := engine.NewBuilder(rows, cols)
	if err != nil {
		return nil, err
	}
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			if err := builder.Clear(r, c); err != nil {
				return nil, err
			}
		}
	}
	placements := []struct {
		kind engine.Kind
		col  int
	}{
		{engine.Player, 1},
		{engine.Baggage, 2},
		{engine.Target, 3},
	}
	for _, p := range placements {
		if err := builder.Set(1, p.col, p.kind); err != nil {
			return nil, err
		}
	}
	if problems := builder.Problems(); len(problems) > 0 {
		return nil, fmt.Errorf("template is not playable: %s", strings.Join(problems, "; "))
	}

	return &engine.LevelConfig{
		Name:         name,
		Description:  description,
		Layout:       engine.EncodeRows(builder.Board()),
		UndoCapacity: engine.DefaultUndoCapacity,
		Messages:     engine.DefaultMessages(),
	}, nil
}

// editLevel loads a level file into the builder and resizes it when rows or
// cols is positive. A zero dimension keeps the current size.
func editLevel(path string, rows, cols int) (*engine.LevelConfig, error) {
	src, err := config.ReadFile(path)
	if err != nil {
		return nil, err
	}
	builder, err := engine.NewBuilderFromText(src.Text())
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", filepath.Base(path), err)
	}
	if rows > 0 || cols > 0 {
		if rows <= 0 {
			rows = builder.Board().Rows()
		}
		if cols <= 0 {
			cols = builder.Board().MaxWidth()
		}
		if builder.Resize(rows, cols) {
			log.Debug().Int("rows", rows).Int("cols", cols).Str("level", src.Name).Msg("resized level")
		}
	}
	if problems := builder.Problems(); len(problems) > 0 {
		return nil, fmt.Errorf("edited level is not playable: %s", strings.Join(problems, "; "))
	}

	level := *src
	level.Layout = engine.EncodeRows(builder.Board())
	return &level, nil
}

func writeLevel(w io.Writer, level *engine.LevelConfig, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(level)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(level)
	}
	return fmt.Errorf("unknown format %q (use json or yaml)", format)
}

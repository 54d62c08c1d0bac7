// Command replay plays a recorded move script against a running server. It
// creates a session on the chosen level, sends the moves through the
// bulk-move endpoint in batches and reports where the run ended.
//
// Scripts hold direction names (up, down, left, right) or LURD strings such
// as "rrdLu", separated by whitespace or commas. Lines starting with '#' or
// ';' are comments.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("replay failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Play a move script against a Sokoban server",
		ArgsUsage: "[moves...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Server base URL", Sources: cli.EnvVars("SOKOBAN_URL")},
			&cli.StringFlag{Name: "level", Usage: "Level id (server default when empty)"},
			&cli.StringFlag{Name: "file", Usage: "Read the move script from this file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			script := strings.Join(cmd.Args().Slice(), " ")
			if path := cmd.String("file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				script = string(data) + "\n" + script
			}

			moves, err := parseScript(script)
			if err != nil {
				return err
			}
			if len(moves) == 0 {
				return fmt.Errorf("no moves to play")
			}

			client := NewClient(cmd.String("url"))
			summary, err := play(ctx, client, cmd.String("level"), moves)
			if err != nil {
				return err
			}
			printSummary(cmd.Root().Writer, summary)
			return nil
		},
	}
}

var lurd = map[rune]string{'l': "left", 'u': "up", 'r': "right", 'd': "down"}

// parseScript turns a move script into direction names
func parseScript(script string) ([]string, error) {
	var moves []string
	for n, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		tokens := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, token := range tokens {
			lower := strings.ToLower(token)
			if len(lower) > 1 {
				if d, ok := engine.ParseDirection(lower); ok {
					moves = append(moves, d.String())
					continue
				}
			}
			for _, r := range lower {
				dir, ok := lurd[r]
				if !ok {
					return nil, fmt.Errorf("line %d: unknown move %q in %q", n+1, r, token)
				}
				moves = append(moves, dir)
			}
		}
	}
	return moves, nil
}

// Summary describes how a replay ended
type Summary struct {
	SessionID  string
	Requested  int
	Executed   int
	StopReason string
	State      *engine.GameState
}

// play creates a session and sends moves in batches until they run out,
// a move is blocked or the level is solved
func play(ctx context.Context, client *Client, level string, moves []string) (*Summary, error) {
	info, err := client.CreateSession(ctx, level)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", info.ID).Str("level", info.ConfigName).Int("moves", len(moves)).Msg("replaying")

	summary := &Summary{SessionID: info.ID, Requested: len(moves), State: info.GameState}
	for start := 0; start < len(moves); start += engine.MaxBulkMoves {
		end := min(start+engine.MaxBulkMoves, len(moves))
		result, err := client.BulkMove(ctx, moves[start:end])
		if err != nil {
			return nil, err
		}
		summary.Executed += result.MovesExecuted
		summary.State = result.GameState
		log.Debug().Int("executed", summary.Executed).Int("total", len(moves)).Msg("batch played")

		if result.StopReasonCode != "" {
			summary.StopReason = result.StopReasonCode
			if result.StopReasonCode == service.StopSolved {
				break
			}
			return summary, fmt.Errorf("stopped on move %d: %s", start+result.StoppedOnMove, result.StoppedReason)
		}
	}
	return summary, nil
}

func printSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "Session %s: %d/%d moves played\n", s.SessionID, s.Executed, s.Requested)
	if s.State == nil {
		return
	}
	fmt.Fprintf(w, "Pushes: %d, baggage on targets: %d/%d\n", s.State.Pushes, s.State.OnTarget, s.State.TotalGoals)
	if s.State.Completed {
		fmt.Fprintln(w, "🎉 Level solved")
	}
	for _, row := range s.State.View {
		fmt.Fprintln(w, "  "+row)
	}
}

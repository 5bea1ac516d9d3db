package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/knah1d/gomokuAI/internal/config"
	"github.com/knah1d/gomokuAI/internal/engine"
	"github.com/knah1d/gomokuAI/internal/game"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (default: ./gomoku.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := zap.NewNop().Sugar()
	if cfg.Log.Debug {
		if log, err = config.NewLogger(true); err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
		defer log.Sync()
	}

	eng := engine.NewEngine(cfg.Weights, cfg.EngineOptions(), log)
	g := game.NewGame(cfg.GameSettings(), eng, log)

	out := termenv.NewOutput(os.Stdout)
	in := bufio.NewScanner(os.Stdin)
	if err := run(g, out, in); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(g *game.Game, out *termenv.Output, in *bufio.Scanner) error {
	out.WriteString("gomoku: moves as \"x y\", commands: new, quit\n\n")
	for {
		render(out, g)
		if g.Status() != engine.StatusOngoing {
			printOutcome(out, g.Status())
			out.WriteString("type \"new\" for another game or \"quit\" to exit\n")
			line, ok := readLine(in)
			if !ok || line == "quit" {
				return nil
			}
			if line == "new" {
				g.Reset(g.Settings())
			}
			continue
		}

		if g.CurrentPlayerIsAI() {
			entry, err := g.PlayAITurn()
			if err != nil {
				return fmt.Errorf("ai turn: %w", err)
			}
			fmt.Fprintf(out, "%s plays (%d,%d) depth=%d score=%d in %.0fms\n\n",
				sideName(out, otherOf(g.ToMove())), entry.Move.X, entry.Move.Y,
				entry.Depth, entry.Score, entry.ElapsedMs)
			continue
		}

		fmt.Fprintf(out, "%s to move> ", sideName(out, g.ToMove()))
		line, ok := readLine(in)
		if !ok {
			return nil
		}
		switch line {
		case "quit", "q", "exit":
			return nil
		case "new":
			g.Reset(g.Settings())
			continue
		case "":
			continue
		}

		move, err := parseMove(line)
		if err != nil {
			out.WriteString(err.Error() + "\n")
			continue
		}
		if err := g.ApplyHumanMove(move); err != nil {
			out.WriteString("illegal move: " + err.Error() + "\n")
		}
	}
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(strings.ToLower(in.Text())), true
}

func parseMove(line string) (engine.Move, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return engine.Move{}, fmt.Errorf("expected two coordinates, got %q", line)
	}
	x, errX := strconv.Atoi(fields[0])
	y, errY := strconv.Atoi(fields[1])
	if errX != nil || errY != nil {
		return engine.Move{}, fmt.Errorf("coordinates must be numbers, got %q", line)
	}
	return engine.Move{X: x, Y: y}, nil
}

func render(out *termenv.Output, g *game.Game) {
	board := g.Board()
	size := board.Size()
	last, hasLast := board.LastMove()

	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < size; x++ {
		fmt.Fprintf(&sb, "%2d", x)
	}
	sb.WriteString("\n")
	out.WriteString(sb.String())

	for y := 0; y < size; y++ {
		fmt.Fprintf(out, "%2d ", y)
		for x := 0; x < size; x++ {
			cell := board.At(x, y)
			if hasLast && last.X == x && last.Y == y && cell != engine.CellEmpty {
				raw := "x"
				if cell == engine.CellWhite {
					raw = "o"
				}
				out.WriteString(" " + out.String(raw).Foreground(out.Color("3")).Bold().String())
				continue
			}
			out.WriteString(stoneGlyph(out, cell))
		}
		out.WriteString("\n")
	}
	out.WriteString("\n")
}

func stoneGlyph(out *termenv.Output, cell engine.Cell) string {
	switch cell {
	case engine.CellBlack:
		return " " + out.String("x").Foreground(out.Color("1")).String()
	case engine.CellWhite:
		return " " + out.String("o").Foreground(out.Color("6")).String()
	default:
		return " ."
	}
}

func sideName(out *termenv.Output, side engine.Cell) string {
	if side == engine.CellBlack {
		return out.String("black").Foreground(out.Color("1")).String()
	}
	return out.String("white").Foreground(out.Color("6")).String()
}

func otherOf(side engine.Cell) engine.Cell {
	return side.Other()
}

func printOutcome(out *termenv.Output, status engine.Status) {
	switch status {
	case engine.StatusBlackWon:
		out.WriteString(out.String("black wins").Bold().String() + "\n")
	case engine.StatusWhiteWon:
		out.WriteString(out.String("white wins").Bold().String() + "\n")
	case engine.StatusDraw:
		out.WriteString("draw\n")
	}
}

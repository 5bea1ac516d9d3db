package server

import (
	"github.com/knah1d/gomokuAI/internal/engine"
	"github.com/knah1d/gomokuAI/internal/game"
)

type StatusResponse struct {
	GameID     string              `json:"game_id"`
	BoardSize  int                 `json:"board_size"`
	Board      [][]int             `json:"board"`
	NextPlayer int                 `json:"next_player"`
	Winner     int                 `json:"winner"`
	Status     string              `json:"status"`
	History    []game.HistoryEntry `json:"history"`
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type settingsResponse struct {
	Mode         string         `json:"mode"`
	TimeBudgetMs int            `json:"time_budget_ms"`
	Weights      engine.Weights `json:"weights"`
}

type settingsRequest struct {
	TimeBudgetMs *int            `json:"time_budget_ms"`
	Weights      *engine.Weights `json:"weights"`
}

type resetRequest struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
}

type ttCacheStatusResponse struct {
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
	Full     bool    `json:"full"`
}

func statusFromSnapshot(snap game.Snapshot) StatusResponse {
	return StatusResponse{
		GameID:     snap.ID.String(),
		BoardSize:  snap.Board.Size(),
		Board:      boardToSlice(snap.Board),
		NextPlayer: cellToInt(snap.ToMove),
		Winner:     winnerFromStatus(snap.Status),
		Status:     statusToString(snap.Status),
		History:    snap.History,
	}
}

func boardToSlice(board engine.Board) [][]int {
	size := board.Size()
	rows := make([][]int, size)
	for y := 0; y < size; y++ {
		rows[y] = make([]int, size)
		for x := 0; x < size; x++ {
			rows[y][x] = cellToInt(board.At(x, y))
		}
	}
	return rows
}

func cellToInt(cell engine.Cell) int {
	switch cell {
	case engine.CellBlack:
		return 1
	case engine.CellWhite:
		return 2
	default:
		return 0
	}
}

func winnerFromStatus(status engine.Status) int {
	switch status {
	case engine.StatusBlackWon:
		return 1
	case engine.StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status engine.Status) string {
	switch status {
	case engine.StatusBlackWon:
		return "black_won"
	case engine.StatusWhiteWon:
		return "white_won"
	case engine.StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

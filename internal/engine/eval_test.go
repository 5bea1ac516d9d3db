package engine

import "testing"

func TestEvaluateAntisymmetry(t *testing.T) {
	boards := map[string][]struct {
		side Cell
		move Move
	}{
		"scattered": {
			{CellBlack, Move{X: 4, Y: 4}},
			{CellWhite, Move{X: 5, Y: 5}},
			{CellBlack, Move{X: 4, Y: 5}},
			{CellWhite, Move{X: 3, Y: 3}},
			{CellBlack, Move{X: 4, Y: 6}},
		},
		"openFourEachSide": {
			{CellBlack, Move{X: 1, Y: 1}},
			{CellBlack, Move{X: 2, Y: 1}},
			{CellBlack, Move{X: 3, Y: 1}},
			{CellBlack, Move{X: 4, Y: 1}},
			{CellWhite, Move{X: 1, Y: 8}},
			{CellWhite, Move{X: 2, Y: 8}},
			{CellWhite, Move{X: 3, Y: 8}},
			{CellWhite, Move{X: 4, Y: 8}},
		},
		"edgeRuns": {
			{CellBlack, Move{X: 0, Y: 0}},
			{CellBlack, Move{X: 1, Y: 0}},
			{CellBlack, Move{X: 2, Y: 0}},
			{CellWhite, Move{X: 9, Y: 9}},
			{CellWhite, Move{X: 9, Y: 8}},
		},
	}
	w := DefaultWeights()
	for name, stones := range boards {
		t.Run(name, func(t *testing.T) {
			b := NewBoard(10)
			for _, s := range stones {
				placeAs(t, &b, s.side, s.move)
			}
			black := Evaluate(b, CellBlack, w)
			white := Evaluate(b, CellWhite, w)
			if black != -white {
				t.Fatalf("evaluation must be antisymmetric: black=%d white=%d", black, white)
			}
		})
	}
}

func TestEvaluateWinFive(t *testing.T) {
	b := NewBoard(10)
	for i := 0; i < 5; i++ {
		placeAs(t, &b, CellBlack, Move{X: i, Y: 0})
	}
	if got := Evaluate(b, CellBlack, DefaultWeights()); got != WinScore {
		t.Fatalf("expected WinScore for five in a row, got %d", got)
	}
	if got := Evaluate(b, CellWhite, DefaultWeights()); got != -WinScore {
		t.Fatalf("expected -WinScore from the loser's view, got %d", got)
	}
}

func TestEvaluateMustBlockOpenFour(t *testing.T) {
	b := NewBoard(10)
	// White has an open four: .OOOO.
	for i := 1; i <= 4; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 0})
	}
	w := DefaultWeights()
	score := Evaluate(b, CellBlack, w)
	if score > -w.Open4/2 {
		t.Fatalf("expected strong negative score against an open four, got %d", score)
	}
}

func TestOpenFourOutweighsOpenThrees(t *testing.T) {
	b := NewBoard(10)
	// Black: open four. White: two open threes (a fork).
	for i := 1; i <= 4; i++ {
		placeAs(t, &b, CellBlack, Move{X: i, Y: 0})
	}
	for i := 1; i <= 3; i++ {
		placeAs(t, &b, CellWhite, Move{X: i, Y: 5})
		placeAs(t, &b, CellWhite, Move{X: i, Y: 7})
	}
	if score := Evaluate(b, CellBlack, DefaultWeights()); score <= 0 {
		t.Fatalf("open four must dominate open-three forks, got %d", score)
	}
}

func TestCountThreatsClassification(t *testing.T) {
	b := NewBoard(10)
	// Open three on row 2, closed four on row 4 (blocked at the left edge
	// by a white stone).
	for i := 3; i <= 5; i++ {
		placeAs(t, &b, CellBlack, Move{X: i, Y: 2})
	}
	placeAs(t, &b, CellWhite, Move{X: 0, Y: 4})
	for i := 1; i <= 4; i++ {
		placeAs(t, &b, CellBlack, Move{X: i, Y: 4})
	}

	me, _ := CountThreats(b, CellBlack)
	if me.Open3 != 1 {
		t.Fatalf("expected one open three, got %+v", me)
	}
	if me.Closed4 != 1 {
		t.Fatalf("expected one closed four, got %+v", me)
	}
	if me.Win5 != 0 || me.Open4 != 0 {
		t.Fatalf("unexpected stronger threats: %+v", me)
	}
}

func TestEvaluateLeavesBoardUntouched(t *testing.T) {
	b := NewBoard(10)
	placeAs(t, &b, CellBlack, Move{X: 4, Y: 4})
	placeAs(t, &b, CellWhite, Move{X: 5, Y: 5})
	before := b.Hash()
	_ = Evaluate(b, CellBlack, DefaultWeights())
	if b.Hash() != before || b.StoneCount() != 2 {
		t.Fatalf("evaluation must not mutate the board")
	}
}

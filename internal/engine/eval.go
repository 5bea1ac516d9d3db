package engine

import "sync"

// WinScore is the magnitude reported for a decided position. It dominates any
// sum of pattern weights a non-terminal board can produce.
const WinScore = 1_000_000_000

type ThreatTotals struct {
	Win5    int
	Open4   int
	Closed4 int
	Broken4 int
	Open3   int
	Broken3 int
	Closed3 int
	Open2   int
	Broken2 int
}

// Weights score the threat patterns of one side. The relative order matters
// more than the numbers: an open four must outweigh any combination of threes
// so the search always prefers making or blocking a four.
type Weights struct {
	Open4        int `json:"open4" mapstructure:"open4"`
	Closed4      int `json:"closed4" mapstructure:"closed4"`
	Broken4      int `json:"broken4" mapstructure:"broken4"`
	Open3        int `json:"open3" mapstructure:"open3"`
	Broken3      int `json:"broken3" mapstructure:"broken3"`
	Closed3      int `json:"closed3" mapstructure:"closed3"`
	Open2        int `json:"open2" mapstructure:"open2"`
	Broken2      int `json:"broken2" mapstructure:"broken2"`
	ForkOpen3    int `json:"forkOpen3" mapstructure:"forkOpen3"`
	ForkFourPlus int `json:"forkFourPlus" mapstructure:"forkFourPlus"`
}

func DefaultWeights() Weights {
	return Weights{
		Open4:        100000,
		Closed4:      15000,
		Broken4:      12000,
		Open3:        2500,
		Broken3:      1200,
		Closed3:      400,
		Open2:        200,
		Broken2:      120,
		ForkOpen3:    6000,
		ForkFourPlus: 20000,
	}
}

type patternMatch struct {
	pattern string
	apply   func(*ThreatTotals)
}

// Line tokens: 'M' stones of the scored side, 'O' opponent stones or the
// board edge, '.' empty. Longer patterns are listed first so a scan consumes
// the strongest match at each offset.
var evalPatterns = [...]patternMatch{
	{pattern: "MMMMM", apply: func(t *ThreatTotals) { t.Win5++ }},
	{pattern: ".MMMM.", apply: func(t *ThreatTotals) { t.Open4++ }},
	{pattern: "OMMMM.", apply: func(t *ThreatTotals) { t.Closed4++ }},
	{pattern: ".MMMMO", apply: func(t *ThreatTotals) { t.Closed4++ }},
	{pattern: ".MMM.M.", apply: func(t *ThreatTotals) { t.Broken4++ }},
	{pattern: ".M.MMM.", apply: func(t *ThreatTotals) { t.Broken4++ }},
	{pattern: ".MMM.", apply: func(t *ThreatTotals) { t.Open3++ }},
	{pattern: "OMMM..", apply: func(t *ThreatTotals) { t.Closed3++ }},
	{pattern: "..MMMO", apply: func(t *ThreatTotals) { t.Closed3++ }},
	{pattern: ".MM.M.", apply: func(t *ThreatTotals) { t.Broken3++ }},
	{pattern: ".M.MM.", apply: func(t *ThreatTotals) { t.Broken3++ }},
	{pattern: ".MM.", apply: func(t *ThreatTotals) { t.Open2++ }},
	{pattern: ".M.M.", apply: func(t *ThreatTotals) { t.Broken2++ }},
}

type lineCache struct {
	mu    sync.Mutex
	lines map[int][][]int
}

var cachedLines = &lineCache{lines: make(map[int][][]int)}

func linesForSize(size int) [][]int {
	cachedLines.mu.Lock()
	defer cachedLines.mu.Unlock()
	if lines, ok := cachedLines.lines[size]; ok {
		return lines
	}
	lines := buildLines(size)
	cachedLines.lines[size] = lines
	return lines
}

func buildLines(size int) [][]int {
	lines := [][]int{}
	if size <= 0 {
		return lines
	}
	// Rows.
	for y := 0; y < size; y++ {
		line := make([]int, 0, size)
		for x := 0; x < size; x++ {
			line = append(line, y*size+x)
		}
		lines = append(lines, line)
	}
	// Cols.
	for x := 0; x < size; x++ {
		line := make([]int, 0, size)
		for y := 0; y < size; y++ {
			line = append(line, y*size+x)
		}
		lines = append(lines, line)
	}
	// Diagonals (\)
	for x := 0; x < size; x++ {
		line := collectDiag(size, x, 0, 1, 1)
		if len(line) >= winLength {
			lines = append(lines, line)
		}
	}
	for y := 1; y < size; y++ {
		line := collectDiag(size, 0, y, 1, 1)
		if len(line) >= winLength {
			lines = append(lines, line)
		}
	}
	// Anti-diagonals (/)
	for x := 0; x < size; x++ {
		line := collectDiag(size, x, 0, -1, 1)
		if len(line) >= winLength {
			lines = append(lines, line)
		}
	}
	for y := 1; y < size; y++ {
		line := collectDiag(size, size-1, y, -1, 1)
		if len(line) >= winLength {
			lines = append(lines, line)
		}
	}
	return lines
}

func collectDiag(size, startX, startY, dx, dy int) []int {
	line := []int{}
	x := startX
	y := startY
	for x >= 0 && y >= 0 && x < size && y < size {
		line = append(line, y*size+x)
		x += dx
		y += dy
	}
	return line
}

// Evaluate scores a board for one side. The result is antisymmetric:
// Evaluate(b, Black, w) == -Evaluate(b, White, w) for every board.
func Evaluate(b Board, side Cell, w Weights) int {
	me, opp := CountThreats(b, side)

	switch {
	case me.Win5 > 0 && opp.Win5 > 0:
		return 0
	case me.Win5 > 0:
		return WinScore
	case opp.Win5 > 0:
		return -WinScore
	}

	score := weightedSum(me, w) - weightedSum(opp, w)
	score += forkBonus(me, w) - forkBonus(opp, w)
	return score
}

// CountThreats tallies pattern occurrences for side and its opponent over
// every row, column and diagonal.
func CountThreats(b Board, side Cell) (me, opp ThreatTotals) {
	lines := linesForSize(b.Size())
	other := side.Other()
	var tokensBufStack [64]byte
	tokensBuf := tokensBufStack[:]

	for _, line := range lines {
		tokensMe := buildTokensInto(b, line, side, tokensBuf)
		accumulatePatterns(tokensMe, &me)
		tokensOpp := buildTokensInto(b, line, other, tokensBuf)
		accumulatePatterns(tokensOpp, &opp)
	}
	return me, opp
}

func buildTokensInto(b Board, line []int, side Cell, buf []byte) []byte {
	needed := len(line) + 2
	if cap(buf) < needed {
		buf = make([]byte, needed)
	} else {
		buf = buf[:needed]
	}
	buf[0] = 'O'
	for i, idx := range line {
		switch b.cells[idx] {
		case CellEmpty:
			buf[i+1] = '.'
		case side:
			buf[i+1] = 'M'
		default:
			buf[i+1] = 'O'
		}
	}
	buf[needed-1] = 'O'
	return buf
}

func accumulatePatterns(tokens []byte, totals *ThreatTotals) {
	for i := 0; i < len(tokens); i++ {
		for _, entry := range evalPatterns {
			if matchAt(tokens, entry.pattern, i) {
				entry.apply(totals)
				i += len(entry.pattern) - 1
				break
			}
		}
	}
}

func matchAt(tokens []byte, pattern string, start int) bool {
	if start+len(pattern) > len(tokens) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if tokens[start+i] != pattern[i] {
			return false
		}
	}
	return true
}

func weightedSum(t ThreatTotals, w Weights) int {
	return t.Open4*w.Open4 +
		t.Closed4*w.Closed4 +
		t.Broken4*w.Broken4 +
		t.Open3*w.Open3 +
		t.Broken3*w.Broken3 +
		t.Closed3*w.Closed3 +
		t.Open2*w.Open2 +
		t.Broken2*w.Broken2
}

func forkBonus(t ThreatTotals, w Weights) int {
	bonus := 0
	if t.Open3 >= 2 {
		bonus += w.ForkOpen3
	}
	if t.Closed4+t.Broken4 >= 2 {
		bonus += w.ForkFourPlus
	}
	return bonus
}

package engine

import "sort"

const (
	prioWin          = 0
	prioBlockWin     = 1
	prioCreateFour   = 2
	prioBlockFour    = 3
	prioCreateOpen3  = 4
	prioBlockOpen3   = 5
	prioKiller       = 8
	prioProximity    = 20
	prioDefault      = 50
	maxCandidatePrio = 100

	proximityRadius = 2
)

type candidateMove struct {
	move     Move
	priority int
	estimate int
}

func chebDist(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

var searchDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// threatFlagsForMove classifies what placing target's stone on move would
// complete: an immediate five, a four, or an open three.
func threatFlagsForMove(b Board, move Move, target Cell) (winNow, createFour, openThree bool) {
	for _, dir := range searchDirections {
		dx := dir[0]
		dy := dir[1]
		left := b.countContiguous(move.X, move.Y, -dx, -dy, target)
		right := b.countContiguous(move.X, move.Y, dx, dy, target)
		total := left + right + 1
		if total >= winLength {
			winNow = true
			continue
		}
		if total == 4 {
			createFour = true
			continue
		}
		if total == 3 {
			leftX := move.X - (left+1)*dx
			leftY := move.Y - (left+1)*dy
			rightX := move.X + (right+1)*dx
			rightY := move.Y + (right+1)*dy
			if b.IsEmpty(leftX, leftY) && b.IsEmpty(rightX, rightY) {
				openThree = true
			}
		}
	}
	return winNow, createFour, openThree
}

// candidateMoves enumerates empty cells worth searching: threat cells for
// either side plus empty cells within proximityRadius of any stone. An empty
// board yields only the center.
func candidateMoves(b Board) []candidateMove {
	size := b.Size()
	if b.StoneCount() == 0 {
		center := size / 2
		return []candidateMove{{move: Move{X: center, Y: center}, priority: prioDefault}}
	}

	toPlay := b.ToMove()
	oppCell := toPlay.Other()
	seenPriority := make([]int, size*size)
	for i := range seenPriority {
		seenPriority[i] = maxCandidatePrio
	}
	candidates := make([]candidateMove, 0, 64)
	record := func(move Move, priority int) {
		idx := move.Y*size + move.X
		if priority < seenPriority[idx] {
			if seenPriority[idx] == maxCandidatePrio {
				candidates = append(candidates, candidateMove{move: move, priority: priority})
			} else {
				for i := range candidates {
					if candidates[i].move.Equals(move) {
						candidates[i].priority = priority
						break
					}
				}
			}
			seenPriority[idx] = priority
		}
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if b.At(x, y) != CellEmpty {
				continue
			}
			move := Move{X: x, Y: y}
			bestPrio := maxCandidatePrio

			winNow, createFour, openThree := threatFlagsForMove(b, move, toPlay)
			if winNow {
				bestPrio = prioWin
			} else if createFour {
				bestPrio = prioCreateFour
			} else if openThree {
				bestPrio = prioCreateOpen3
			}

			winNow, createFour, openThree = threatFlagsForMove(b, move, oppCell)
			if winNow && prioBlockWin < bestPrio {
				bestPrio = prioBlockWin
			} else if createFour && prioBlockFour < bestPrio {
				bestPrio = prioBlockFour
			} else if openThree && prioBlockOpen3 < bestPrio {
				bestPrio = prioBlockOpen3
			}

			if bestPrio < maxCandidatePrio {
				record(move, bestPrio)
			}
		}
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if b.At(x, y) == CellEmpty {
				continue
			}
			for dy := -proximityRadius; dy <= proximityRadius; dy++ {
				for dx := -proximityRadius; dx <= proximityRadius; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if chebDist(dx, dy) > proximityRadius {
						continue
					}
					nx := x + dx
					ny := y + dy
					if !b.IsEmpty(nx, ny) {
						continue
					}
					record(Move{X: nx, Y: ny}, prioProximity)
				}
			}
		}
	}
	return candidates
}

// moveEstimate is a cheap pattern-delta for ordering: the value of the runs
// the move would make for the mover plus the runs it would deny the opponent.
func moveEstimate(b Board, move Move, w Weights) int {
	toPlay := b.ToMove()
	return runGain(b, move, toPlay, w) + runGain(b, move, toPlay.Other(), w)
}

func runGain(b Board, move Move, target Cell, w Weights) int {
	gain := 0
	for _, dir := range searchDirections {
		dx := dir[0]
		dy := dir[1]
		left := b.countContiguous(move.X, move.Y, -dx, -dy, target)
		right := b.countContiguous(move.X, move.Y, dx, dy, target)
		total := left + right + 1
		if total >= winLength {
			gain += WinScore / 1000
			continue
		}
		leftOpen := b.IsEmpty(move.X-(left+1)*dx, move.Y-(left+1)*dy)
		rightOpen := b.IsEmpty(move.X+(right+1)*dx, move.Y+(right+1)*dy)
		switch {
		case total == 4 && leftOpen && rightOpen:
			gain += w.Open4
		case total == 4 && (leftOpen || rightOpen):
			gain += w.Closed4
		case total == 3 && leftOpen && rightOpen:
			gain += w.Open3
		case total == 3 && (leftOpen || rightOpen):
			gain += w.Closed3
		case total == 2 && leftOpen && rightOpen:
			gain += w.Open2
		}
	}
	return gain
}

// orderMoves sorts candidates by threat priority, then by estimate, with a
// row-major tiebreak so the ordering is fully deterministic. A table best
// move is hoisted to the front; killer moves get a priority lift. limit > 0
// truncates the list.
func orderMoves(b Board, candidates []candidateMove, w Weights, limit int, ttMove *Move, killers []Move) []Move {
	scored := make([]candidateMove, len(candidates))
	copy(scored, candidates)
	for i := range scored {
		scored[i].estimate = moveEstimate(b, scored[i].move, w)
		for _, killer := range killers {
			if scored[i].move.Equals(killer) && prioKiller < scored[i].priority {
				scored[i].priority = prioKiller
			}
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].priority != scored[j].priority {
			return scored[i].priority < scored[j].priority
		}
		if scored[i].estimate != scored[j].estimate {
			return scored[i].estimate > scored[j].estimate
		}
		if scored[i].move.Y != scored[j].move.Y {
			return scored[i].move.Y < scored[j].move.Y
		}
		return scored[i].move.X < scored[j].move.X
	})
	if ttMove != nil {
		for i := range scored {
			if scored[i].move.Equals(*ttMove) {
				entry := scored[i]
				copy(scored[1:i+1], scored[:i])
				scored[0] = entry
				break
			}
		}
	}
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	moves := make([]Move, len(scored))
	for i, entry := range scored {
		moves[i] = entry.move
	}
	return moves
}

package mdp

import (
	"fmt"
)

// Party is the two-state, two-action partying MDP.
type Party struct {
	discount float64
}

// NewParty creates the party MDP with the given discount.
func NewParty(discount float64) *Party {
	return &Party{discount: discount}
}

var partyRewards = map[string]map[string]float64{
	"healthy": {"relax": 7, "party": 10},
	"sick":    {"relax": 0, "party": 2},
}

// partyHealthy is P(healthy | s, a).
var partyHealthy = map[string]map[string]float64{
	"healthy": {"relax": 0.95, "party": 0.7},
	"sick":    {"relax": 0.5, "party": 0.1},
}

func (p *Party) States() []string { return []string{"healthy", "sick"} }
func (p *Party) Actions() []string { return []string{"relax", "party"} }
func (p *Party) Discount() float64 { return p.discount }

func (p *Party) Transition(s, a string) map[string]float64 {
	h := partyHealthy[s][a]
	return map[string]float64{"healthy": h, "sick": 1 - h}
}

func (p *Party) Reward(s, a string) float64 { return partyRewards[s][a] }

// Cell is a grid position.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Tiny is a 2 by 3 grid MDP. Going left from the top-left cell teleports
// to the bottom-left; upR moves up with probability 0.8 and otherwise
// slips.
type Tiny struct {
	discount float64
}

// NewTiny creates the tiny MDP with the given discount.
func NewTiny(discount float64) *Tiny {
	return &Tiny{discount: discount}
}

func (t *Tiny) States() []Cell {
	var out []Cell
	for x := range 2 {
		for y := range 3 {
			out = append(out, Cell{x, y})
		}
	}
	return out
}

func (t *Tiny) Actions() []string { return []string{"right", "upC", "left", "upR"} }
func (t *Tiny) Discount() float64 { return t.discount }

func (t *Tiny) Transition(s Cell, a string) map[Cell]float64 {
	x, y := s.X, s.Y
	switch a {
	case "right":
		return map[Cell]float64{{1, y}: 1}
	case "upC":
		return map[Cell]float64{{x, min(y+1, 2)}: 1}
	case "left":
		if s == (Cell{0, 2}) {
			return map[Cell]float64{{0, 0}: 1}
		}
		return map[Cell]float64{{0, y}: 1}
	case "upR":
		switch {
		case x == 0 && y < 2:
			return map[Cell]float64{{x, y}: 0.1, {x + 1, y}: 0.1, {x, y + 1}: 0.8}
		case x == 0:
			return map[Cell]float64{{0, 0}: 0.1, {1, 2}: 0.1, {0, 2}: 0.8}
		case y < 2:
			return map[Cell]float64{{0, y}: 0.1, {1, y}: 0.1, {1, y + 1}: 0.8}
		default:
			return map[Cell]float64{{0, 2}: 0.1, {1, 2}: 0.9}
		}
	}
	return nil
}

func (t *Tiny) Reward(s Cell, a string) float64 {
	x, y := s.X, s.Y
	switch a {
	case "right":
		return []float64{0, -1}[x]
	case "upC":
		return []float64{-1, -1, -2}[y]
	case "left":
		if x == 0 {
			return []float64{-1, -100, 10}[y]
		}
		return 0
	case "upR":
		return [][]float64{{-0.1, -10, 0.2}, {-0.1, -0.1, -0.9}}[x][y]
	}
	return 0
}

// Grid is a dx by dy grid. The agent moves in the intended direction with
// probability 0.7 and in each other direction with probability 0.1;
// bumping a wall costs a small penalty. Two states fling the agent to a
// random corner.
type Grid struct {
	discount  float64
	dx, dy    int
	rewarding map[Cell]float64
	fling     map[Cell]bool
}

// NewGrid creates a dx by dy grid MDP. The rewarding and fling states sit
// at fixed cells and only exist when they fall inside the grid.
func NewGrid(discount float64, dx, dy int) (*Grid, error) {
	if dx < 1 || dy < 1 {
		return nil, fmt.Errorf("grid must be at least 1x1, got %dx%d", dx, dy)
	}
	g := &Grid{
		discount:  discount,
		dx:        dx,
		dy:        dy,
		rewarding: make(map[Cell]float64),
		fling:     make(map[Cell]bool),
	}
	for c, r := range map[Cell]float64{{3, 2}: -10, {3, 5}: -5, {8, 2}: 10, {7, 7}: 3} {
		if g.inside(c) {
			g.rewarding[c] = r
		}
	}
	for _, c := range []Cell{{8, 2}, {7, 7}} {
		if g.inside(c) {
			g.fling[c] = true
		}
	}
	return g, nil
}

func (g *Grid) inside(c Cell) bool {
	return c.X >= 0 && c.X < g.dx && c.Y >= 0 && c.Y < g.dy
}

func (g *Grid) States() []Cell {
	out := make([]Cell, 0, g.dx*g.dy)
	for x := range g.dx {
		for y := range g.dy {
			out = append(out, Cell{x, y})
		}
	}
	return out
}

func (g *Grid) Actions() []string { return []string{"up", "down", "right", "left"} }
func (g *Grid) Discount() float64 { return g.discount }

// intendedNext is where a leads from s if the move succeeds.
func (g *Grid) intendedNext(s Cell, a string) Cell {
	switch a {
	case "up":
		if s.Y+1 < g.dy {
			return Cell{s.X, s.Y + 1}
		}
	case "down":
		if s.Y > 0 {
			return Cell{s.X, s.Y - 1}
		}
	case "right":
		if s.X+1 < g.dx {
			return Cell{s.X + 1, s.Y}
		}
	case "left":
		if s.X > 0 {
			return Cell{s.X - 1, s.Y}
		}
	}
	return s
}

func (g *Grid) Transition(s Cell, a string) map[Cell]float64 {
	if g.fling[s] {
		res := make(map[Cell]float64, 4)
		for _, c := range []Cell{{0, 0}, {g.dx - 1, 0}, {0, g.dy - 1}, {g.dx - 1, g.dy - 1}} {
			res[c] += 0.25
		}
		return res
	}
	res := make(map[Cell]float64, 4)
	for _, ai := range g.Actions() {
		p := 0.1
		if ai == a {
			p = 0.7
		}
		// corners and walls send several directions to the same cell
		res[g.intendedNext(s, ai)] += p
	}
	return res
}

func (g *Grid) Reward(s Cell, a string) float64 {
	if r, ok := g.rewarding[s]; ok {
		return r
	}
	crash := func(dir string) float64 {
		if a == dir {
			return -0.7
		}
		return -0.1
	}
	var r float64
	if s.Y == 0 {
		r += crash("down")
	}
	if s.Y == g.dy-1 {
		r += crash("up")
	}
	if s.X == 0 {
		r += crash("left")
	}
	if s.X == g.dx-1 {
		r += crash("right")
	}
	return r
}

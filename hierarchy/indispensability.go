package hierarchy

import (
	"math"
	"sort"

	"github.com/lixenwraith/upi-engine/vmath"
)

// Score weights, fixed contract values
const (
	downbeatScore  = 10.0
	gcdScale       = 10.0
	fallbackCutoff = 0.5
	centerWeight   = 0.3
	edgeWeight     = 0.2
	mod3Weight     = 0.01
	mod5Weight     = 0.005
	pickupFloor    = 7.0
	floorBase      = 0.1
	floorSlope     = 0.001
)

// fraction pairs a metric subdivision with its strength
type fraction struct {
	ratio    float64
	strength float64
}

var fractions = [...]fraction{
	{1.0 / 2.0, 5.0},
	{1.0 / 4.0, 3.0}, {3.0 / 4.0, 3.0},
	{1.0 / 3.0, 2.5}, {2.0 / 3.0, 2.5},
	{1.0 / 8.0, 1.5}, {3.0 / 8.0, 1.5}, {5.0 / 8.0, 1.5}, {7.0 / 8.0, 1.5},
	{1.0 / 6.0, 1.0}, {5.0 / 6.0, 1.0},
}

// Score returns the indispensability of position within a cycle of steps
// Positions are taken modulo steps; steps < 1 scores 0
func Score(position, steps int) float64 {
	if steps < 1 {
		return 0
	}
	position = vmath.Mod(position, steps)
	if position == 0 {
		return downbeatScore
	}

	score := 0.0

	if g := vmath.GCD(position, steps); g > 1 {
		score = float64(g) / float64(steps) * gcdScale
	}

	// Nearest fraction wins; first listed wins on equal distance
	ratio := float64(position) / float64(steps)
	closest := 1.0
	strength := 0.0
	for _, f := range fractions {
		if d := math.Abs(ratio - f.ratio); d < closest {
			closest = d
			strength = f.strength
		}
	}
	if closest <= 0.5/float64(steps) {
		score = math.Max(score, strength)
	}

	if score < fallbackCutoff {
		half := float64(steps) / 2
		centerDist := math.Abs(float64(position)-half) / half
		edgeDist := float64(min(position, steps-position)) / half
		score = (1 - centerDist*centerWeight) + edgeDist*edgeWeight
		score += float64(position%3)*mod3Weight + float64(position%5)*mod5Weight
	}

	if position == steps-1 {
		score = math.Max(score, pickupFloor)
	}

	return math.Max(score, floorBase+float64(position)*floorSlope)
}

// Table holds scores and a strict ranking for one step count
type Table struct {
	steps  int
	scores []float64
	order  []int // positions, most indispensable first
	rank   []int // rank[pos] = index into order
}

// NewTable computes scores for every position of steps
func NewTable(steps int) *Table {
	if steps < 0 {
		steps = 0
	}
	t := &Table{
		steps:  steps,
		scores: make([]float64, steps),
		order:  make([]int, steps),
		rank:   make([]int, steps),
	}
	for i := 0; i < steps; i++ {
		t.scores[i] = Score(i, steps)
		t.order[i] = i
	}

	// Exact score ties resolve to the earlier position
	sort.SliceStable(t.order, func(a, b int) bool {
		pa, pb := t.order[a], t.order[b]
		if t.scores[pa] != t.scores[pb] {
			return t.scores[pa] > t.scores[pb]
		}
		return pa < pb
	})
	for r, pos := range t.order {
		t.rank[pos] = r
	}
	return t
}

// Steps returns the cycle length the table was built for
func (t *Table) Steps() int {
	return t.steps
}

// Score returns the cached score for pos, 0 when out of range
func (t *Table) Score(pos int) float64 {
	if pos < 0 || pos >= t.steps {
		return 0
	}
	return t.scores[pos]
}

// Rank returns the strict rank of pos, 0 is the downbeat; -1 when out of range
func (t *Table) Rank(pos int) int {
	if pos < 0 || pos >= t.steps {
		return -1
	}
	return t.rank[pos]
}

// Order returns positions from most to least indispensable
func (t *Table) Order() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)
	return out
}

// Less reports whether a is strictly less indispensable than b
// Out-of-range positions rank below every valid one and never below each other
func (t *Table) Less(a, b int) bool {
	return t.lowRank(a) > t.lowRank(b)
}

func (t *Table) lowRank(pos int) int {
	if pos < 0 || pos >= t.steps {
		return t.steps
	}
	return t.rank[pos]
}

// Scores returns a copy of the per-position scores
func (t *Table) Scores() []float64 {
	out := make([]float64, len(t.scores))
	copy(out, t.scores)
	return out
}

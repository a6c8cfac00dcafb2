package equity

import (
	"iter"
	"math"

	"github.com/lox/pokerequity/poker"
)

// PlayerTally counts one player's showdown outcomes.
type PlayerTally struct {
	Wins   uint64
	Losses uint64
	// Ties[k] counts outcomes this player split k ways.
	Ties [MaxPlayers + 1]uint64
	// HandTypes counts the category the player finished with.
	HandTypes [poker.NumHandTypes]uint64
}

// TieCount returns the number of outcomes the player split with others.
func (p *PlayerTally) TieCount() uint64 {
	var n uint64
	for _, c := range p.Ties {
		n += c
	}
	return n
}

// TieShare returns the pot fraction won through ties: the sum of 1/k over
// every k-way split.
func (p *PlayerTally) TieShare() float64 {
	var share float64
	for k := 2; k < len(p.Ties); k++ {
		share += float64(p.Ties[k]) / float64(k)
	}
	return share
}

func (p *PlayerTally) merge(o *PlayerTally) {
	p.Wins += o.Wins
	p.Losses += o.Losses
	for k := range p.Ties {
		p.Ties[k] += o.Ties[k]
	}
	for t := range p.HandTypes {
		p.HandTypes[t] += o.HandTypes[t]
	}
}

// Tally accumulates outcomes over a set of completions. Tallies of disjoint
// completion sets merge by addition, in any grouping or order. The zero value
// is an empty tally that sizes itself on first use.
type Tally struct {
	Outcomes uint64
	Players  []PlayerTally

	ranks []poker.HandRank
}

// NewTally returns an empty tally for n players.
func NewTally(players int) *Tally {
	return &Tally{
		Players: make([]PlayerTally, players),
		ranks:   make([]poker.HandRank, players),
	}
}

// Add scores one completion: the sole best hand wins, several equal best
// hands split, everyone else loses.
func (t *Tally) Add(c *Completion) {
	t.grow(len(c.Holes))
	ranks := t.ranks[:len(c.Holes)]

	var best poker.HandRank
	winners := 0
	for i, hole := range c.Holes {
		r := poker.EvaluateHand(hole | c.Board)
		ranks[i] = r
		switch {
		case i == 0 || r > best:
			best, winners = r, 1
		case r == best:
			winners++
		}
	}

	t.Outcomes++
	for i, r := range ranks {
		p := &t.Players[i]
		p.HandTypes[r.Type()]++
		switch {
		case r != best:
			p.Losses++
		case winners == 1:
			p.Wins++
		default:
			p.Ties[winners]++
		}
	}
}

// Merge adds o into t, growing t when o covers more players.
func (t *Tally) Merge(o *Tally) {
	t.grow(len(o.Players))
	t.Outcomes += o.Outcomes
	for i := range o.Players {
		t.Players[i].merge(&o.Players[i])
	}
}

// grow makes room for n players, so the zero Tally is ready to use.
func (t *Tally) grow(n int) {
	if len(t.Players) < n {
		t.Players = append(t.Players, make([]PlayerTally, n-len(t.Players))...)
	}
	if len(t.ranks) < n {
		t.ranks = make([]poker.HandRank, n)
	}
}

// Aggregate tallies every completion in seq.
func Aggregate(seq iter.Seq[*Completion], players int) *Tally {
	t := NewTally(players)
	for c := range seq {
		t.Add(c)
	}
	return t
}

// maxStdErr returns the largest standard error of any player's equity
// estimate, as a fraction.
func (t *Tally) maxStdErr() float64 {
	if t.Outcomes == 0 {
		return math.Inf(1)
	}
	n := float64(t.Outcomes)
	var worst float64
	for i := range t.Players {
		p := &t.Players[i]
		e := (float64(p.Wins) + p.TieShare()) / n
		if se := math.Sqrt(e * (1 - e) / n); se > worst {
			worst = se
		}
	}
	return worst
}

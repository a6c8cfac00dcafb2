package equity

import (
	"math"

	"github.com/lox/pokerequity/poker"
)

// Mode records which engine produced a Result.
type Mode uint8

const (
	// Exact results enumerate every completion.
	Exact Mode = iota
	// Sampled results come from a Monte Carlo run.
	Sampled
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Sampled:
		return "sampled"
	default:
		return "unknown"
	}
}

// PlayerResult is one player's share of the outcomes.
type PlayerResult struct {
	// Hole holds the player's known hole cards.
	Hole []poker.Card

	Wins   uint64
	Ties   uint64
	Losses uint64
	Total  uint64

	// TieShare is the pot fraction won through splits, summed over outcomes.
	TieShare float64
	// Equity is the percentage of the pot won on average (0-100).
	Equity float64

	// HandTypes counts how often the player finished with each category.
	HandTypes [poker.NumHandTypes]uint64
}

// WinRate returns the fraction of outcomes won outright.
func (p PlayerResult) WinRate() float64 {
	if p.Total == 0 {
		return 0.0
	}
	return float64(p.Wins) / float64(p.Total)
}

// TieRate returns the fraction of outcomes split with others.
func (p PlayerResult) TieRate() float64 {
	if p.Total == 0 {
		return 0.0
	}
	return float64(p.Ties) / float64(p.Total)
}

// LossRate returns the fraction of outcomes lost.
func (p PlayerResult) LossRate() float64 {
	if p.Total == 0 {
		return 0.0
	}
	return float64(p.Losses) / float64(p.Total)
}

// ConfidenceInterval returns the 95% confidence interval for Equity, in
// percent. It is only meaningful for sampled results.
func (p PlayerResult) ConfidenceInterval() (lower, upper float64) {
	if p.Total == 0 {
		return 0.0, 0.0
	}
	equity := p.Equity / 100
	se := math.Sqrt(equity * (1.0 - equity) / float64(p.Total))
	margin := 1.96 * se

	lower = math.Max(0.0, equity-margin) * 100
	upper = math.Min(1.0, equity+margin) * 100
	return lower, upper
}

// Result is the outcome of one Compute call.
type Result struct {
	Players []PlayerResult
	Mode    Mode
	// Space is the size of the exact completion space, saturated at
	// math.MaxUint64.
	Space uint64
	// Trials is the number of Monte Carlo trials run; zero for exact results.
	Trials uint64
	// Seed is the Monte Carlo seed used; zero for exact results.
	Seed int64
}

// Result converts the tally into percentages for the scenario's players.
func (t *Tally) Result(sc *Scenario, mode Mode) (*Result, error) {
	if t.Outcomes == 0 {
		return nil, ErrNoCompletions
	}

	res := &Result{
		Players: make([]PlayerResult, len(t.Players)),
		Mode:    mode,
		Space:   sc.Space(),
	}
	total := float64(t.Outcomes)
	for i := range t.Players {
		p := &t.Players[i]
		share := p.TieShare()
		res.Players[i] = PlayerResult{
			Hole:      sc.Known(i),
			Wins:      p.Wins,
			Ties:      p.TieCount(),
			Losses:    p.Losses,
			Total:     t.Outcomes,
			TieShare:  share,
			Equity:    (float64(p.Wins) + share) / total * 100,
			HandTypes: p.HandTypes,
		}
	}
	if mode == Sampled {
		res.Trials = t.Outcomes
	}
	return res, nil
}

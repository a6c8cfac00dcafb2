// Package equity computes each player's probability of winning, tying or
// losing a Texas Hold'em hand at showdown.
//
// A Request names the known hole cards, the known board and how many players
// hold fully unknown cards. The Calculator counts the completions of the
// unknown cards and either enumerates all of them or, when that space is
// larger than the configured threshold, samples them with a seeded Monte Carlo
// run. Work is split into independent shards whose tallies are summed, so the
// answer never depends on scheduling.
//
// Compute reads no global state with one exception: a sampled request without
// a Seed draws a fresh one from the process-wide generator, so two such calls
// differ. The seed used is returned in Result.Seed; passing it back as
// Request.Seed replays the run exactly.
package equity

import (
	"math"
	"math/bits"

	"github.com/lox/pokerequity/poker"
)

const (
	// BoardSize is the number of community cards at showdown.
	BoardSize = 5
	// HoleSize is the number of private cards each player holds.
	HoleSize = 2
	// MaxPlayers is the largest table a 52-card deck can deal to showdown.
	MaxPlayers = (poker.NumCards - BoardSize) / HoleSize
)

// Player is one seat's known hole cards: none, one or both.
type Player struct {
	Hole []poker.Card
}

// Request describes a single equity calculation.
type Request struct {
	// Players with zero, one or two known hole cards, in seat order.
	Players []Player
	// Board holds the known community cards (0-5).
	Board []poker.Card
	// Dead cards are out of play: known to be in no hand and not on the board.
	Dead []poker.Card
	// UnknownPlayers are appended after Players with no known cards.
	UnknownPlayers int

	// Seed fixes the Monte Carlo stream. A fresh seed is drawn when nil and
	// reported back in the Result.
	Seed *int64
	// Trials overrides the configured Monte Carlo trial count when positive.
	Trials int
	// Threshold overrides the configured tractability threshold when set.
	// Zero forces sampling.
	Threshold *uint64
}

// level is one nested selection step: some unknown cards for the board
// (player < 0) or for one player's hole.
type level struct {
	player int
	count  int
}

// Scenario is a validated request: the known cards per slot, what is still
// missing, and the remaining deck the missing cards are drawn from.
type Scenario struct {
	board  poker.Hand
	holes  []poker.Hand
	known  [][]poker.Card
	deck   []poker.Card
	levels []level
}

// NewScenario validates req and prepares it for enumeration or sampling.
func NewScenario(req Request) (*Scenario, error) {
	if req.UnknownPlayers < 0 {
		return nil, invalid(ErrTooFewPlayers, "negative unknown player count %d", req.UnknownPlayers)
	}
	players := len(req.Players) + req.UnknownPlayers
	if players < 2 {
		return nil, invalid(ErrTooFewPlayers, "got %d", players)
	}
	if players > MaxPlayers {
		return nil, invalid(ErrTooManyCards, "%d players need %d cards", players, BoardSize+HoleSize*players)
	}
	if len(req.Board) > BoardSize {
		return nil, invalid(ErrTooManyBoardCards, "got %d", len(req.Board))
	}

	known := make([]poker.Card, 0, poker.NumCards)
	known = append(known, req.Board...)
	for i, p := range req.Players {
		if len(p.Hole) > HoleSize {
			return nil, invalid(ErrTooManyHoleCards, "player %d has %d", i+1, len(p.Hole))
		}
		known = append(known, p.Hole...)
	}
	known = append(known, req.Dead...)

	deck, err := poker.RemainingDeck(known...)
	if err != nil {
		return nil, invalidCards(err)
	}

	sc := &Scenario{
		board: poker.NewHand(req.Board...),
		holes: make([]poker.Hand, players),
		known: make([][]poker.Card, players),
		deck:  deck,
	}

	missing := 0
	if n := BoardSize - len(req.Board); n > 0 {
		sc.levels = append(sc.levels, level{player: -1, count: n})
		missing += n
	}
	for i := range players {
		var hole []poker.Card
		if i < len(req.Players) {
			hole = append(hole, req.Players[i].Hole...)
		}
		sc.known[i] = hole
		sc.holes[i] = poker.NewHand(hole...)
		if n := HoleSize - len(hole); n > 0 {
			sc.levels = append(sc.levels, level{player: i, count: n})
			missing += n
		}
	}

	if missing > len(deck) {
		return nil, invalid(ErrTooManyCards, "%d unknown cards but only %d left in the deck", missing, len(deck))
	}
	return sc, nil
}

// Players returns the number of players, including fully unknown ones.
func (sc *Scenario) Players() int {
	return len(sc.holes)
}

// Known returns the known hole cards of player i.
func (sc *Scenario) Known(i int) []poker.Card {
	return sc.known[i]
}

// Deck returns a copy of the remaining deck in ascending order.
func (sc *Scenario) Deck() []poker.Card {
	return append([]poker.Card(nil), sc.deck...)
}

// Missing returns how many unknown cards every completion fills in.
func (sc *Scenario) Missing() int {
	n := 0
	for _, lv := range sc.levels {
		n += lv.count
	}
	return n
}

// Space returns the number of distinct completions, saturating at
// math.MaxUint64.
func (sc *Scenario) Space() uint64 {
	total := uint64(1)
	avail := len(sc.deck)
	for _, lv := range sc.levels {
		total = mulSaturating(total, binomial(avail, lv.count))
		avail -= lv.count
	}
	return total
}

func (sc *Scenario) newCompletion() Completion {
	c := Completion{
		Board: sc.board,
		Holes: make([]poker.Hand, len(sc.holes)),
	}
	copy(c.Holes, sc.holes)
	return c
}

func (sc *Scenario) assign(c *Completion, lv level, pick poker.Hand) {
	if lv.player < 0 {
		c.Board = sc.board | pick
		return
	}
	c.Holes[lv.player] = sc.holes[lv.player] | pick
}

// Completion is one concrete assignment of every unknown card.
// Sequences reuse a single Completion between steps; Clone it to keep one.
type Completion struct {
	Board poker.Hand
	Holes []poker.Hand
}

// Clone returns a copy that does not share the hole slice.
func (c *Completion) Clone() Completion {
	return Completion{Board: c.Board, Holes: append([]poker.Hand(nil), c.Holes...)}
}

// Cards returns every card in the completion.
func (c *Completion) Cards() poker.Hand {
	h := c.Board
	for _, hole := range c.Holes {
		h |= hole
	}
	return h
}

// binomial returns C(n, k) for the small k used here.
func binomial(n, k int) uint64 {
	if k < 0 || k > n {
		return 0
	}
	c := uint64(1)
	for i := range k {
		c = c * uint64(n-i) / uint64(i+1)
	}
	return c
}

func mulSaturating(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

package equity

import (
	"iter"

	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
)

// Sample returns `trials` independent uniform completions drawn from
// sub-stream `stream` of seed.
//
// Each trial returns every card to the deck, then draws the unknown board
// cards followed by each player's missing hole cards without replacement, so
// every legal completion is equally likely and none repeats a card. The same
// (seed, stream, trials) always yields the same completions, and ranging over
// the sequence again replays them.
func (sc *Scenario) Sample(seed int64, stream uint64, trials int) iter.Seq[*Completion] {
	return func(yield func(*Completion) bool) {
		deck := poker.NewDeck(sc.deck, randutil.Derive(seed, stream))
		cur := sc.newCompletion()
		for range trials {
			deck.Reset()
			for _, lv := range sc.levels {
				pick, ok := deck.DrawHand(lv.count)
				if !ok {
					return
				}
				sc.assign(&cur, lv, pick)
			}
			if !yield(&cur) {
				return
			}
		}
	}
}

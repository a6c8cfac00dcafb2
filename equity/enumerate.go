package equity

import (
	"context"
	"iter"

	"github.com/lox/pokerequity/poker"
)

// Exhaustive returns every completion of the scenario exactly once.
// Each range over the sequence starts again from the first completion.
func (sc *Scenario) Exhaustive() iter.Seq[*Completion] {
	return sc.Enumerate(context.Background(), 0, 1)
}

// Enumerate returns shard `shard` of `shards` of the exact completion space.
//
// Unknown board cards are chosen first, then each player's missing hole cards
// in seat order, each step drawing from the deck minus everything chosen by
// the steps before it. Shard i owns the outermost combinations whose ordinal
// is i modulo shards, together with everything nested under them, so the
// shards partition the space. ctx is checked before every outermost
// combination; once it is done the sequence ends early.
func (sc *Scenario) Enumerate(ctx context.Context, shard, shards int) iter.Seq[*Completion] {
	if shards < 1 {
		shards = 1
	}
	return func(yield func(*Completion) bool) {
		w := &walker{
			sc:     sc,
			ctx:    ctx,
			shard:  shard,
			shards: shards,
			cur:    sc.newCompletion(),
			pools:  make([][]poker.Card, len(sc.levels)),
			yield:  yield,
		}
		if len(sc.levels) == 0 {
			if shard == 0 {
				yield(&w.cur)
			}
			return
		}
		for i := range w.pools {
			w.pools[i] = make([]poker.Card, 0, len(sc.deck))
		}
		w.walk(0, 0)
	}
}

type walker struct {
	sc      *Scenario
	ctx     context.Context
	shard   int
	shards  int
	ordinal int
	cur     Completion
	pools   [][]poker.Card
	yield   func(*Completion) bool
}

// walk fills the level at depth and every level below it; used holds the
// cards picked by outer levels. It returns false once iteration must stop.
func (w *walker) walk(depth int, used poker.Hand) bool {
	if depth == len(w.sc.levels) {
		return w.yield(&w.cur)
	}

	lv := w.sc.levels[depth]
	pool := w.pools[depth][:0]
	for _, c := range w.sc.deck {
		if !used.HasCard(c) {
			pool = append(pool, c)
		}
	}
	w.pools[depth] = pool

	return eachCombination(pool, lv.count, func(pick poker.Hand) bool {
		if depth == 0 {
			n := w.ordinal
			w.ordinal++
			if n%w.shards != w.shard {
				return true
			}
			if w.ctx.Err() != nil {
				return false
			}
		}
		w.sc.assign(&w.cur, lv, pick)
		return w.walk(depth+1, used|pick)
	})
}

// eachCombination calls fn with every k-card subset of pool in lexicographic
// index order, stopping early when fn returns false.
func eachCombination(pool []poker.Card, k int, fn func(poker.Hand) bool) bool {
	n := len(pool)
	if k > n || k > BoardSize {
		return true
	}
	if k == 0 {
		return fn(0)
	}

	var idx [BoardSize]int
	for i := range k {
		idx[i] = i
	}
	for {
		var pick poker.Hand
		for i := range k {
			pick |= pool[idx[i]].Mask()
		}
		if !fn(pick) {
			return false
		}

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return true
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

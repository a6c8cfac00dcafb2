package equity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/poker"
)

type completionKey struct {
	board poker.Hand
	holes [3]poker.Hand
}

func keyOf(c *Completion) completionKey {
	k := completionKey{board: c.Board}
	copy(k.holes[:], c.Holes)
	return k
}

// checkCompletion asserts that c fills every slot, keeps the known cards
// and repeats no card.
func checkCompletion(t *testing.T, sc *Scenario, c *Completion) {
	t.Helper()

	require.Equal(t, BoardSize, c.Board.CountCards())
	require.Equal(t, sc.board, c.Board&sc.board)

	var seen poker.Hand
	seen |= c.Board
	for i, hole := range c.Holes {
		require.Equal(t, HoleSize, hole.CountCards(), "player %d", i)
		require.Equal(t, sc.holes[i], hole&sc.holes[i], "player %d lost a known card", i)
		require.Zero(t, seen&hole, "player %d shares a card", i)
		seen |= hole
	}
	require.Equal(t, BoardSize+HoleSize*len(c.Holes), c.Cards().CountCards())
}

func TestExhaustiveVisitsEveryCompletionOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "flop",
			req:  Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")},
		},
		{
			name: "turn with unknown opponent",
			req:  Request{Players: players("AsKs"), Board: cards("2s7sQc3d"), UnknownPlayers: 1},
		},
		{
			name: "river three way with partial hands",
			req: Request{
				Players: []Player{{Hole: cards("AsKs")}, {Hole: cards("Qh")}, {}},
				Board:   cards("2s7sQc3d9h"),
			},
		},
		{
			name: "fully known",
			req:  Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc3d9h")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sc, err := NewScenario(tt.req)
			require.NoError(t, err)

			seen := make(map[completionKey]bool)
			for c := range sc.Exhaustive() {
				checkCompletion(t, sc, c)
				k := keyOf(c)
				require.False(t, seen[k], "completion repeated")
				seen[k] = true
			}
			assert.Equal(t, sc.Space(), uint64(len(seen)))
		})
	}
}

func TestExhaustiveIsRestartable(t *testing.T) {
	t.Parallel()

	sc, err := NewScenario(Request{
		Players: []Player{{Hole: cards("AsKs")}, {Hole: cards("Qh")}},
		Board:   cards("2s7sQc"),
	})
	require.NoError(t, err)

	collect := func(seq func(func(*Completion) bool)) []Completion {
		var out []Completion
		for c := range seq {
			out = append(out, c.Clone())
		}
		return out
	}

	seq := sc.Exhaustive()
	first := collect(seq)
	second := collect(seq)
	require.Len(t, first, int(sc.Space()))
	assert.Equal(t, first, second)

	// An interrupted pass does not disturb the next one.
	n := 0
	for range seq {
		n++
		if n == 100 {
			break
		}
	}
	assert.Equal(t, first, collect(seq))
}

func TestEnumerateShardsPartitionTheSpace(t *testing.T) {
	t.Parallel()

	sc, err := NewScenario(Request{
		Players:        players("AsKs"),
		Board:          cards("2s7sQc3d"),
		UnknownPlayers: 1,
	})
	require.NoError(t, err)

	for _, shards := range []int{1, 2, 3, 7, 64} {
		owner := make(map[completionKey]int)
		for shard := range shards {
			for c := range sc.Enumerate(context.Background(), shard, shards) {
				k := keyOf(c)
				prev, dup := owner[k]
				require.False(t, dup, "shards %d and %d overlap", prev, shard)
				owner[k] = shard
			}
		}
		assert.Equal(t, sc.Space(), uint64(len(owner)), "shards=%d", shards)
	}
}

func TestEnumerateFullyKnownYieldsOnceOnShardZero(t *testing.T) {
	t.Parallel()

	sc, err := NewScenario(Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc3d9h")})
	require.NoError(t, err)

	counts := make([]int, 4)
	for shard := range counts {
		for range sc.Enumerate(context.Background(), shard, len(counts)) {
			counts[shard]++
		}
	}
	assert.Equal(t, []int{1, 0, 0, 0}, counts)
}

func TestEnumerateStopsWhenContextIsDone(t *testing.T) {
	t.Parallel()

	sc, err := NewScenario(Request{Players: players("AhAd", "KsKc")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := 0
	for range sc.Enumerate(ctx, 0, 1) {
		n++
	}
	assert.Zero(t, n)
}

func TestExhaustiveStopsWhenConsumerBreaks(t *testing.T) {
	t.Parallel()

	sc, err := NewScenario(Request{Players: players("AsKs", "QhQd"), Board: cards("2s7sQc")})
	require.NoError(t, err)

	n := 0
	for range sc.Exhaustive() {
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
}

func TestEachCombination(t *testing.T) {
	t.Parallel()

	pool := cards("2c3c4c5c6c")
	var picks []poker.Hand
	eachCombination(pool, 2, func(h poker.Hand) bool {
		picks = append(picks, h)
		return true
	})
	require.Len(t, picks, 10)
	assert.Equal(t, poker.NewHand(cards("2c3c")...), picks[0])
	assert.Equal(t, poker.NewHand(cards("5c6c")...), picks[len(picks)-1])

	var count int
	eachCombination(pool, 0, func(h poker.Hand) bool {
		assert.Zero(t, h)
		count++
		return true
	})
	assert.Equal(t, 1, count)
}

package poker

import (
	"fmt"
	"math/bits"
)

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumHandTypes is the number of hand categories.
const NumHandTypes = 9

// String returns a human-readable category name.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// tieBreakLen is the number of meaningful tie-break ranks per category.
var tieBreakLen = [NumHandTypes]int{
	HighCard:      5,
	Pair:          4,
	TwoPair:       3,
	ThreeOfAKind:  3,
	Straight:      1,
	Flush:         5,
	FullHouse:     2,
	FourOfAKind:   2,
	StraightFlush: 1,
}

// HandRank is a hand category plus its tie-break ranks, packed as
// type<<20 | t0<<16 | t1<<12 | t2<<8 | t3<<4 | t4.
// Higher values are stronger, so comparing two HandRanks as integers compares
// categories first and then the tie-break tuples lexicographically.
type HandRank uint32

const (
	typeShift = 20
	slotBits  = 4
)

// Type returns the category of the hand.
func (hr HandRank) Type() HandType {
	return HandType(hr >> typeShift)
}

// TieBreak returns the ordered tie-break ranks (0-12, most significant first).
// For a straight or straight flush this is the high card, Five for the wheel.
func (hr HandRank) TieBreak() []uint8 {
	t := hr.Type()
	if t >= NumHandTypes {
		return nil
	}
	n := tieBreakLen[t]
	out := make([]uint8, n)
	for i := range n {
		shift := uint(16 - i*slotBits)
		out[i] = uint8(hr>>shift) & 0xF
	}
	return out
}

// String returns a human-readable hand description, e.g. "Full House (K 8)".
func (hr HandRank) String() string {
	ranks := hr.TieBreak()
	if len(ranks) == 0 {
		return hr.Type().String()
	}
	buf := make([]byte, 0, 2*len(ranks))
	for i, r := range ranks {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, rankChars[r])
	}
	return fmt.Sprintf("%s (%s)", hr.Type(), buf)
}

// Outcome is the result of comparing one hand against another.
type Outcome int8

const (
	Loss Outcome = -1
	Tie  Outcome = 0
	Win  Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Tie:
		return "tie"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

// Compare returns Win if hr beats other, Loss if other beats hr and Tie when
// category and tie-break ranks are all equal.
func (hr HandRank) Compare(other HandRank) Outcome {
	switch {
	case hr > other:
		return Win
	case hr < other:
		return Loss
	default:
		return Tie
	}
}

// Evaluate ranks 5 to 7 distinct cards by their best five-card combination.
func Evaluate(cards []Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidCard, len(cards))
	}
	hand, err := KnownSet(cards...)
	if err != nil {
		return 0, err
	}
	return EvaluateHand(hand), nil
}

// EvaluateHand ranks the best five-card hand contained in h, which must hold
// 5 to 7 cards. It does not allocate.
func EvaluateHand(h Hand) HandRank {
	s0 := h.GetSuitMask(Clubs)
	s1 := h.GetSuitMask(Diamonds)
	s2 := h.GetSuitMask(Hearts)
	s3 := h.GetSuitMask(Spades)
	rankMask := s0 | s1 | s2 | s3

	// With at most seven cards a flush rules out quads and full houses, so
	// the flush suit settles the hand on its own.
	for _, suitMask := range [4]uint16{s0, s1, s2, s3} {
		if bits.OnesCount16(suitMask) >= 5 {
			if high, ok := straightHigh(suitMask); ok {
				return pack(StraightFlush, uint32(high)<<16)
			}
			return pack(Flush, topRanks(suitMask, 5))
		}
	}

	quads := s0 & s1 & s2 & s3
	tripsOrBetter := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	pairsOrBetter := (s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)
	trips := tripsOrBetter &^ quads
	pairs := pairsOrBetter &^ tripsOrBetter

	if quads != 0 {
		quad := highest(quads)
		kicker := highest(rankMask &^ (1 << quad))
		return pack(FourOfAKind, uint32(quad)<<16|uint32(kicker)<<12)
	}

	if trips != 0 {
		trip := highest(trips)
		// A second set of trips plays as the pair.
		if rest := pairs | (trips &^ (1 << trip)); rest != 0 {
			return pack(FullHouse, uint32(trip)<<16|uint32(highest(rest))<<12)
		}
	}

	if high, ok := straightHigh(rankMask); ok {
		return pack(Straight, uint32(high)<<16)
	}

	if trips != 0 {
		trip := highest(trips)
		return pack(ThreeOfAKind, uint32(trip)<<16|topRanks(rankMask&^(1<<trip), 2)>>4)
	}

	if pairs != 0 {
		high := highest(pairs)
		if low := pairs &^ (1 << high); low != 0 {
			second := highest(low)
			kicker := highest(rankMask &^ (1 << high) &^ (1 << second))
			return pack(TwoPair, uint32(high)<<16|uint32(second)<<12|uint32(kicker)<<8)
		}
		return pack(Pair, uint32(high)<<16|topRanks(rankMask&^(1<<high), 3)>>4)
	}

	return pack(HighCard, topRanks(rankMask, 5))
}

func pack(t HandType, tieBreak uint32) HandRank {
	return HandRank(uint32(t)<<typeShift | tieBreak)
}

// highest returns the highest rank present in a non-empty mask.
func highest(mask uint16) uint8 {
	return uint8(bits.Len16(mask) - 1)
}

// topRanks packs the n highest ranks of mask into the tie-break slots,
// starting at the most significant one.
func topRanks(mask uint16, n int) uint32 {
	var packed uint32
	shift := uint(16)
	for range n {
		if mask == 0 {
			break
		}
		r := highest(mask)
		packed |= uint32(r) << shift
		mask &^= 1 << r
		shift -= slotBits
	}
	return packed
}

// straightHigh returns the high card of the best straight in a rank mask.
// The wheel (A-2-3-4-5) reports Five.
func straightHigh(mask uint16) (uint8, bool) {
	// Shift ranks up one place and copy the ace into bit 0 so it can play low.
	ext := uint32(mask)<<1 | uint32(mask>>Ace)&1
	seq := ext & (ext >> 1) & (ext >> 2) & (ext >> 3) & (ext >> 4)
	if seq == 0 {
		return 0, false
	}
	top := bits.Len32(seq) - 1
	return uint8(top + 3), true
}

package poker

// StartingHand returns the shorthand for two hole cards: "AA" for a pair,
// "AKs" suited and "AKo" offsuit, higher rank first. It returns "" if either
// card is invalid or both are the same card.
func StartingHand(a, b Card) string {
	if !a.Valid() || !b.Valid() || a == b {
		return ""
	}

	hi, lo := a.Rank(), b.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return string([]byte{rankChars[hi], rankChars[lo]})
	}

	kind := byte('o')
	if a.Suit() == b.Suit() {
		kind = 's'
	}
	return string([]byte{rankChars[hi], rankChars[lo], kind})
}

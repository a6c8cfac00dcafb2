// Package poker models the 52-card deck and ranks Texas Hold'em hands.
//
// Cards are small integers ordered by rank then suit, which keeps enumeration
// order and test fixtures reproducible. Sets of cards are uint64 bitsets laid
// out one suit per 13-bit lane so the evaluator can read rank masks directly.
package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single playing card encoded as rank*4 + suit (0-51).
// Integer order is the total order used everywhere: rank first, then suit.
type Card uint8

// Hand is a set of cards. Bit suit*13+rank is set for each card present.
type Hand uint64

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

// NumCards is the size of the card universe.
const NumCards = 52

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

var (
	// ErrInvalidCard reports an unrecognised rank or suit token or an
	// out-of-range card value.
	ErrInvalidCard = errors.New("invalid card")
	// ErrDuplicateCard reports a card that appears more than once.
	ErrDuplicateCard = errors.New("duplicate card")
)

// DuplicateCardError names the card that was seen twice.
type DuplicateCardError struct {
	Card Card
}

func (e *DuplicateCardError) Error() string {
	return fmt.Sprintf("duplicate card %s", e.Card)
}

// Unwrap lets errors.Is match ErrDuplicateCard.
func (e *DuplicateCardError) Unwrap() error {
	return ErrDuplicateCard
}

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(rank<<2 | suit)
}

// Rank returns the rank of the card (0-12)
func (c Card) Rank() uint8 {
	return uint8(c) >> 2
}

// Suit returns the suit of the card (0-3)
func (c Card) Suit() uint8 {
	return uint8(c) & 3
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c < NumCards
}

// Mask returns the single-card Hand for c.
func (c Card) Mask() Hand {
	return cardMasks[c%NumCards]
}

// String returns the string representation (e.g., "As", "Kh")
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

var cardMasks = func() [NumCards]Hand {
	var masks [NumCards]Hand
	for i := range masks {
		c := Card(i)
		masks[i] = Hand(1) << (uint(c.Suit())*13 + uint(c.Rank()))
	}
	return masks
}()

// ParseCard parses a string like "As" into a Card
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q must be a rank and a suit", ErrInvalidCard, s)
	}

	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("%w: unknown rank %q in %q", ErrInvalidCard, s[0], s)
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("%w: unknown suit %q in %q", ErrInvalidCard, s[1], s)
	}

	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses concatenated card notation such as "AsKd" or "As Kd Qh".
// An empty string yields no cards.
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %q has an odd number of characters", ErrInvalidCard, s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// NewHand creates a hand from multiple cards
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= c.Mask()
	}
	return h
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(c Card) {
	*h |= c.Mask()
}

// HasCard checks if the hand contains a specific card
func (h Hand) HasCard(c Card) bool {
	return h&c.Mask() != 0
}

// CountCards returns the number of cards in the hand
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the ranks held in one suit as a 13-bit mask
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16(h>>(uint(suit)*13)) & 0x1FFF
}

// GetRankMask returns a bitmask of which ranks are present
func (h Hand) GetRankMask() uint16 {
	return h.GetSuitMask(Clubs) | h.GetSuitMask(Diamonds) | h.GetSuitMask(Hearts) | h.GetSuitMask(Spades)
}

// Cards lists the cards in the hand in ascending card order.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for i := range Card(NumCards) {
		if h.HasCard(i) {
			cards = append(cards, i)
		}
	}
	return cards
}

// String renders the cards in ascending order, e.g. "2c Td As".
func (h Hand) String() string {
	cards := h.Cards()
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

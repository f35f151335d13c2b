package deck

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// Size is the number of cards in a full deck
const Size = 108

// ErrNothingToReshuffle is returned when the draw pile is empty and the discard
// pile holds nothing besides its top card. Reaching it means cards were lost.
var ErrNothingToReshuffle = errors.New("deck: discard pile has nothing to reshuffle")

// Standard returns the 108 cards of a full deck in a fixed order
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for _, color := range Colors {
		cards = append(cards, NewCard(color, Zero))
		for v := One; v <= DrawTwo; v++ {
			cards = append(cards, NewCard(color, v), NewCard(color, v))
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, NewCard(Wild, ChangeColor), NewCard(Wild, DrawFour))
	}
	return cards
}

// Shuffle randomizes the order of cards in place (Fisher–Yates)
func Shuffle(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deck is the draw pile. Cards are dealt from the end of the slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a shuffled full deck
func New(rng *rand.Rand) *Deck {
	cards := Standard()
	Shuffle(cards, rng)
	return &Deck{cards: cards, rng: rng}
}

// NewStacked creates a deck with cards in the given order; the last card is dealt first.
// It does not shuffle, which makes it useful for scripted scenarios.
func NewStacked(cards []Card, rng *rand.Rand) *Deck {
	return &Deck{cards: append([]Card(nil), cards...), rng: rng}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// DealN deals up to n cards from the deck
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, _ := d.Deal()
		cards = append(cards, card)
	}
	return cards
}

// Bury returns a card to a random position in the deck below the top card,
// so the next Deal is unaffected.
func (d *Deck) Bury(card Card) {
	i := 0
	if len(d.cards) > 0 {
		i = d.rng.IntN(len(d.cards))
	}
	d.cards = slices.Insert(d.cards, i, card)
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards; the last one is dealt next
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Pile is the discard pile; its last card is the top card
type Pile struct {
	cards []Card
}

// Push places a card on top of the pile
func (p *Pile) Push(c Card) {
	p.cards = append(p.cards, c)
}

// Top returns the top card of the pile
func (p *Pile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// Len returns the number of cards in the pile
func (p *Pile) Len() int {
	return len(p.cards)
}

// Cards returns a copy of the pile, bottom first
func (p *Pile) Cards() []Card {
	return append([]Card(nil), p.cards...)
}

// Reshuffle turns the discard pile, minus its top card, into a fresh shuffled
// deck. The discard pile is left holding only the top card.
func Reshuffle(d *Deck, p *Pile, rng *rand.Rand) error {
	if len(p.cards) <= 1 {
		return ErrNothingToReshuffle
	}
	top := p.cards[len(p.cards)-1]
	rest := p.cards[:len(p.cards)-1]

	d.cards = append(d.cards, rest...)
	Shuffle(d.cards, rng)
	p.cards = []Card{top}
	return nil
}

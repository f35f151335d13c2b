package game

import "github.com/lox/lastcard/internal/deck"

// disconnectedSuffix is appended to a seat's display name while it is offline
const disconnectedSuffix = " (disconnected)"

// Player is one seat at the table
type Player struct {
	Seat   int
	ID     string // connection handle, replaced on reconnect
	Name   string
	Wallet string
	Hand   []deck.Card

	// OriginalName holds the display name while the seat is disconnected
	OriginalName string
	HasDeclared  bool
	Disconnected bool
}

// take removes and returns the card at index i
func (p *Player) take(i int) deck.Card {
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return card
}

// give adds a card to the hand. A declaration only covers a single held card,
// so it lapses once the hand grows past one.
func (p *Player) give(card deck.Card) {
	p.Hand = append(p.Hand, card)
	if len(p.Hand) > 1 {
		p.HasDeclared = false
	}
}

func (p *Player) disconnect() {
	if p.Disconnected {
		return
	}
	p.Disconnected = true
	p.OriginalName = p.Name
	p.Name += disconnectedSuffix
}

func (p *Player) reconnect(id string) {
	p.ID = id
	if p.Disconnected {
		p.Name = p.OriginalName
		p.OriginalName = ""
	}
	p.Disconnected = false
}

package deck

import (
	"fmt"
	"strings"
)

// Color represents a card colour
type Color uint8

const (
	Red Color = iota
	Green
	Blue
	Yellow
	Wild
)

// Colors lists the four colours a wild card can be bound to
var Colors = [...]Color{Red, Green, Blue, Yellow}

// String returns the lowercase colour name
func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Wild:
		return "wild"
	default:
		return "invalid"
	}
}

// IsPlayable reports whether c is one of the four colours a wild can be bound to
func (c Color) IsPlayable() bool {
	return c <= Yellow
}

// ParseColor parses a colour name or its single-letter short form
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	case "yellow", "y":
		return Yellow, nil
	case "wild", "w":
		return Wild, nil
	}
	return 0, fmt.Errorf("invalid color: %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if c > Wild {
		return nil, fmt.Errorf("invalid color: %d", c)
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value represents the face of a card
type Value uint8

const (
	Zero Value = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reverse
	DrawTwo
	ChangeColor
	DrawFour
	// Back is a face-down placeholder for redacted views. The deck never contains it.
	Back
)

// String returns the value name
func (v Value) String() string {
	if v <= Nine {
		return string(rune('0' + v))
	}
	switch v {
	case Skip:
		return "skip"
	case Reverse:
		return "reverse"
	case DrawTwo:
		return "draw-two"
	case ChangeColor:
		return "wild"
	case DrawFour:
		return "wild-draw-four"
	case Back:
		return "back"
	default:
		return "invalid"
	}
}

// ParseValue parses a value name as produced by String
func ParseValue(s string) (Value, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Value(s[0] - '0'), nil
	}
	switch s {
	case "skip":
		return Skip, nil
	case "reverse":
		return Reverse, nil
	case "draw-two":
		return DrawTwo, nil
	case "wild":
		return ChangeColor, nil
	case "wild-draw-four":
		return DrawFour, nil
	case "back":
		return Back, nil
	}
	return 0, fmt.Errorf("invalid value: %q", s)
}

func (v Value) MarshalText() ([]byte, error) {
	if v > Back {
		return nil, fmt.Errorf("invalid value: %d", v)
	}
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalText(b []byte) error {
	parsed, err := ParseValue(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Card is an immutable card value
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// NewCard creates a new card
func NewCard(color Color, value Value) Card {
	return Card{Color: color, Value: value}
}

// FaceDown is the placeholder shown in place of a hidden card
var FaceDown = Card{Color: Wild, Value: Back}

// IsWild returns true for wild and wild-draw-four
func (c Card) IsWild() bool {
	return c.Value == ChangeColor || c.Value == DrawFour
}

// IsAction returns true for cards with a turn-order or draw effect
func (c Card) IsAction() bool {
	switch c.Value {
	case Skip, Reverse, DrawTwo, DrawFour:
		return true
	}
	return false
}

// DrawPenalty is the number of cards the next seat must draw
func (c Card) DrawPenalty() int {
	switch c.Value {
	case DrawTwo:
		return 2
	case DrawFour:
		return 4
	}
	return 0
}

var colorLetters = [...]string{"r", "g", "b", "y"}

// String returns the short form of a card, e.g. "r5", "gS", "b+2", "W", "W+4"
func (c Card) String() string {
	switch c.Value {
	case ChangeColor:
		return "W"
	case DrawFour:
		return "W+4"
	case Back:
		return "??"
	}
	if !c.Color.IsPlayable() {
		return "?"
	}

	prefix := colorLetters[c.Color]
	switch c.Value {
	case Skip:
		return prefix + "S"
	case Reverse:
		return prefix + "R"
	case DrawTwo:
		return prefix + "+2"
	}
	return prefix + c.Value.String()
}

// ParseCard parses the short form produced by Card.String
func ParseCard(s string) (Card, error) {
	switch strings.ToUpper(s) {
	case "W":
		return NewCard(Wild, ChangeColor), nil
	case "W+4":
		return NewCard(Wild, DrawFour), nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card: %q", s)
	}

	color, err := ParseColor(s[:1])
	if err != nil || !color.IsPlayable() {
		return Card{}, fmt.Errorf("invalid card color in %q", s)
	}

	switch rest := strings.ToUpper(s[1:]); rest {
	case "S":
		return NewCard(color, Skip), nil
	case "R":
		return NewCard(color, Reverse), nil
	case "+2":
		return NewCard(color, DrawTwo), nil
	default:
		if len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
			return NewCard(color, Value(rest[0]-'0')), nil
		}
	}
	return Card{}, fmt.Errorf("invalid card value in %q", s)
}

// ParseCards parses a space separated list of short-form cards
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on malformed input
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

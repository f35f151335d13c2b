package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/lastcard/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// JoinData takes a seat at a table. A returning player sends the handle it
// was given and, if known, its seat index to reclaim the seat.
type JoinData struct {
	Table  string `json:"table"`
	Name   string `json:"name"`
	Wallet string `json:"wallet,omitempty"`
	Handle string `json:"handle,omitempty"`
	Seat   *int   `json:"seat,omitempty"`
}

type PlayCardData struct {
	Index int    `json:"index"`
	Color string `json:"color,omitempty"`
}

// Server → Client Messages

type JoinedData struct {
	Table   string `json:"table"`
	Seat    int    `json:"seat"`
	Handle  string `json:"handle"`
	Seated  int    `json:"seated"`
	Seats   int    `json:"seats"`
	MatchID string `json:"matchId,omitempty"`
}

type TurnStartData struct {
	Seat      int       `json:"seat"`
	ExpiresAt time.Time `json:"expiresAt"`
	ServerNow time.Time `json:"serverNow"`
}

type TurnTimeoutData struct {
	Seat int `json:"seat"`
}

// ResultData answers an intent
type ResultData struct {
	Intent  MessageType `json:"intent"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TableInfo is listed by the /tables endpoint
type TableInfo struct {
	Name    string `json:"name"`
	Seats   int    `json:"seats"`
	Seated  int    `json:"seated"`
	MatchID string `json:"matchId,omitempty"`
	Status  string `json:"status"`
}

// errorCodes maps engine errors to wire codes, most specific first
var errorCodes = []struct {
	err  error
	code string
}{
	{game.ErrWildDrawFourRestricted, "wild_draw_four_restricted"},
	{game.ErrHoldingPlayableCard, "holding_playable_card"},
	{game.ErrCardNotPlayable, "card_not_playable"},
	{game.ErrNotYourTurn, "not_your_turn"},
	{game.ErrInvalidCardIndex, "invalid_card_index"},
	{game.ErrMustDeclareFirst, "must_declare_first"},
	{game.ErrMustPlayDrawnCard, "must_play_drawn_card"},
	{game.ErrGameNotInPlayingState, "game_not_playing"},
	{game.ErrPlayerNotFound, "player_not_found"},
	{game.ErrCannotEndTurn, "cannot_end_turn"},
	{game.ErrCannotDeclare, "cannot_declare"},
	{game.ErrAlreadyStarted, "already_started"},
	{game.ErrDeckExhausted, "deck_exhausted"},
}

// ErrorCode returns the wire code for an engine error
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal_error"
}

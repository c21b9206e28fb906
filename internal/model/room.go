package model

import (
	"slices"
	"time"
)

// RoomID identifies a room
type RoomID string

// DiceColor is the colour of a player's die
type DiceColor string

const (
	DiceRed    DiceColor = "red"
	DiceYellow DiceColor = "yellow"
	DiceGreen  DiceColor = "green"
	DiceBlue   DiceColor = "blue"
	DiceBlack  DiceColor = "black"
)

// DicePalette lists the colours a die may be rolled with
var DicePalette = []DiceColor{DiceRed, DiceYellow, DiceGreen, DiceBlue, DiceBlack}

// WinnerDraw marks a round the revealer lost
const WinnerDraw = "DRAW"

// PlayerState is a player's seat in a room
type PlayerState struct {
	DiceValue      int
	DiceColor      DiceColor
	Score          int
	Connected      bool
	DisconnectedAt *time.Time
}

// Room is a single game instance.
// TurnOrder always holds exactly the keys of Players, in join order.
type Room struct {
	ID           RoomID
	Players      map[string]*PlayerState
	TurnOrder    []string
	CurrentTurn  string // empty when nobody holds the turn
	CalledNumber *int   // nil until the first call of a round
	Winner       string

	LastResultText string
	LastResultAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates an empty room
func NewRoom(id RoomID, now time.Time) *Room {
	return &Room{
		ID:        id,
		Players:   make(map[string]*PlayerState),
		TurnOrder: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasPlayer reports whether username holds a seat in the room
func (r *Room) HasPlayer(username string) bool {
	_, ok := r.Players[username]
	return ok
}

// PlayerCount returns the number of seated players
func (r *Room) PlayerCount() int {
	return len(r.Players)
}

// InProgress reports whether a call has been made this round
func (r *Room) InProgress() bool {
	return r.CalledNumber != nil
}

// NextInTurnOrder returns the player after username, wrapping around
func (r *Room) NextInTurnOrder(username string) string {
	idx := slices.Index(r.TurnOrder, username)
	if idx < 0 || len(r.TurnOrder) == 0 {
		return ""
	}
	return r.TurnOrder[(idx+1)%len(r.TurnOrder)]
}

// RemovePlayer drops a player from the seat map and the turn order.
// It returns the position the player held in the turn order, or -1.
func (r *Room) RemovePlayer(username string) int {
	delete(r.Players, username)
	idx := slices.Index(r.TurnOrder, username)
	if idx >= 0 {
		r.TurnOrder = slices.Delete(r.TurnOrder, idx, idx+1)
	}
	return idx
}

// DiceTotal sums every seated player's die
func (r *Room) DiceTotal() int {
	total := 0
	for _, p := range r.Players {
		total += p.DiceValue
	}
	return total
}

// PlayerSnapshot is the wire view of a PlayerState
type PlayerSnapshot struct {
	DiceValue      int        `json:"dice_number"`
	DiceColor      DiceColor  `json:"dice_color"`
	Score          int        `json:"score"`
	Connected      bool       `json:"connected"`
	DisconnectedAt *time.Time `json:"disconnected_time"`
}

// RoomSnapshot is an owned copy of a room's observable state
type RoomSnapshot struct {
	RoomID       RoomID                    `json:"room_id"`
	Players      map[string]PlayerSnapshot `json:"players"`
	PlayersOrder []string                  `json:"players_order"`
	CurrentTurn  *string                   `json:"current_turn"`
	CalledNumber *int                      `json:"called_number"`
	Winner       *string                   `json:"winner"`
	LastResult   *string                   `json:"last_result_str"`
}

// RevealResult is returned by a reveal: the settled round plus the room after reset.
// Winner is the round's winner and shadows the (always cleared) room winner.
type RevealResult struct {
	RoomSnapshot
	ResultText string `json:"result_str"`
	Winner     string `json:"winner"`
}

// RoomSummary is a short listing entry for a room
type RoomSummary struct {
	RoomID      RoomID `json:"room_id"`
	PlayerCount int    `json:"player_count"`
	InProgress  bool   `json:"in_progress"`
}

// Snapshot copies the room so it can be used outside the room lock
func (r *Room) Snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:       r.ID,
		Players:      make(map[string]PlayerSnapshot, len(r.Players)),
		PlayersOrder: slices.Clone(r.TurnOrder),
	}
	for name, p := range r.Players {
		ps := PlayerSnapshot{
			DiceValue: p.DiceValue,
			DiceColor: p.DiceColor,
			Score:     p.Score,
			Connected: p.Connected,
		}
		if p.DisconnectedAt != nil {
			t := *p.DisconnectedAt
			ps.DisconnectedAt = &t
		}
		snap.Players[name] = ps
	}
	if r.CurrentTurn != "" {
		turn := r.CurrentTurn
		snap.CurrentTurn = &turn
	}
	if r.CalledNumber != nil {
		n := *r.CalledNumber
		snap.CalledNumber = &n
	}
	if r.Winner != "" {
		w := r.Winner
		snap.Winner = &w
	}
	if r.LastResultText != "" {
		text := r.LastResultText
		snap.LastResult = &text
	}
	return snap
}

// Summary returns the listing entry for the room
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		RoomID:      r.ID,
		PlayerCount: len(r.Players),
		InProgress:  r.InProgress(),
	}
}

package room

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/mindroll/internal/dependencies/clock"
	"github.com/mcoot/mindroll/internal/dependencies/random"
	"github.com/mcoot/mindroll/internal/model"
)

const (
	// MinPlayers is the number of players needed to call or reveal
	MinPlayers = 2
	// MinOpeningFloor is the lowest possible opening floor
	MinOpeningFloor = 7
	// DiceFaces is the number of faces on a die
	DiceFaces = 6

	// DisconnectDrawText is recorded when a disconnect timeout ends a round
	DisconnectDrawText = "Game drawn due to disconnect timeout."
)

// Config holds the timing rules for rooms
type Config struct {
	// ReconnectWindow is how long a disconnected player may reconnect
	ReconnectWindow time.Duration
	// DisconnectTimeout is how long a disconnected player keeps a seat
	DisconnectTimeout time.Duration
	// ResultDisplay is how long a round result stays visible
	ResultDisplay time.Duration
	// DrawResultDisplay is how long the disconnect draw text stays visible
	DrawResultDisplay time.Duration
}

// DefaultConfig returns default room timings
func DefaultConfig() Config {
	return Config{
		ReconnectWindow:   120 * time.Second,
		DisconnectTimeout: 120 * time.Second,
		ResultDisplay:     5 * time.Second,
		DrawResultDisplay: 3 * time.Second,
	}
}

// Controller owns every room and applies the game rules to them.
// Operations on one room are serialized; different rooms proceed in parallel.
type Controller struct {
	rooms  *registry
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config
}

// NewController creates a new room Controller
func NewController(clock clock.Clock, random random.Random, logger *slog.Logger, cfg Config) *Controller {
	defaults := DefaultConfig()
	if cfg.ReconnectWindow <= 0 {
		cfg.ReconnectWindow = defaults.ReconnectWindow
	}
	if cfg.DisconnectTimeout <= 0 {
		cfg.DisconnectTimeout = defaults.DisconnectTimeout
	}
	if cfg.ResultDisplay <= 0 {
		cfg.ResultDisplay = defaults.ResultDisplay
	}
	if cfg.DrawResultDisplay <= 0 {
		cfg.DrawResultDisplay = defaults.DrawResultDisplay
	}
	return &Controller{
		rooms:  newRegistry(),
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "rooms")),
		cfg:    cfg,
	}
}

// OpeningFloor returns the value the first call of a round must exceed
func OpeningFloor(playerCount int) int {
	return max(3*playerCount+1, MinOpeningFloor)
}

// withRoom runs fn while holding the room's lock, after clearing a stale result
func (c *Controller) withRoom(id model.RoomID, fn func(e *entry) error) error {
	e, err := c.rooms.acquire(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	c.expireResult(e.room, c.clock.Now())
	return fn(e)
}

// CreateRoom adds an empty room
func (c *Controller) CreateRoom(id model.RoomID) error {
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("%w: room id is required", model.ErrInvalidArgs)
	}
	if !c.rooms.insert(model.NewRoom(id, c.clock.Now())) {
		return model.ErrRoomExists
	}

	c.logger.Info("room created", slog.String("room_id", string(id)))
	return nil
}

// JoinRoom seats a player with a fresh die
func (c *Controller) JoinRoom(id model.RoomID, username string) (model.RoomSnapshot, error) {
	var snap model.RoomSnapshot
	err := c.withRoom(id, func(e *entry) error {
		r := e.room
		if r.InProgress() {
			return model.ErrGameInProgress
		}
		if r.HasPlayer(username) {
			return model.ErrAlreadyJoined
		}

		value, color := c.rollDie()
		r.Players[username] = &model.PlayerState{
			DiceValue: value,
			DiceColor: color,
			Connected: true,
		}
		r.TurnOrder = append(r.TurnOrder, username)
		if r.CurrentTurn == "" {
			r.CurrentTurn = username
		}
		r.UpdatedAt = c.clock.Now()

		c.logger.Info("player joined",
			slog.String("room_id", string(id)),
			slog.String("username", username),
			slog.Int("player_count", r.PlayerCount()),
		)
		snap = r.Snapshot()
		return nil
	})
	return snap, err
}

// CallNumber records a call from the player holding the turn and passes the turn on
func (c *Controller) CallNumber(id model.RoomID, username string, number int) (model.RoomSnapshot, error) {
	var snap model.RoomSnapshot
	err := c.withRoom(id, func(e *entry) error {
		r := e.room
		if r.PlayerCount() < MinPlayers {
			return model.ErrInsufficientPlayers
		}
		if r.CurrentTurn != username {
			return model.ErrNotYourTurn
		}

		floor := OpeningFloor(r.PlayerCount())
		if r.CalledNumber != nil {
			floor = *r.CalledNumber
		}
		if number <= floor {
			return fmt.Errorf("%w: must be greater than %d", model.ErrCallTooLow, floor)
		}

		r.CalledNumber = &number
		r.CurrentTurn = r.NextInTurnOrder(username)
		r.UpdatedAt = c.clock.Now()

		snap = r.Snapshot()
		return nil
	})
	return snap, err
}

// RevealResult settles the round against the dice total and starts a new one
func (c *Controller) RevealResult(id model.RoomID, username string) (model.RevealResult, error) {
	var result model.RevealResult
	err := c.withRoom(id, func(e *entry) error {
		r := e.room
		if r.PlayerCount() < MinPlayers {
			return model.ErrInsufficientPlayers
		}
		if r.CurrentTurn != username {
			return model.ErrNotYourTurn
		}
		if r.CalledNumber == nil {
			return model.ErrNoCallYet
		}

		called := *r.CalledNumber
		total := r.DiceTotal()
		revealer := r.Players[username]

		var text string
		if called < total {
			revealer.Score--
			r.Winner = model.WinnerDraw
			text = fmt.Sprintf("%s loses! (called %d < dice total %d)", username, called, total)
		} else {
			revealer.Score++
			r.Winner = username
			text = fmt.Sprintf("%s wins! (called %d >= dice total %d)", username, called, total)
		}
		winner := r.Winner

		now := c.clock.Now()
		r.LastResultText = text
		r.LastResultAt = now
		r.UpdatedAt = now

		c.logger.Info("round revealed",
			slog.String("room_id", string(id)),
			slog.String("revealer", username),
			slog.Int("called", called),
			slog.Int("dice_total", total),
			slog.String("winner", winner),
		)

		c.resetRound(e)

		result = model.RevealResult{
			RoomSnapshot: r.Snapshot(),
			ResultText:   text,
			Winner:       winner,
		}
		return nil
	})
	return result, err
}

// LeaveRoom removes a player, closing the room when it empties
func (c *Controller) LeaveRoom(id model.RoomID, username string) (closed bool, err error) {
	err = c.withRoom(id, func(e *entry) error {
		r := e.room
		if !r.HasPlayer(username) {
			return model.ErrNotInRoom
		}

		heldTurn := r.CurrentTurn == username
		idx := r.RemovePlayer(username)
		r.UpdatedAt = c.clock.Now()

		c.logger.Info("player left",
			slog.String("room_id", string(id)),
			slog.String("username", username),
		)

		if r.PlayerCount() == 0 {
			c.closeRoom(e, "empty")
			closed = true
			return nil
		}

		if heldTurn {
			r.CurrentTurn = r.TurnOrder[idx%len(r.TurnOrder)]
		}
		if r.PlayerCount() < MinPlayers {
			r.CalledNumber = nil
		}
		return nil
	})
	return closed, err
}

// MarkDisconnected flags username as disconnected in every room it sits in.
// A room where it is the only player is closed instead.
func (c *Controller) MarkDisconnected(username string) {
	for _, e := range c.rooms.entries() {
		e.mu.Lock()
		if !e.closed {
			c.markDisconnectedLocked(e, username)
		}
		e.mu.Unlock()
	}
}

func (c *Controller) markDisconnectedLocked(e *entry, username string) {
	r := e.room
	player, ok := r.Players[username]
	if !ok {
		return
	}

	now := c.clock.Now()
	c.expireResult(r, now)

	if r.PlayerCount() == 1 {
		c.closeRoom(e, "last player disconnected")
		return
	}
	if !player.Connected {
		return
	}

	player.Connected = false
	player.DisconnectedAt = &now
	r.UpdatedAt = now

	c.logger.Info("player disconnected",
		slog.String("room_id", string(r.ID)),
		slog.String("username", username),
	)
}

// Reconnect restores a disconnected player's seat within the reconnect window
func (c *Controller) Reconnect(id model.RoomID, username string) (model.RoomSnapshot, error) {
	var snap model.RoomSnapshot
	err := c.withRoom(id, func(e *entry) error {
		r := e.room
		player, ok := r.Players[username]
		if !ok {
			return model.ErrNotInRoom
		}
		if player.Connected {
			return model.ErrAlreadyConnected
		}
		if player.DisconnectedAt == nil {
			return model.ErrNoDisconnectTimestamp
		}

		if clock.Since(c.clock, *player.DisconnectedAt) > c.cfg.ReconnectWindow {
			return model.ErrReconnectWindowExpired
		}

		player.Connected = true
		player.DisconnectedAt = nil
		r.UpdatedAt = c.clock.Now()

		c.logger.Info("player reconnected",
			slog.String("room_id", string(id)),
			slog.String("username", username),
		)
		snap = r.Snapshot()
		return nil
	})
	return snap, err
}

// GetState evicts timed-out players, clears a stale result and returns the room
func (c *Controller) GetState(id model.RoomID) (model.RoomSnapshot, error) {
	e, err := c.rooms.acquire(id)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	defer e.mu.Unlock()

	now := c.clock.Now()
	if c.evictTimedOut(e, now) {
		return model.RoomSnapshot{}, model.ErrRoomNotFound
	}
	c.expireResult(e.room, now)

	return e.room.Snapshot(), nil
}

// ListRooms returns a summary of every open room, ordered by id
func (c *Controller) ListRooms() []model.RoomSummary {
	entries := c.rooms.entries()
	out := make([]model.RoomSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			out = append(out, e.room.Summary())
		}
		e.mu.Unlock()
	}
	return out
}

// rollDie returns a face value in [1, DiceFaces] and a palette colour
func (c *Controller) rollDie() (int, model.DiceColor) {
	value := c.random.Intn(DiceFaces) + 1
	color := model.DicePalette[c.random.Intn(len(model.DicePalette))]
	return value, color
}

// closeRoom deletes the room. The caller must hold e.mu.
func (c *Controller) closeRoom(e *entry, reason string) {
	c.rooms.remove(e)
	c.logger.Info("room closed",
		slog.String("room_id", string(e.room.ID)),
		slog.String("reason", reason),
	)
}

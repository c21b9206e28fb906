package room

import (
	"log/slog"
	"slices"
	"time"

	"github.com/mcoot/mindroll/internal/model"
)

// resetRound starts a fresh round: disconnected players are evicted and the
// rest re-roll. It reports whether the room was closed because nobody was left.
// The caller must hold e.mu.
func (c *Controller) resetRound(e *entry) bool {
	r := e.room

	for _, name := range slices.Clone(r.TurnOrder) {
		if !r.Players[name].Connected {
			r.RemovePlayer(name)
			c.logger.Info("player evicted",
				slog.String("room_id", string(r.ID)),
				slog.String("username", name),
				slog.String("reason", "disconnected at reset"),
			)
		}
	}

	for _, name := range r.TurnOrder {
		p := r.Players[name]
		p.DiceValue, p.DiceColor = c.rollDie()
	}

	r.CalledNumber = nil
	r.Winner = ""
	r.CurrentTurn = ""
	if len(r.TurnOrder) > 0 {
		r.CurrentTurn = r.TurnOrder[0]
	}
	r.UpdatedAt = c.clock.Now()

	if r.PlayerCount() == 0 {
		c.closeRoom(e, "empty after reset")
		return true
	}
	return false
}

// evictTimedOut removes players disconnected for longer than the disconnect
// timeout. Any eviction resets the round and shows the disconnect draw text.
// It reports whether the room was closed. The caller must hold e.mu.
func (c *Controller) evictTimedOut(e *entry, now time.Time) bool {
	r := e.room

	evicted := 0
	for _, name := range slices.Clone(r.TurnOrder) {
		p := r.Players[name]
		if p.Connected || p.DisconnectedAt == nil {
			continue
		}
		if now.Sub(*p.DisconnectedAt) <= c.cfg.DisconnectTimeout {
			continue
		}
		r.RemovePlayer(name)
		evicted++
		c.logger.Info("player evicted",
			slog.String("room_id", string(r.ID)),
			slog.String("username", name),
			slog.String("reason", "disconnect timeout"),
		)
	}
	if evicted == 0 {
		return false
	}

	if r.PlayerCount() == 0 {
		c.closeRoom(e, "all players timed out")
		return true
	}

	if c.resetRound(e) {
		return true
	}
	if r.LastResultText == "" {
		r.LastResultText = DisconnectDrawText
		r.LastResultAt = now
	}
	return false
}

// expireResult clears a result that has been shown long enough
func (c *Controller) expireResult(r *model.Room, now time.Time) {
	if r.LastResultText == "" {
		return
	}
	display := c.cfg.ResultDisplay
	if r.LastResultText == DisconnectDrawText {
		display = c.cfg.DrawResultDisplay
	}
	if now.Sub(r.LastResultAt) > display {
		r.LastResultText = ""
		r.LastResultAt = time.Time{}
	}
}

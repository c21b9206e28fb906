package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mcoot/mindroll/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string

	titleColor *color.Color
	winColor   *color.Color
	loseColor  *color.Color
	errorColor *color.Color
	turnColor  *color.Color
	dimColor   *color.Color
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{
		w:          w,
		format:     format,
		titleColor: color.New(color.FgCyan, color.Bold),
		winColor:   color.New(color.FgGreen, color.Bold),
		loseColor:  color.New(color.FgRed, color.Bold),
		errorColor: color.New(color.FgRed),
		turnColor:  color.New(color.FgYellow, color.Bold),
		dimColor:   color.New(color.FgHiBlack),
	}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		o.printJSON(map[string]string{"error": err.Error()})
		return
	}
	_, _ = o.errorColor.Fprintf(o.w, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	_, _ = fmt.Fprintln(o.w, msg)
}

// PrintState shows a room from self's point of view: other players' dice stay hidden
func (o *Output) PrintState(snap *model.RoomSnapshot, self string) {
	if o.format == "json" {
		o.printJSON(snap)
		return
	}

	_, _ = o.titleColor.Fprintf(o.w, "Room %s\n", snap.RoomID)
	for _, name := range snap.PlayersOrder {
		p := snap.Players[name]

		marker := "  "
		if snap.CurrentTurn != nil && *snap.CurrentTurn == name {
			marker = o.turnColor.Sprint("> ")
		}
		die := "?"
		if name == self {
			die = fmt.Sprintf("%d (%s)", p.DiceValue, p.DiceColor)
		}
		status := ""
		if !p.Connected {
			status = o.dimColor.Sprint(" (disconnected)")
		}
		_, _ = fmt.Fprintf(o.w, "%s%-12s die: %-10s score: %d%s\n", marker, name, die, p.Score, status)
	}

	called := "none"
	if snap.CalledNumber != nil {
		called = fmt.Sprint(*snap.CalledNumber)
	}
	turn := "nobody"
	if snap.CurrentTurn != nil {
		turn = *snap.CurrentTurn
	}
	_, _ = fmt.Fprintf(o.w, "Called: %s  Turn: %s\n", called, turn)
	if snap.LastResult != nil {
		_, _ = fmt.Fprintf(o.w, "Last result: %s\n", *snap.LastResult)
	}
}

// PrintReveal shows the outcome of a reveal
func (o *Output) PrintReveal(res *model.RevealResult) {
	if o.format == "json" {
		o.printJSON(res)
		return
	}
	c := o.winColor
	if res.Winner == model.WinnerDraw {
		c = o.loseColor
	}
	_, _ = c.Fprintln(o.w, res.ResultText)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		_, _ = fmt.Fprintf(o.w, "Logged in as %s\n", v.Username)
		_, _ = fmt.Fprintf(o.w, "Token: %s\n", v.Token)
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case []model.RoomSummary:
		o.printRooms(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRooms(rooms []model.RoomSummary) {
	if len(rooms) == 0 {
		_, _ = fmt.Fprintln(o.w, "No rooms")
		return
	}
	_, _ = o.titleColor.Fprintf(o.w, "Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		state := "waiting"
		if r.InProgress {
			state = "in progress"
		}
		noun := "players"
		if r.PlayerCount == 1 {
			noun = "player"
		}
		_, _ = fmt.Fprintf(o.w, "  - %s: %d %s, %s\n", r.RoomID, r.PlayerCount, noun, state)
	}
}

// helpText lists the commands understood by the play prompt
var helpText = strings.TrimSpace(`
Commands:
  create <room>      create a room
  join <room>        join a room and make it current
  call <number>      call a number in the current room
  reveal             reveal the dice in the current room
  state [room]       show the current (or given) room
  leave              leave the current room
  reconnect <room>   reclaim your seat after a dropped connection
  list               list all rooms (admin only)
  help               show this help
  quit               leave the prompt
`)

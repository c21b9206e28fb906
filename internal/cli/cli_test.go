package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/mindroll/internal/client"
	"github.com/mcoot/mindroll/internal/model"
)

func TestSessionRoundTrip(t *testing.T) {
	cfg := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "session")}

	_, err := cfg.LoadSession()
	assert.ErrorIs(t, err, errNotLoggedIn)

	require.NoError(t, cfg.SaveSession(Session{Username: "alice", Token: "tok"}))
	s, err := cfg.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "tok", s.Token)
}

func TestDefaultConfigReadsEnvironment(t *testing.T) {
	t.Setenv("MINDROLL_SERVER", "game.example:9000")
	t.Setenv("MINDROLL_TOKEN_FILE", "/tmp/mindroll-session")

	cfg := DefaultConfig()
	assert.Equal(t, "game.example:9000", cfg.ServerAddr)
	assert.Equal(t, "http://localhost:8081", cfg.OpsURL)
	assert.Equal(t, "/tmp/mindroll-session", cfg.TokenFile)
	assert.Equal(t, "text", cfg.Output)
}

func TestPrintStateHidesOtherDice(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, "text")

	turn, called, last := "bob", 9, "carol wins! (called 9 >= dice total 5)"
	out.PrintState(&model.RoomSnapshot{
		RoomID: "table",
		Players: map[string]model.PlayerSnapshot{
			"alice": {DiceValue: 4, DiceColor: model.DiceBlue, Score: 2, Connected: true},
			"bob":   {DiceValue: 6, DiceColor: model.DiceRed, Connected: false},
		},
		PlayersOrder: []string{"alice", "bob"},
		CurrentTurn:  &turn,
		CalledNumber: &called,
		LastResult:   &last,
	}, "alice")

	text := buf.String()
	assert.Contains(t, text, "Room table")
	assert.Contains(t, text, "4 (blue)")
	assert.NotContains(t, text, "6 (red)")
	assert.Contains(t, text, "(disconnected)")
	assert.Contains(t, text, "Called: 9  Turn: bob")
	assert.Contains(t, text, "Last result: "+last)
}

func TestPrintRooms(t *testing.T) {
	var buf bytes.Buffer
	NewOutput(&buf, "text").Print([]model.RoomSummary{
		{RoomID: "a", PlayerCount: 1},
		{RoomID: "b", PlayerCount: 3, InProgress: true},
	})

	assert.Contains(t, buf.String(), "a: 1 player, waiting")
	assert.Contains(t, buf.String(), "b: 3 players, in progress")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput(&buf, "json").PrintMessage("hello")
	assert.JSONEq(t, `{"message":"hello"}`, buf.String())
}

func TestPromptUsageErrorsDoNotNeedAConnection(t *testing.T) {
	var buf bytes.Buffer
	p := &player{
		cfg:      &Config{Output: "text", Timeout: 1},
		username: "alice",
		out:      NewOutput(&buf, "text"),
	}

	input := "\nfly\ncall eight\nreveal\nhelp\nquit\nstate\n"
	require.NoError(t, p.run(context.Background(), bufio.NewScanner(strings.NewReader(input))))

	text := buf.String()
	assert.Contains(t, text, `unknown command "fly"`)
	assert.Contains(t, text, "not a number: eight")
	assert.Contains(t, text, errNoRoom.Error())
	assert.Contains(t, text, "Commands:")
}

func TestUsageClassification(t *testing.T) {
	assert.True(t, isUsage(usage("x")))
	assert.True(t, isUsage(errNoRoom))
	assert.False(t, isUsage(errors.New("broken pipe")))
	assert.False(t, isUsage(&client.RemoteError{Message: "Not your turn"}))
}

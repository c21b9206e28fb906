package rpc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mcoot/mindroll/internal/protocol"
)

// method describes one callable server method
type method struct {
	// usage is shown when the arguments do not fit
	usage   string
	minArgs int
	maxArgs int
	// public methods need no token
	public bool
	// adminOnly methods need a token for an ADMIN user
	adminOnly bool
	handle    func(c *call) (any, error)
}

// args gives typed access to a request's positional arguments
type args struct {
	raw   []json.RawMessage
	usage string
}

func newArgs(req *protocol.Request, m method) (args, error) {
	a := args{raw: req.Args, usage: m.usage}
	if len(req.Args) < m.minArgs || len(req.Args) > m.maxArgs {
		return a, newInvalidArgsError(m.usage)
	}
	return a, nil
}

func (a args) present(i int) bool {
	return i < len(a.raw)
}

// String returns argument i, which must be a non-empty JSON string
func (a args) String(i int) (string, error) {
	if !a.present(i) {
		return "", newInvalidArgsError(a.usage)
	}
	var s string
	if err := json.Unmarshal(a.raw[i], &s); err != nil || strings.TrimSpace(s) == "" {
		return "", newInvalidArgsError(a.usage)
	}
	return s, nil
}

// Username returns argument i as an account name with surrounding
// whitespace removed
func (a args) Username(i int) (string, error) {
	s, err := a.String(i)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Int returns argument i, given either as a JSON integer or a numeric string
func (a args) Int(i int) (int, error) {
	if !a.present(i) {
		return 0, newInvalidArgsError(a.usage)
	}
	raw := bytes.TrimSpace(a.raw[i])

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, newInvalidArgsError(a.usage)
}

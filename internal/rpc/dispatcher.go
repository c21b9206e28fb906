// Package rpc routes decoded requests to the user, token and room services.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/protocol"
	"github.com/mcoot/mindroll/internal/services/auth"
	"github.com/mcoot/mindroll/internal/services/room"
	"github.com/mcoot/mindroll/internal/services/users"
)

// Session is the dispatcher's per-connection state
type Session struct {
	mu    sync.Mutex
	users []string
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Usernames returns every user a valid token was seen for, in first-seen order
func (s *Session) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

func (s *Session) observe(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.users, username) {
		s.users = append(s.users, username)
	}
}

// call is a single request being handled
type call struct {
	ctx     context.Context
	args    args
	session *Session
	// token is nil for public methods
	token *model.Token
}

// username returns the authenticated caller
func (c *call) username() string {
	if c.token == nil {
		return ""
	}
	return c.token.Username
}

// actingAs checks that the caller is the player named in argument i
func (c *call) actingAs(i int) (string, error) {
	name, err := c.args.String(i)
	if err != nil {
		return "", err
	}
	if name != c.username() {
		return "", model.ErrTokenMismatch
	}
	return name, nil
}

// Dispatcher maps method names to service operations
type Dispatcher struct {
	users   *users.Service
	auth    *auth.Service
	rooms   *room.Controller
	logger  *slog.Logger
	methods map[string]method
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(users *users.Service, auth *auth.Service, rooms *room.Controller, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		users:  users,
		auth:   auth,
		rooms:  rooms,
		logger: logger.With(slog.String("component", "dispatcher")),
	}
	d.methods = d.routes()
	return d
}

// Dispatch handles one request. It always returns a response; failures,
// including panics, are reported in the response's error field.
func (d *Dispatcher) Dispatch(ctx context.Context, session *Session, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic recovered",
				slog.String("method", req.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			resp = ErrorResponse(fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := d.dispatch(ctx, session, req)
	if err != nil {
		return d.fail(session, req.Name, err)
	}

	resp, err = protocol.NewResponse(result)
	if err != nil {
		return d.fail(session, req.Name, err)
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, session *Session, req *protocol.Request) (any, error) {
	m, ok := d.methods[req.Name]
	if !ok {
		return nil, newUnknownMethodError(req.Name)
	}

	c := &call{ctx: ctx, session: session}

	if !m.public {
		token, err := d.authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		session.observe(token.Username)
		if m.adminOnly && (token.User == nil || !token.User.IsAdmin()) {
			return nil, model.ErrInsufficientRole
		}
		c.token = token
	}

	a, err := newArgs(req, m)
	if err != nil {
		return nil, err
	}
	c.args = a

	return m.handle(c)
}

func (d *Dispatcher) authenticate(ctx context.Context, req *protocol.Request) (*model.Token, error) {
	signature, present := req.Token()
	if !present {
		return nil, model.ErrAuthRequired
	}
	return d.auth.Validate(ctx, signature)
}

// fail logs a rejected request and builds its error response
func (d *Dispatcher) fail(session *Session, name string, err error) *protocol.Response {
	re := toRPCError(err)
	if re.code == CodeInternalError {
		d.logger.Error("request failed",
			slog.String("method", name),
			slog.Any("usernames", session.Usernames()),
			slog.String("error", err.Error()),
		)
	} else {
		d.logger.Debug("request rejected",
			slog.String("method", name),
			slog.Any("usernames", session.Usernames()),
			slog.String("code", re.code),
			slog.String("error", err.Error()),
		)
	}
	return protocol.ErrorResponse(re.message)
}

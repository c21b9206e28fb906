// Package client is a Go client for the MindRoll RPC protocol.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/protocol"
	"github.com/mcoot/mindroll/internal/rpc"
)

// RemoteError is an error reported by the server
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsRemote reports whether err came back from the server
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Client holds one connection to the server. Calls are serialized.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	frames *protocol.FrameReader
	token  string
}

// Dial connects to the server at addr
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		frames: protocol.NewFrameReader(conn),
	}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Call invokes a method and decodes its result into result (which may be nil)
func (c *Client) Call(ctx context.Context, name string, result any, args ...any) error {
	req, err := protocol.NewRequest(name, args...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		req.WithToken(c.token)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return err
	}

	if err := protocol.WriteRequest(c.conn, req); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}

	frame, err := c.frames.ReadFrame()
	if err != nil {
		return fmt.Errorf("read %s response: %w", name, err)
	}
	msg, err := protocol.Decode(frame)
	if err != nil {
		return err
	}
	if msg.Response == nil {
		return fmt.Errorf("read %s response: got a request frame", name)
	}
	if msg.Response.Failed() {
		return &RemoteError{Message: *msg.Response.Error}
	}
	if result == nil {
		return nil
	}
	return msg.Response.Decode(result)
}

// Register creates an account
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodRegister, &msg, username, password)
	return msg, err
}

// Login authenticates and stores the returned token on the client.
// A zero ttl lets the server pick.
func (c *Client) Login(ctx context.Context, username, password string, ttl time.Duration) (string, error) {
	args := []any{username, password}
	if ttl > 0 {
		args = append(args, int(ttl/time.Second))
	}

	var res rpc.LoginResult
	if err := c.Call(ctx, rpc.MethodLogin, &res, args...); err != nil {
		return "", err
	}
	c.SetToken(res.Token)
	return res.Token, nil
}

// CreateRoom creates a room
func (c *Client) CreateRoom(ctx context.Context, roomID string) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodCreateRoom, &msg, roomID)
	return msg, err
}

// JoinRoom seats username in a room
func (c *Client) JoinRoom(ctx context.Context, roomID, username string) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodJoinRoom, &msg, roomID, username)
	return msg, err
}

// CallNumber makes a call
func (c *Client) CallNumber(ctx context.Context, roomID, username string, number int) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodCallNumber, &msg, roomID, username, number)
	return msg, err
}

// RevealResult settles the round
func (c *Client) RevealResult(ctx context.Context, roomID, username string) (*model.RevealResult, error) {
	var res model.RevealResult
	if err := c.Call(ctx, rpc.MethodRevealResult, &res, roomID, username); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetGameState fetches a room snapshot
func (c *Client) GetGameState(ctx context.Context, roomID string) (*model.RoomSnapshot, error) {
	var snap model.RoomSnapshot
	if err := c.Call(ctx, rpc.MethodGetGameState, &snap, roomID); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LeaveRoom gives up username's seat
func (c *Client) LeaveRoom(ctx context.Context, roomID, username string) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodLeaveRoom, &msg, roomID, username)
	return msg, err
}

// Reconnect reclaims a seat after a disconnect
func (c *Client) Reconnect(ctx context.Context, roomID, username string) (string, error) {
	var msg string
	err := c.Call(ctx, rpc.MethodReconnect, &msg, roomID, username)
	return msg, err
}

// ListRooms lists every room (admin only)
func (c *Client) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	var rooms []model.RoomSummary
	err := c.Call(ctx, rpc.MethodListRooms, &rooms)
	return rooms, err
}

package rpc

import (
	"fmt"
	"math"
	"time"

	"github.com/mcoot/mindroll/internal/model"
)

// Method names
const (
	MethodRegister     = "register"
	MethodLogin        = "login"
	MethodCreateRoom   = "create_room"
	MethodJoinRoom     = "join_room"
	MethodCallNumber   = "call_number"
	MethodRevealResult = "reveal_result"
	MethodGetGameState = "get_game_state"
	MethodLeaveRoom    = "leave_room"
	MethodReconnect    = "reconnect"
	MethodListRooms    = "list_rooms"
)

// maxTTLSeconds is the longest login ttl that fits in a time.Duration
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// LoginResult is returned by login
type LoginResult struct {
	Token string `json:"token"`
}

func (d *Dispatcher) routes() map[string]method {
	return map[string]method{
		MethodRegister: {
			usage: "register <username> <password>", minArgs: 2, maxArgs: 2,
			public: true, handle: d.register,
		},
		MethodLogin: {
			usage: "login <username> <password> [ttl_seconds]", minArgs: 2, maxArgs: 3,
			public: true, handle: d.login,
		},
		MethodCreateRoom: {
			usage: "create_room <room_id>", minArgs: 1, maxArgs: 1,
			handle: d.createRoom,
		},
		MethodJoinRoom: {
			usage: "join_room <room_id> <username>", minArgs: 2, maxArgs: 2,
			handle: d.joinRoom,
		},
		MethodCallNumber: {
			usage: "call_number <room_id> <username> <number>", minArgs: 3, maxArgs: 3,
			handle: d.callNumber,
		},
		MethodRevealResult: {
			usage: "reveal_result <room_id> <username>", minArgs: 2, maxArgs: 2,
			handle: d.revealResult,
		},
		MethodGetGameState: {
			usage: "get_game_state <room_id>", minArgs: 1, maxArgs: 1,
			handle: d.getGameState,
		},
		MethodLeaveRoom: {
			usage: "leave_room <room_id> <username>", minArgs: 2, maxArgs: 2,
			handle: d.leaveRoom,
		},
		MethodReconnect: {
			usage: "reconnect <room_id> <username>", minArgs: 2, maxArgs: 2,
			handle: d.reconnect,
		},
		MethodListRooms: {
			usage: "list_rooms", minArgs: 0, maxArgs: 0,
			adminOnly: true, handle: d.listRooms,
		},
	}
}

func (d *Dispatcher) register(c *call) (any, error) {
	username, err := c.args.Username(0)
	if err != nil {
		return nil, err
	}
	password, err := c.args.String(1)
	if err != nil {
		return nil, err
	}
	if err := d.users.AddUser(c.ctx, username, password); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Register success for %s", username), nil
}

func (d *Dispatcher) login(c *call) (any, error) {
	username, err := c.args.Username(0)
	if err != nil {
		return nil, err
	}
	password, err := c.args.String(1)
	if err != nil {
		return nil, err
	}

	var ttl time.Duration
	if c.args.present(2) {
		seconds, err := c.args.Int(2)
		if err != nil || seconds <= 0 || int64(seconds) > maxTTLSeconds {
			return nil, newInvalidArgsError(c.args.usage)
		}
		ttl = time.Duration(seconds) * time.Second
	}

	token, err := d.auth.Authenticate(c.ctx, username, password, ttl)
	if err != nil {
		return nil, err
	}
	return LoginResult{Token: token.Signature}, nil
}

func (d *Dispatcher) createRoom(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	if err := d.rooms.CreateRoom(model.RoomID(id)); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Room %s created successfully", id), nil
}

func (d *Dispatcher) joinRoom(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	username, err := c.actingAs(1)
	if err != nil {
		return nil, err
	}
	if _, err := d.rooms.JoinRoom(model.RoomID(id), username); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%s joined room %s", username, id), nil
}

func (d *Dispatcher) callNumber(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	username, err := c.actingAs(1)
	if err != nil {
		return nil, err
	}
	number, err := c.args.Int(2)
	if err != nil {
		return nil, err
	}

	snap, err := d.rooms.CallNumber(model.RoomID(id), username, number)
	if err != nil {
		return nil, err
	}
	next := ""
	if snap.CurrentTurn != nil {
		next = *snap.CurrentTurn
	}
	return fmt.Sprintf("%s called %d, next turn: %s", username, number, next), nil
}

func (d *Dispatcher) revealResult(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	username, err := c.actingAs(1)
	if err != nil {
		return nil, err
	}
	return d.rooms.RevealResult(model.RoomID(id), username)
}

func (d *Dispatcher) getGameState(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	return d.rooms.GetState(model.RoomID(id))
}

func (d *Dispatcher) leaveRoom(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	username, err := c.actingAs(1)
	if err != nil {
		return nil, err
	}

	closed, err := d.rooms.LeaveRoom(model.RoomID(id), username)
	if err != nil {
		return nil, err
	}
	if closed {
		return fmt.Sprintf("Player %s left room %s; room closed (no players).", username, id), nil
	}
	return fmt.Sprintf("Player %s left room %s successfully.", username, id), nil
}

func (d *Dispatcher) reconnect(c *call) (any, error) {
	id, err := c.args.String(0)
	if err != nil {
		return nil, err
	}
	username, err := c.actingAs(1)
	if err != nil {
		return nil, err
	}
	if _, err := d.rooms.Reconnect(model.RoomID(id), username); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Reconnection successful for %s.", username), nil
}

func (d *Dispatcher) listRooms(c *call) (any, error) {
	return d.rooms.ListRooms(), nil
}

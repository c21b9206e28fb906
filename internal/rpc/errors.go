package rpc

import (
	"errors"

	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/protocol"
)

// Error codes, logged alongside every rejected request
const (
	CodeMalformedFrame         = "MALFORMED_FRAME"
	CodeUnknownMethod          = "UNKNOWN_METHOD"
	CodeInvalidArgs            = "INVALID_ARGS"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeAuthRequired           = "AUTH_REQUIRED"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeTokenMismatch          = "TOKEN_MISMATCH"
	CodeInsufficientRole       = "INSUFFICIENT_ROLE"
	CodeUserExists             = "USER_EXISTS"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeRoomExists             = "ROOM_EXISTS"
	CodeRoomNotFound           = "ROOM_NOT_FOUND"
	CodeGameInProgress         = "GAME_IN_PROGRESS"
	CodeAlreadyJoined          = "ALREADY_JOINED"
	CodeNotInRoom              = "NOT_IN_ROOM"
	CodeInsufficientPlayers    = "INSUFFICIENT_PLAYERS"
	CodeNotYourTurn            = "NOT_YOUR_TURN"
	CodeCallTooLow             = "CALL_TOO_LOW"
	CodeNoCallYet              = "NO_CALL_YET"
	CodeAlreadyConnected       = "ALREADY_CONNECTED"
	CodeNoDisconnectTimestamp  = "NO_DISCONNECT_TIMESTAMP"
	CodeReconnectWindowExpired = "RECONNECT_WINDOW_EXPIRED"
	CodeInternalError          = "INTERNAL_ERROR"
)

// rpcError pairs a stable code with the message sent to the client
type rpcError struct {
	code    string
	message string
	cause   error
}

// Error implements error interface
func (e *rpcError) Error() string {
	return e.message
}

func (e *rpcError) Unwrap() error {
	return e.cause
}

// toRPCError converts an error to an rpcError
func toRPCError(err error) *rpcError {
	var re *rpcError
	if errors.As(err, &re) {
		return re
	}

	var pe *protocol.ProtocolError
	if errors.As(err, &pe) {
		return &rpcError{CodeMalformedFrame, "Malformed request: " + pe.Reason, err}
	}

	switch {
	// Dispatch errors
	case errors.Is(err, model.ErrUnknownMethod):
		return &rpcError{CodeUnknownMethod, "Unknown method", err}
	case errors.Is(err, model.ErrInvalidArgs):
		return &rpcError{CodeInvalidArgs, "Invalid arguments", err}

	// Auth errors
	case errors.Is(err, model.ErrInvalidCredentials):
		return &rpcError{CodeInvalidCredentials, "Invalid credentials", err}
	case errors.Is(err, model.ErrAuthRequired):
		return &rpcError{CodeAuthRequired, "Authentication required (no token)", err}
	case errors.Is(err, model.ErrInvalidToken):
		return &rpcError{CodeInvalidToken, "Invalid or expired token", err}
	case errors.Is(err, model.ErrTokenMismatch):
		return &rpcError{CodeTokenMismatch, "Token does not belong to this player", err}
	case errors.Is(err, model.ErrInsufficientRole):
		return &rpcError{CodeInsufficientRole, "Operation requires the ADMIN role", err}

	// User errors
	case errors.Is(err, model.ErrUserExists):
		return &rpcError{CodeUserExists, "Username already exists", err}
	case errors.Is(err, model.ErrUserNotFound):
		return &rpcError{CodeUserNotFound, "User not found", err}

	// Room errors
	case errors.Is(err, model.ErrRoomExists):
		return &rpcError{CodeRoomExists, "Room already exists", err}
	case errors.Is(err, model.ErrRoomNotFound):
		return &rpcError{CodeRoomNotFound, "Room does not exist", err}
	case errors.Is(err, model.ErrGameInProgress):
		return &rpcError{CodeGameInProgress, "Game already started, cannot join room.", err}
	case errors.Is(err, model.ErrAlreadyJoined):
		return &rpcError{CodeAlreadyJoined, "Player already in room", err}
	case errors.Is(err, model.ErrNotInRoom):
		return &rpcError{CodeNotInRoom, "Player not in room", err}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &rpcError{CodeInsufficientPlayers, "Need at least 2 players to start the game", err}
	case errors.Is(err, model.ErrNotYourTurn):
		return &rpcError{CodeNotYourTurn, "Not your turn", err}
	case errors.Is(err, model.ErrCallTooLow):
		return &rpcError{CodeCallTooLow, "Called number must be greater than the previous one", err}
	case errors.Is(err, model.ErrNoCallYet):
		return &rpcError{CodeNoCallYet, "No call has been made yet.", err}
	case errors.Is(err, model.ErrAlreadyConnected):
		return &rpcError{CodeAlreadyConnected, "You are already connected. No need to reconnect.", err}
	case errors.Is(err, model.ErrNoDisconnectTimestamp):
		return &rpcError{CodeNoDisconnectTimestamp, "No disconnected timestamp found. Can't reconnect.", err}
	case errors.Is(err, model.ErrReconnectWindowExpired):
		return &rpcError{CodeReconnectWindowExpired, "Reconnection window has expired.", err}

	default:
		return &rpcError{CodeInternalError, "Internal server error", err}
	}
}

// newInvalidArgsError creates an invalid arguments error carrying usage help
func newInvalidArgsError(usage string) error {
	return &rpcError{CodeInvalidArgs, "Invalid arguments. Usage: " + usage, model.ErrInvalidArgs}
}

// newUnknownMethodError creates an unknown method error naming the method
func newUnknownMethodError(name string) error {
	return &rpcError{CodeUnknownMethod, "Unknown method: " + name, model.ErrUnknownMethod}
}

// ErrorResponse converts any error into the response sent to the client
func ErrorResponse(err error) *protocol.Response {
	return protocol.ErrorResponse(toRPCError(err).message)
}

// ErrorCode returns the stable code for err
func ErrorCode(err error) string {
	return toRPCError(err).code
}

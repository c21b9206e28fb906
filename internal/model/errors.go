package model

import "errors"

// Common errors used across the application
var (
	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenMismatch      = errors.New("token does not belong to this player")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrTokenNotFound      = errors.New("token not found")

	// User errors
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	// Room errors
	ErrRoomExists             = errors.New("room already exists")
	ErrRoomNotFound           = errors.New("room not found")
	ErrGameInProgress         = errors.New("game is in progress")
	ErrAlreadyJoined          = errors.New("player is already in room")
	ErrNotInRoom              = errors.New("player is not in room")
	ErrInsufficientPlayers    = errors.New("insufficient players")
	ErrNotYourTurn            = errors.New("not this player's turn")
	ErrCallTooLow             = errors.New("called number too low")
	ErrNoCallYet              = errors.New("no call has been made yet")
	ErrAlreadyConnected       = errors.New("player is already connected")
	ErrNoDisconnectTimestamp  = errors.New("no disconnect timestamp recorded")
	ErrReconnectWindowExpired = errors.New("reconnection window expired")

	// Dispatch errors
	ErrUnknownMethod = errors.New("unknown method")
	ErrInvalidArgs   = errors.New("invalid arguments")
)

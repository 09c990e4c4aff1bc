package domain

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidInput = errors.New("invalid input")
)

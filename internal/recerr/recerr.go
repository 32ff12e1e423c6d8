package recerr

import "errors"

var (
	// ErrUserNotFound means the user id has no row in the data store.
	ErrUserNotFound = errors.New("user not found")
	// ErrChatroomNotFound means the chatroom id has no row in the data store.
	ErrChatroomNotFound = errors.New("chatroom not found")
	// ErrModelNotFound means no trained artifact exists at the latest path.
	ErrModelNotFound = errors.New("no trained model found")
	// ErrModelNotLoaded means no model could ever be loaded into memory.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrModelExists means an artifact already exists for today's path.
	ErrModelExists = errors.New("model already exists for today")
	// ErrAlreadyExists means a cache entry is already present for the user.
	ErrAlreadyExists = errors.New("recommendations already exist")
	// ErrNotFound means no cache entry is present for the user.
	ErrNotFound = errors.New("recommendations not found")
)

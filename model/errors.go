package model

import "errors"

var (
	ErrEventNotFound   = errors.New("event does not exist")
	ErrPendingNotFound = errors.New("pending event does not exist")
	ErrUserNotFound    = errors.New("user does not exist")
	ErrNotCreator      = errors.New("user is not the event creator")
	ErrCreator         = errors.New("user is the event creator")
	ErrCreationLimit   = errors.New("active event creation limit reached")
	ErrBadPassphrase   = errors.New("admin passphrase does not match")
)

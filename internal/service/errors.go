package service

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("access denied")
	ErrEventFull            = errors.New("event is full")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrEventNotPublished    = errors.New("event is not available for registration")
	ErrNotRegistered        = errors.New("not registered for this event")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrImageStorageDisabled = errors.New("image storage not configured")
	ErrInvalidImage         = errors.New("unsupported image")
)

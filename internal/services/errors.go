package services

import "errors"

// Service errors. Handlers translate these into HTTP status codes with
// errors.Is; anything else is treated as an internal failure.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyLiked       = errors.New("user already liked")
	ErrAlreadyMain        = errors.New("photo is already the main photo")
	ErrMainPhotoDelete    = errors.New("main photo cannot be deleted")
	ErrExternalService    = errors.New("image storage unavailable")

	// ErrObjectNotFound is returned by an ImageStore when the object is
	// already gone; photo deletion proceeds past it.
	ErrObjectNotFound = errors.New("stored object not found")
)

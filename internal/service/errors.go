package service

import "errors"

// Sentinel errors handlers translate into HTTP statuses. Anything else that
// escapes a service is a store fault and surfaces as an opaque 500.
var (
	// ErrInvalidCredentials covers unknown email, deactivated account and
	// wrong password alike, so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
)

// EventPublisher receives security-relevant events (login, logout, role
// changes) for live delivery to connected clients. Implementations must not
// block.
type EventPublisher interface {
	Publish(event string, payload map[string]any)
}

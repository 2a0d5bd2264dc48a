package member

import (
	"errors"
	"regexp"
	"time"
)

var (
	ErrNotFound     = errors.New("member not found")
	ErrUnauthorized = errors.New("modification key mismatch")
	ErrDuplicate    = errors.New("member email already registered")
)

// Member is a community participant who may submit expenses. The
// ModificationKey is an opaque bearer token issued once at creation and used
// in place of full authentication for self-service updates.
type Member struct {
	ID              int64
	Name            string
	Email           string
	Bio             *string
	ModificationKey string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Deliberately permissive: local@domain, not RFC 5322.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

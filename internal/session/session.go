// Package session reports who, if anyone, is signed in.
package session

import (
	"errors"

	"github.com/julianstephens/bloomlet/internal/keyring"
	"github.com/julianstephens/bloomlet/internal/logger"
)

// Source exposes the authenticated user id, or ok=false when nobody is signed in.
type Source interface {
	UserID() (id string, ok bool)
}

// Static is a fixed session. The zero value is signed out.
type Static string

// UserID implements Source.
func (s Static) UserID() (string, bool) {
	return string(s), s != ""
}

// None is the signed-out session.
const None = Static("")

// Keyring reads the signed-in user from the OS keyring on every call so that
// login and logout in another process take effect immediately.
type Keyring struct{}

// UserID implements Source.
func (Keyring) UserID() (string, bool) {
	id, err := keyring.GetSessionUser()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Session keyring unavailable, continuing signed out", "error", err)
		}
		return "", false
	}
	return id, true
}

var (
	_ Source = Static("")
	_ Source = Keyring{}
)

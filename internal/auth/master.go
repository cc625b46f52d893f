package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"starwars/internal/model"
)

// MasterID is the user id carried by master tokens. Stored users start at 1.
const MasterID = 0

// MasterIdentity is the privileged account supplied by configuration.
// It is never stored in the credential store.
type MasterIdentity struct {
	Username string
	Password string
	TTL      time.Duration
}

// Matches compares the identifier case-insensitively and the password byte for byte.
func (m MasterIdentity) Matches(identifier, password string) bool {
	if m.Username == "" || identifier == "" {
		return false
	}
	if !strings.EqualFold(identifier, m.Username) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(m.Password)) == 1
}

// Reserves reports whether username would collide with the master identity.
func (m MasterIdentity) Reserves(username string) bool {
	return strings.EqualFold(username, m.Username)
}

// Claims returns the claims embedded in master tokens.
func (m MasterIdentity) Claims() Claims {
	return Claims{
		UserID:   MasterID,
		Username: m.Username,
		Master:   true,
	}
}

// View returns the outward representation of the master identity.
func (m MasterIdentity) View() model.UserView {
	return model.UserView{
		ID:       MasterID,
		Username: m.Username,
		Master:   true,
	}
}

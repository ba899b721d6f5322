// Package access gates privileged registry operations.
package access

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// SingleAdmin authorizes exactly one administrator credential. The registry holds a
// reference to the guard instead of a hard-coded identity, so tests substitute their own.
type SingleAdmin struct {
	admin interfaces.Credential
}

// NewSingleAdmin creates a guard for the given administrator address.
func NewSingleAdmin(admin common.Address) (*SingleAdmin, error) {
	if admin == (common.Address{}) {
		return nil, fmt.Errorf("administrator address must not be zero")
	}
	return &SingleAdmin{admin: interfaces.NewCredential(admin)}, nil
}

// Authorize implements interfaces.AccessGuard.
func (g *SingleAdmin) Authorize(caller interfaces.Credential) error {
	if caller.Address != g.admin.Address {
		return fmt.Errorf("%w: %s is not the administrator", interfaces.ErrNotAuthorized, caller)
	}
	return nil
}

// Admin returns the administrator credential.
func (g *SingleAdmin) Admin() interfaces.Credential {
	return g.admin
}

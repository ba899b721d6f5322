// Package ownership provides token ownership ledgers for certificates.
//
// The ledgers mirror the parts of an ERC-721 contract the registry relies on: minting
// to a recipient, owner lookup, token URI storage and burning. Ledger keeps this state
// in memory; StoreLedger keeps it in the certificate records of a MetadataStore and is
// what the registry server runs with.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

var (
	// ErrTokenExists is returned when minting an ID that already has an owner.
	ErrTokenExists = errors.New("token already minted")

	// ErrTokenNotFound is returned for operations on IDs without an owner.
	ErrTokenNotFound = errors.New("token does not exist")

	// ErrInvalidRecipient is returned when minting to the zero address.
	ErrInvalidRecipient = errors.New("mint to the zero address")
)

// Ledger implements interfaces.OwnershipLedger in memory.
type Ledger struct {
	mutex       sync.RWMutex
	owners      map[interfaces.CertificateID]common.Address
	balances    map[common.Address]uint64
	descriptors map[interfaces.CertificateID]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		owners:      make(map[interfaces.CertificateID]common.Address),
		balances:    make(map[common.Address]uint64),
		descriptors: make(map[interfaces.CertificateID]string),
	}
}

// MintOwnership implements interfaces.OwnershipLedger.
func (l *Ledger) MintOwnership(ctx context.Context, id interfaces.CertificateID, recipient common.Address) error {
	if recipient == (common.Address{}) {
		return ErrInvalidRecipient
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.owners[id]; exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, id)
	}

	l.owners[id] = recipient
	l.balances[recipient]++
	return nil
}

// CurrentOwner implements interfaces.OwnershipLedger.
func (l *Ledger) CurrentOwner(ctx context.Context, id interfaces.CertificateID) (common.Address, bool, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	owner, exists := l.owners[id]
	return owner, exists, nil
}

// AttachDescriptor implements interfaces.OwnershipLedger.
func (l *Ledger) AttachDescriptor(ctx context.Context, id interfaces.CertificateID, descriptor string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.owners[id]; !exists {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}

	l.descriptors[id] = descriptor
	return nil
}

// Descriptor implements interfaces.OwnershipLedger.
func (l *Ledger) Descriptor(ctx context.Context, id interfaces.CertificateID) (string, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if _, exists := l.owners[id]; !exists {
		return "", fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}

	return l.descriptors[id], nil
}

// Burn implements interfaces.OwnershipLedger.
func (l *Ledger) Burn(ctx context.Context, id interfaces.CertificateID) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	owner, exists := l.owners[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}

	delete(l.owners, id)
	delete(l.descriptors, id)
	l.balances[owner]--
	if l.balances[owner] == 0 {
		delete(l.balances, owner)
	}
	return nil
}

// BalanceOf returns how many certificates owner holds.
func (l *Ledger) BalanceOf(owner common.Address) uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.balances[owner]
}

// TotalSupply returns the number of existing certificates.
func (l *Ledger) TotalSupply() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.owners)
}

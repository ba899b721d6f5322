package ownership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// StoreLedger implements interfaces.OwnershipLedger on top of the certificate records
// of a MetadataStore. Owner and descriptor live in the record itself, so ownership
// survives restarts of the process for every persistent store.
//
// Read-modify-write cycles are not atomic; callers serialize mutations per certificate.
type StoreLedger struct {
	store interfaces.MetadataStore
	log   *slog.Logger
}

// NewStoreLedger creates a ledger over store.
func NewStoreLedger(store interfaces.MetadataStore, log *slog.Logger) *StoreLedger {
	return &StoreLedger{store: store, log: log}
}

// MintOwnership implements interfaces.OwnershipLedger.
func (l *StoreLedger) MintOwnership(ctx context.Context, id interfaces.CertificateID, recipient common.Address) error {
	if recipient == (common.Address{}) {
		return ErrInvalidRecipient
	}

	record, found, err := l.load(ctx, id)
	if err != nil {
		return err
	}
	if found && record.Owner != (common.Address{}) {
		return fmt.Errorf("%w: %s", ErrTokenExists, id)
	}

	record = interfaces.CertificateRecord{ID: id, Owner: recipient}
	if err := l.store.Put(ctx, record); err != nil {
		// Replicas that accepted the write must not keep a half-minted token.
		if delErr := l.store.Delete(context.WithoutCancel(ctx), id); delErr != nil {
			l.log.Error("Failed to clean up partial mint",
				slog.String("certificateID", id.String()),
				"err", delErr)
		}
		return fmt.Errorf("failed to store owner: %w", err)
	}
	return nil
}

// CurrentOwner implements interfaces.OwnershipLedger.
func (l *StoreLedger) CurrentOwner(ctx context.Context, id interfaces.CertificateID) (common.Address, bool, error) {
	record, found, err := l.load(ctx, id)
	if err != nil {
		return common.Address{}, false, err
	}
	if !found || record.Owner == (common.Address{}) {
		return common.Address{}, false, nil
	}
	return record.Owner, true, nil
}

// AttachDescriptor implements interfaces.OwnershipLedger.
func (l *StoreLedger) AttachDescriptor(ctx context.Context, id interfaces.CertificateID, descriptor string) error {
	record, err := l.owned(ctx, id)
	if err != nil {
		return err
	}
	if record.Descriptor == descriptor {
		return nil
	}

	record.Descriptor = descriptor
	if err := l.store.Put(ctx, record); err != nil {
		return fmt.Errorf("failed to store descriptor: %w", err)
	}
	return nil
}

// Descriptor implements interfaces.OwnershipLedger.
func (l *StoreLedger) Descriptor(ctx context.Context, id interfaces.CertificateID) (string, error) {
	record, err := l.owned(ctx, id)
	if err != nil {
		return "", err
	}
	return record.Descriptor, nil
}

// Burn implements interfaces.OwnershipLedger. The whole record goes with the token;
// burning a certificate whose record is already gone is a no-op.
func (l *StoreLedger) Burn(ctx context.Context, id interfaces.CertificateID) error {
	if err := l.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to burn %s: %w", id, err)
	}
	return nil
}

func (l *StoreLedger) owned(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	record, found, err := l.load(ctx, id)
	if err != nil {
		return interfaces.CertificateRecord{}, err
	}
	if !found || record.Owner == (common.Address{}) {
		return interfaces.CertificateRecord{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return record, nil
}

func (l *StoreLedger) load(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, bool, error) {
	record, err := l.store.Get(ctx, id)
	switch {
	case err == nil:
		return record, true, nil
	case errors.Is(err, interfaces.ErrRecordNotFound):
		return interfaces.CertificateRecord{}, false, nil
	default:
		return interfaces.CertificateRecord{}, false, fmt.Errorf("failed to read owner: %w", err)
	}
}

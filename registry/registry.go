package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/descriptor"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/metrics"
)

const (
	opIssue  = "issue"
	opUpdate = "update"
)

// LandRegistry implements interfaces.CertificateRegistry.
type LandRegistry struct {
	mutex sync.RWMutex

	guard    interfaces.AccessGuard
	ledger   interfaces.OwnershipLedger
	store    interfaces.MetadataStore
	binder   interfaces.AccountBinder
	renderer *descriptor.Renderer
	events   interfaces.EventSink
	metrics  *metrics.RegistryMetrics
	log      *slog.Logger
}

// Option configures optional collaborators of a LandRegistry.
type Option func(*LandRegistry)

// WithRenderer replaces the default descriptor renderer.
func WithRenderer(r *descriptor.Renderer) Option {
	return func(reg *LandRegistry) {
		if r != nil {
			reg.renderer = r
		}
	}
}

// WithEventSink sets the sink receiving Created and MetadataUpdated notifications.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(reg *LandRegistry) {
		reg.events = sink
	}
}

// WithMetrics enables operation metrics.
func WithMetrics(m *metrics.RegistryMetrics) Option {
	return func(reg *LandRegistry) {
		reg.metrics = m
	}
}

// NewLandRegistry creates a registry over the given collaborators.
func NewLandRegistry(guard interfaces.AccessGuard, ledger interfaces.OwnershipLedger, store interfaces.MetadataStore, binder interfaces.AccountBinder, log *slog.Logger, opts ...Option) (*LandRegistry, error) {
	if guard == nil || ledger == nil || store == nil || binder == nil {
		return nil, errors.New("registry requires an access guard, an ownership ledger, a metadata store and an account binder")
	}
	if log == nil {
		log = slog.Default()
	}

	reg := &LandRegistry{
		guard:    guard,
		ledger:   ledger,
		store:    store,
		binder:   binder,
		renderer: descriptor.NewRenderer(),
		log:      log,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg, nil
}

// Issue implements interfaces.CertificateRegistry.
func (r *LandRegistry) Issue(ctx context.Context, caller interfaces.Credential, id interfaces.CertificateID, recipient common.Address, metadata interfaces.LandMetadata) (cert interfaces.IssuedCertificate, err error) {
	defer func() { r.observe(opIssue, err) }()

	if err := r.guard.Authorize(caller); err != nil {
		return interfaces.IssuedCertificate{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	exists, err := r.exists(ctx, id)
	if err != nil {
		return interfaces.IssuedCertificate{}, err
	}
	if exists {
		return interfaces.IssuedCertificate{}, fmt.Errorf("%w: %s", interfaces.ErrAlreadyExists, id)
	}

	undo := newJournal(r.log)
	defer func() {
		if err != nil {
			undo.rollback(ctx, opIssue, id)
		}
	}()

	if err := r.ledger.MintOwnership(ctx, id, recipient); err != nil {
		return interfaces.IssuedCertificate{}, fmt.Errorf("failed to mint ownership: %w", err)
	}
	undo.push("burn ownership", func(ctx context.Context) error {
		return r.ledger.Burn(ctx, id)
	})

	desc := r.renderer.Render(metadata)
	record := interfaces.CertificateRecord{ID: id, Owner: recipient, Descriptor: desc, Metadata: metadata}

	// A replicated store may have accepted part of a failed write.
	undo.push("delete record", func(ctx context.Context) error {
		return r.store.Delete(ctx, id)
	})
	if err := r.store.Put(ctx, record); err != nil {
		return interfaces.IssuedCertificate{}, fmt.Errorf("failed to store metadata: %w", err)
	}

	if err := r.ledger.AttachDescriptor(ctx, id, desc); err != nil {
		return interfaces.IssuedCertificate{}, fmt.Errorf("failed to attach descriptor: %w", err)
	}

	start := time.Now()
	account, err := r.binder.Bind(ctx, id)
	r.metrics.ObserveBind(start)
	if err != nil {
		if !errors.Is(err, interfaces.ErrBindingFailed) {
			err = fmt.Errorf("%w: %w", interfaces.ErrBindingFailed, err)
		}
		return interfaces.IssuedCertificate{}, err
	}

	record.BoundAccount = account
	if err := r.store.Put(ctx, record); err != nil {
		return interfaces.IssuedCertificate{}, fmt.Errorf("failed to store bound account: %w", err)
	}

	if r.events != nil {
		if err := r.events.Created(ctx, interfaces.CreatedEvent{ID: id, Metadata: metadata}); err != nil {
			return interfaces.IssuedCertificate{}, fmt.Errorf("failed to emit Created: %w", err)
		}
	}

	r.log.Info("Certificate issued",
		slog.String("certificateID", id.String()),
		slog.String("owner", recipient.Hex()),
		slog.String("boundAccount", account.Hex()))

	return interfaces.IssuedCertificate{
		ID:           id,
		Owner:        recipient,
		Descriptor:   desc,
		BoundAccount: account,
	}, nil
}

// Update implements interfaces.CertificateRegistry. The stored metadata is replaced as a
// whole; the bound account is kept.
func (r *LandRegistry) Update(ctx context.Context, caller interfaces.Credential, id interfaces.CertificateID, metadata interfaces.LandMetadata) (err error) {
	defer func() { r.observe(opUpdate, err) }()

	if err := r.guard.Authorize(caller); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous, err := r.record(ctx, id)
	if err != nil {
		return err
	}
	previousDesc, err := r.ledger.Descriptor(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read descriptor: %w", err)
	}

	undo := newJournal(r.log)
	defer func() {
		if err != nil {
			undo.rollback(ctx, opUpdate, id)
		}
	}()

	desc := r.renderer.Render(metadata)
	updated := previous
	updated.Metadata = metadata
	updated.Descriptor = desc

	undo.push("restore record", func(ctx context.Context) error {
		return r.store.Put(ctx, previous)
	})
	if err := r.store.Put(ctx, updated); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}

	undo.push("restore descriptor", func(ctx context.Context) error {
		return r.ledger.AttachDescriptor(ctx, id, previousDesc)
	})
	if err := r.ledger.AttachDescriptor(ctx, id, desc); err != nil {
		return fmt.Errorf("failed to attach descriptor: %w", err)
	}

	if r.events != nil {
		if err := r.events.MetadataUpdated(ctx, interfaces.NewMetadataUpdatedEvent(id, metadata)); err != nil {
			return fmt.Errorf("failed to emit MetadataUpdated: %w", err)
		}
	}

	r.log.Info("Certificate metadata updated", slog.String("certificateID", id.String()))
	return nil
}

// Get implements interfaces.CertificateRegistry.
func (r *LandRegistry) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.LandMetadata, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, err := r.record(ctx, id)
	if err != nil {
		return interfaces.LandMetadata{}, err
	}
	return record.Metadata, nil
}

// Descriptor implements interfaces.CertificateRegistry.
func (r *LandRegistry) Descriptor(ctx context.Context, id interfaces.CertificateID) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if _, err := r.owner(ctx, id); err != nil {
		return "", err
	}

	desc, err := r.ledger.Descriptor(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read descriptor: %w", err)
	}
	return desc, nil
}

// BoundAccount implements interfaces.CertificateRegistry.
func (r *LandRegistry) BoundAccount(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, err := r.record(ctx, id)
	if err != nil {
		return common.Address{}, err
	}
	return record.BoundAccount, nil
}

// Owner returns the current owner of an issued certificate.
func (r *LandRegistry) Owner(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.owner(ctx, id)
}

// exists reports whether id has an owner or a stored record.
func (r *LandRegistry) exists(ctx context.Context, id interfaces.CertificateID) (bool, error) {
	_, owned, err := r.ledger.CurrentOwner(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to look up owner: %w", err)
	}
	if owned {
		return true, nil
	}

	_, err = r.store.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, interfaces.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up record: %w", err)
	}
}

func (r *LandRegistry) owner(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	owner, owned, err := r.ledger.CurrentOwner(ctx, id)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to look up owner: %w", err)
	}
	if !owned {
		return common.Address{}, fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	return owner, nil
}

// record returns the stored record of a certificate that currently has an owner.
func (r *LandRegistry) record(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	if _, err := r.owner(ctx, id); err != nil {
		return interfaces.CertificateRecord{}, err
	}

	record, err := r.store.Get(ctx, id)
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		return interfaces.CertificateRecord{}, fmt.Errorf("%w: no record for %s", interfaces.ErrNotFound, id)
	}
	if err != nil {
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to read record: %w", err)
	}
	return record, nil
}

func (r *LandRegistry) observe(operation string, err error) {
	if err == nil {
		if operation == opIssue {
			r.metrics.IncrementIssued()
		} else {
			r.metrics.IncrementUpdated()
		}
		return
	}

	kind := metrics.FailureInternal
	switch {
	case errors.Is(err, interfaces.ErrNotAuthorized):
		kind = metrics.FailureUnauthorized
	case errors.Is(err, interfaces.ErrAlreadyExists):
		kind = metrics.FailureExists
	case errors.Is(err, interfaces.ErrNotFound):
		kind = metrics.FailureNotFound
	case errors.Is(err, interfaces.ErrBindingFailed):
		kind = metrics.FailureBinding
	}
	r.metrics.IncrementFailure(operation, kind)

	r.log.Warn("Registry operation failed",
		slog.String("operation", operation),
		slog.String("kind", kind),
		"err", err)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// MultiStore implements interfaces.MetadataStore on top of several stores.
// Writes and deletes must reach every store; reads are served by the first available
// store holding the record.
type MultiStore struct {
	stores []interfaces.MetadataStore
	log    *slog.Logger
}

// NewMultiStore creates a replicated store.
func NewMultiStore(stores []interfaces.MetadataStore, logger *slog.Logger) *MultiStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		stores: stores,
		log:    logger,
	}
}

// Get returns the record from the first available store that has it.
// ErrRecordNotFound is returned only when every reachable store reports the record missing.
func (m *MultiStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	start := time.Now()
	var errs []error
	missing := 0

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Store unavailable",
				slog.String("store_name", store.Name()),
				slog.String("certificate_id", id.String()))
			continue
		}

		record, err := store.Get(ctx, id)
		if err == nil {
			m.log.Debug("Fetched record",
				slog.String("store_name", store.Name()),
				slog.String("certificate_id", id.String()),
				slog.Duration("duration", time.Since(start)))
			return record, nil
		}

		if errors.Is(err, interfaces.ErrRecordNotFound) {
			missing++
			continue
		}

		errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		m.log.Debug("Failed to fetch from store",
			slog.String("store_name", store.Name()),
			slog.String("certificate_id", id.String()),
			"err", err)
	}

	if len(errs) == 0 && missing > 0 {
		return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
	}

	m.log.Error("All stores failed to fetch record",
		slog.String("certificate_id", id.String()),
		slog.Int("failed_stores", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return interfaces.CertificateRecord{}, fmt.Errorf("all stores failed to fetch %s: %w", id, errors.Join(errs...))
}

// Put saves the record to every store. A replica that misses a write would later serve
// stale data, so Put writes nothing when any store is unavailable and fails when any
// store rejects the record. Stores that did accept a failed write keep it; callers
// compensate with Put of the previous record or Delete.
func (m *MultiStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	start := time.Now()

	if down := m.unavailable(ctx); len(down) > 0 {
		m.log.Warn("Refusing write with unavailable stores",
			slog.String("certificate_id", record.ID.String()),
			slog.String("unavailable", strings.Join(down, ",")))
		return fmt.Errorf("%w: %s", interfaces.ErrStoreUnavailable, strings.Join(down, ","))
	}

	var errs []error
	for _, store := range m.stores {
		if err := store.Put(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			m.log.Warn("Failed to store record",
				slog.String("store_name", store.Name()),
				slog.String("certificate_id", record.ID.String()),
				"err", err)
		}
	}

	if len(errs) > 0 {
		m.log.Error("Record not stored on every replica",
			slog.String("certificate_id", record.ID.String()),
			slog.Int("failed_stores", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("failed to store record on %d of %d stores: %w", len(errs), len(m.stores), errors.Join(errs...))
	}
	return nil
}

// Delete removes the record from every available store. It fails when any store is
// unavailable or rejects the delete, since that replica would still serve the record.
func (m *MultiStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	var errs []error
	for _, store := range m.stores {
		if !store.Available(ctx) {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), interfaces.ErrStoreUnavailable))
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		}
	}

	if len(errs) > 0 {
		m.log.Error("Record not deleted from every replica",
			slog.String("certificate_id", id.String()),
			"err", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

func (m *MultiStore) unavailable(ctx context.Context) []string {
	var down []string
	for _, store := range m.stores {
		if !store.Available(ctx) {
			down = append(down, store.Name())
		}
	}
	return down
}

// Available checks if any store is available for reads.
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this store.
func (m *MultiStore) Name() string {
	return "multi-store"
}

// LocationURI combines the location URIs of all stores.
func (m *MultiStore) LocationURI() string {
	var locations []string
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}

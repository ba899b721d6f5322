package storage

import (
	"context"
	"sync"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// MemoryStore keeps records in a map. Records are copied in and out.
type MemoryStore struct {
	mutex   sync.RWMutex
	records map[interfaces.CertificateID]interfaces.CertificateRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[interfaces.CertificateID]interfaces.CertificateRecord),
	}
}

// Get implements interfaces.MetadataStore.
func (s *MemoryStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
	}
	return record, nil
}

// Put implements interfaces.MetadataStore.
func (s *MemoryStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records[record.ID] = record
	return nil
}

// Delete implements interfaces.MetadataStore.
func (s *MemoryStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.records, id)
	return nil
}

// Available implements interfaces.MetadataStore.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}

// Name implements interfaces.MetadataStore.
func (s *MemoryStore) Name() string {
	return "memory"
}

// LocationURI implements interfaces.MetadataStore.
func (s *MemoryStore) LocationURI() string {
	return "memory://"
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.records)
}

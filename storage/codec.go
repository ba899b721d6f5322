package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// recordKey is the storage key of a certificate: the hex of its 32-byte ID.
func recordKey(id interfaces.CertificateID) string {
	return hex.EncodeToString(id[:])
}

func encodeRecord(record interfaces.CertificateRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (interfaces.CertificateRecord, error) {
	var record interfaces.CertificateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

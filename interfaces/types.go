// Package interfaces defines the core interfaces and types for the land certificate registry.
// It provides the contract between different components without implementation details.
package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CertificateID is a 256-bit unsigned certificate (token) identifier stored big-endian.
type CertificateID [32]byte

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// NewCertificateID creates a certificate ID from a small integer.
func NewCertificateID(id uint64) CertificateID {
	var res CertificateID
	new(big.Int).SetUint64(id).FillBytes(res[:])
	return res
}

// CertificateIDFromBig converts a big integer into a certificate ID.
func CertificateIDFromBig(id *big.Int) (CertificateID, error) {
	if id == nil || id.Sign() < 0 {
		return CertificateID{}, errors.New("invalid certificate id: must be non-negative")
	}
	if id.Cmp(maxUint256) > 0 {
		return CertificateID{}, errors.New("invalid certificate id: exceeds 256 bits")
	}

	var res CertificateID
	id.FillBytes(res[:])
	return res, nil
}

// ParseCertificateID parses a decimal or 0x-prefixed hex certificate ID.
func ParseCertificateID(s string) (CertificateID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CertificateID{}, errors.New("invalid certificate id: empty")
	}

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}

	id, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return CertificateID{}, fmt.Errorf("invalid certificate id: %q", s)
	}
	return CertificateIDFromBig(id)
}

// Big returns the identifier as a big integer.
func (id CertificateID) Big() *big.Int {
	return new(big.Int).SetBytes(id[:])
}

// String returns the decimal representation.
func (id CertificateID) String() string {
	return id.Big().String()
}

// Hex returns the 0x-prefixed 32-byte hex form.
func (id CertificateID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText encodes the ID in decimal so JSON carries it as a string.
func (id CertificateID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts decimal or 0x-prefixed hex.
func (id *CertificateID) UnmarshalText(text []byte) error {
	parsed, err := ParseCertificateID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Credential is the identity a caller presents for privileged operations.
// Over HTTP it is the address recovered from the request signature.
type Credential struct {
	Address common.Address
}

// NewCredential wraps an address as a caller credential.
func NewCredential(addr common.Address) Credential {
	return Credential{Address: addr}
}

// String returns the hex address of the credential.
func (c Credential) String() string {
	return c.Address.Hex()
}

// CertificateRecord is what the registry persists per issued certificate.
// Owner and Descriptor mirror the ownership ledger so a store alone is enough to
// recover every certificate after a restart.
type CertificateRecord struct {
	ID           CertificateID  `json:"id"`
	Owner        common.Address `json:"owner"`
	Descriptor   string         `json:"descriptor,omitempty"`
	Metadata     LandMetadata   `json:"metadata"`
	BoundAccount common.Address `json:"bound_account"`
}

// IssuedCertificate is the result of a successful issuance.
type IssuedCertificate struct {
	ID           CertificateID  `json:"id"`
	Owner        common.Address `json:"owner"`
	Descriptor   string         `json:"descriptor"`
	BoundAccount common.Address `json:"bound_account"`
}

// AccountRequest is the deterministic argument tuple for the account factory.
type AccountRequest struct {
	Implementation common.Address
	ChainID        *big.Int
	TokenContract  common.Address
	TokenID        CertificateID
	Salt           *big.Int
	InitData       []byte
}

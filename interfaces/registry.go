package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// OwnershipLedger is the token ownership component the registry builds on.
// Transfer and approval semantics live behind it and are not used by the registry.
type OwnershipLedger interface {
	// MintOwnership records recipient as owner of a new certificate.
	// Minting an ID that already has an owner must fail.
	MintOwnership(ctx context.Context, id CertificateID, recipient common.Address) error

	// CurrentOwner returns the owner and whether the certificate currently exists.
	CurrentOwner(ctx context.Context, id CertificateID) (common.Address, bool, error)

	// AttachDescriptor sets the descriptor (token URI) of an existing certificate.
	AttachDescriptor(ctx context.Context, id CertificateID, descriptor string) error

	// Descriptor returns the attached descriptor.
	Descriptor(ctx context.Context, id CertificateID) (string, error)

	// Burn destroys a certificate and its descriptor.
	Burn(ctx context.Context, id CertificateID) error
}

// AccessGuard fails privileged operations unless the caller is authorized.
type AccessGuard interface {
	Authorize(caller Credential) error
}

// AccountFactory creates or returns the canonical bound account for a request tuple.
// Calling it twice with the same tuple must return the same address.
type AccountFactory interface {
	CreateAccount(ctx context.Context, req AccountRequest) (common.Address, error)
}

// AccountBinder provisions the bound account of a certificate.
type AccountBinder interface {
	Bind(ctx context.Context, id CertificateID) (common.Address, error)
}

// DateFormatter renders a unix timestamp for the descriptor.
type DateFormatter interface {
	FormatDate(unixSeconds uint64) string
}

// EventSink receives registry notifications. A returned error aborts the operation
// that produced the event.
type EventSink interface {
	Created(ctx context.Context, ev CreatedEvent) error
	MetadataUpdated(ctx context.Context, ev MetadataUpdatedEvent) error
}

// MetadataStore persists certificate records keyed by certificate ID.
type MetadataStore interface {
	// Get returns ErrRecordNotFound when no record is stored.
	Get(ctx context.Context, id CertificateID) (CertificateRecord, error)

	// Put stores or replaces the whole record.
	Put(ctx context.Context, record CertificateRecord) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id CertificateID) error

	// Available reports whether the backend is reachable.
	Available(ctx context.Context) bool

	// Name returns a short identifier for logs.
	Name() string

	// LocationURI returns the URI the store was created from.
	LocationURI() string
}

// MetadataStoreFactory creates stores from location URIs.
type MetadataStoreFactory interface {
	StoreFor(locationURI string) (MetadataStore, error)
}

// CertificateRegistry is the land certificate registry as seen by its callers.
type CertificateRegistry interface {
	// Issue mints a certificate to recipient, stores its metadata, attaches the rendered
	// descriptor and provisions the bound account. Any failure leaves no state behind.
	Issue(ctx context.Context, caller Credential, id CertificateID, recipient common.Address, metadata LandMetadata) (IssuedCertificate, error)

	// Update replaces the whole metadata record of an issued certificate.
	Update(ctx context.Context, caller Credential, id CertificateID, metadata LandMetadata) error

	// Get returns the stored metadata of an issued certificate.
	Get(ctx context.Context, id CertificateID) (LandMetadata, error)

	// Descriptor returns the descriptor attached to an issued certificate.
	Descriptor(ctx context.Context, id CertificateID) (string, error)

	// BoundAccount returns the address of the certificate's bound account.
	BoundAccount(ctx context.Context, id CertificateID) (common.Address, error)
}

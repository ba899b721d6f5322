// Package interfaces defines the core interfaces and types for the land certificate
// registry, separating interface definitions from implementations.
//
// The package provides interfaces for the collaborators of the registry core:
//
// # Collaborator Interfaces
//
// OwnershipLedger: Token ownership bookkeeping for certificates. Mints ownership to a
// recipient, reports the current owner and holds the descriptor (token URI) attached to
// each certificate.
//
// AccessGuard: Gates privileged operations. The registry passes the caller credential of
// every issue and update call to the guard before touching any state.
//
// AccountFactory: The external ERC-6551 style registry that creates (or returns) the
// token-bound account for a certificate.
//
// EventSink: Receives Created and MetadataUpdated notifications.
//
// # Storage Interfaces
//
// MetadataStore: Keyed record storage for certificate records, with backends selected by
// location URI (memory, file, redis, s3).
//
// # Types
//
//   - CertificateID: 256-bit token identifier, comparable and usable as a map key
//   - LandMetadata: the structured description of a land parcel
//   - CertificateRecord: what the registry persists per issued certificate
//   - Credential: the identity a caller presents to the access guard
//
// # Errors
//
//   - ErrNotAuthorized: caller lacks administrator identity
//   - ErrAlreadyExists: duplicate issuance attempt
//   - ErrNotFound: no record or owner for the certificate
//   - ErrBindingFailed: the account factory did not report success
package interfaces

package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/descriptor"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// SignatureHeader carries the administrator signature of a request body.
const SignatureHeader = "X-Flashbots-Signature"

// IssueRequest is the body of POST /api/admin/certificates.
type IssueRequest struct {
	ID        interfaces.CertificateID `json:"id"`
	Recipient common.Address           `json:"recipient"`
	Metadata  interfaces.LandMetadata  `json:"metadata"`
}

// UpdateRequest is the body of PUT /api/admin/certificates/{id}.
type UpdateRequest struct {
	Metadata interfaces.LandMetadata `json:"metadata"`
}

// CertificateResponse is returned by GET /api/certificates/{id}.
type CertificateResponse struct {
	ID       interfaces.CertificateID `json:"id"`
	Metadata interfaces.LandMetadata  `json:"metadata"`
}

// DescriptorResponse is returned by GET /api/certificates/{id}/descriptor.
// Document is omitted when the descriptor does not decode as JSON.
type DescriptorResponse struct {
	ID         interfaces.CertificateID `json:"id"`
	Descriptor string                   `json:"descriptor"`
	Document   *descriptor.Document     `json:"document,omitempty"`
}

// AccountResponse is returned by GET /api/certificates/{id}/account.
type AccountResponse struct {
	ID           interfaces.CertificateID `json:"id"`
	BoundAccount common.Address           `json:"bound_account"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of the liveness, readiness and drain endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	// Store is the location of the metadata store when readiness depends on it.
	Store string `json:"store,omitempty"`
}

// CertificateProvider is the client side of the registry API.
type CertificateProvider interface {
	Issue(req IssueRequest) (*interfaces.IssuedCertificate, error)
	Update(id interfaces.CertificateID, metadata interfaces.LandMetadata) error
	Get(id interfaces.CertificateID) (*CertificateResponse, error)
	Descriptor(id interfaces.CertificateID) (*DescriptorResponse, error)
	Account(id interfaces.CertificateID) (*AccountResponse, error)
}

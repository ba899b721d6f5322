package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/flashbots/go-utils/signature"
	"github.com/go-chi/chi/v5"
	"github.com/ruteri/land-certificate-registry/api"
	"github.com/ruteri/land-certificate-registry/descriptor"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}

// StatusCode maps an error to the HTTP status it is reported with.
func StatusCode(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode
	case errors.Is(err, interfaces.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrBindingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Handler processes HTTP requests for the certificate registry.
type Handler struct {
	registry interfaces.CertificateRegistry
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler over the given registry.
func NewHandler(registry interfaces.CertificateRegistry, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log,
	}
}

// HandleIssue issues a certificate.
//
// URL format: POST /api/admin/certificates
// Required headers:
//   - X-Flashbots-Signature: <signer address>:<signature over the body>
//
// Request body: api.IssueRequest
//
// Response: 201 with interfaces.IssuedCertificate
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	body, caller, err := h.authenticatedBody(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req api.IssueRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, badRequest("invalid issue request: %v", err))
		return
	}
	if req.Recipient == (common.Address{}) {
		h.writeError(w, badRequest("recipient must not be the zero address"))
		return
	}

	cert, err := h.registry.Issue(r.Context(), caller, req.ID, req.Recipient, req.Metadata)
	if err != nil {
		h.log.Error("Issue failed", "err", err,
			slog.String("certificateID", req.ID.String()),
			slog.String("caller", caller.String()))
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, cert)
}

// HandleUpdate replaces the metadata of a certificate.
//
// URL format: PUT /api/admin/certificates/{id}
// Required headers:
//   - X-Flashbots-Signature: <signer address>:<signature over the body>
//
// Request body: api.UpdateRequest
//
// Response: 200 with api.CertificateResponse carrying the new metadata
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := certificateIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, caller, err := h.authenticatedBody(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req api.UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, badRequest("invalid update request: %v", err))
		return
	}

	if err := h.registry.Update(r.Context(), caller, id, req.Metadata); err != nil {
		h.log.Error("Update failed", "err", err,
			slog.String("certificateID", id.String()),
			slog.String("caller", caller.String()))
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.CertificateResponse{ID: id, Metadata: req.Metadata})
}

// HandleGet returns the metadata of a certificate.
//
// URL format: GET /api/certificates/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := certificateIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	metadata, err := h.registry.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.CertificateResponse{ID: id, Metadata: metadata})
}

// HandleDescriptor returns the descriptor attached to a certificate together with its
// decoded document.
//
// URL format: GET /api/certificates/{id}/descriptor
func (h *Handler) HandleDescriptor(w http.ResponseWriter, r *http.Request) {
	id, err := certificateIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	desc, err := h.registry.Descriptor(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := api.DescriptorResponse{ID: id, Descriptor: desc}
	doc, err := descriptor.Decode(desc)
	if err != nil {
		// Unescaped free text can break the JSON document; the raw descriptor is still served.
		h.log.Warn("Descriptor does not decode", "err", err, slog.String("certificateID", id.String()))
	} else {
		resp.Document = doc
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleAccount returns the bound account of a certificate.
//
// URL format: GET /api/certificates/{id}/account
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	id, err := certificateIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	account, err := h.registry.BoundAccount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, api.AccountResponse{ID: id, BoundAccount: account})
}

// authenticatedBody reads the request body and recovers the signer from the signature header.
func (h *Handler) authenticatedBody(r *http.Request) ([]byte, interfaces.Credential, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, interfaces.Credential{}, badRequest("failed to read request body: %v", err)
	}
	if len(body) > maxBodySize {
		return nil, interfaces.Credential{}, &RequestError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Err:        errors.New("request body too large"),
		}
	}

	header := r.Header.Get(api.SignatureHeader)
	if header == "" {
		return nil, interfaces.Credential{}, &RequestError{
			StatusCode: http.StatusUnauthorized,
			Err:        fmt.Errorf("missing %s header", api.SignatureHeader),
		}
	}

	signer, err := signature.Verify(header, body)
	if err != nil {
		h.log.Warn("Authentication failed: invalid signature", "err", err)
		return nil, interfaces.Credential{}, &RequestError{
			StatusCode: http.StatusUnauthorized,
			Err:        fmt.Errorf("invalid signature: %w", err),
		}
	}

	return body, interfaces.NewCredential(signer), nil
}

func certificateIDParam(r *http.Request) (interfaces.CertificateID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return interfaces.CertificateID{}, badRequest("missing certificate id in URL")
	}

	id, err := interfaces.ParseCertificateID(raw)
	if err != nil {
		return interfaces.CertificateID{}, badRequest("%v", err)
	}
	return id, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, StatusCode(err), api.ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

package clients

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flashbots/go-utils/signature"
	"github.com/ruteri/land-certificate-registry/api"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// ErrNoSigningKey is returned by administrator calls on a client without a key.
var ErrNoSigningKey = errors.New("administrator key required")

// APIError is a non-2xx response of the registry API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry API returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code back to the registry error it was produced from.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return interfaces.ErrNotAuthorized
	case http.StatusNotFound:
		return interfaces.ErrNotFound
	case http.StatusConflict:
		return interfaces.ErrAlreadyExists
	case http.StatusBadGateway:
		return interfaces.ErrBindingFailed
	default:
		return nil
	}
}

// CertificateClient implements api.CertificateProvider over HTTP.
type CertificateClient struct {
	baseURL    string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client
}

// NewCertificateClient creates a client for the registry API at baseURL.
// privateKey may be nil for read-only use.
func NewCertificateClient(baseURL string, privateKey *ecdsa.PrivateKey, timeout ...time.Duration) *CertificateClient {
	clientTimeout := 60 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &CertificateClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		privateKey: privateKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// Issue issues a certificate. Requires the administrator key.
func (c *CertificateClient) Issue(req api.IssueRequest) (*interfaces.IssuedCertificate, error) {
	var cert interfaces.IssuedCertificate
	if err := c.signed(http.MethodPost, "/api/admin/certificates", req, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Update replaces the metadata of a certificate. Requires the administrator key.
func (c *CertificateClient) Update(id interfaces.CertificateID, metadata interfaces.LandMetadata) error {
	return c.signed(http.MethodPut, "/api/admin/certificates/"+id.String(), api.UpdateRequest{Metadata: metadata}, nil)
}

// Get returns the metadata of a certificate.
func (c *CertificateClient) Get(id interfaces.CertificateID) (*api.CertificateResponse, error) {
	var resp api.CertificateResponse
	if err := c.get("/api/certificates/"+id.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Descriptor returns the descriptor attached to a certificate.
func (c *CertificateClient) Descriptor(id interfaces.CertificateID) (*api.DescriptorResponse, error) {
	var resp api.DescriptorResponse
	if err := c.get("/api/certificates/"+id.String()+"/descriptor", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Account returns the bound account of a certificate.
func (c *CertificateClient) Account(id interfaces.CertificateID) (*api.AccountResponse, error) {
	var resp api.AccountResponse
	if err := c.get("/api/certificates/"+id.String()+"/account", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateSignedRequest creates an HTTP request whose body is signed with privateKey.
func CreateSignedRequest(method, url string, body []byte, privateKey *ecdsa.PrivateKey) (*http.Request, error) {
	signer := signature.NewSigner(privateKey)
	header, err := signer.Create(body)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.SignatureHeader, header)
	return req, nil
}

func (c *CertificateClient) signed(method, path string, body any, out any) error {
	if c.privateKey == nil {
		return ErrNoSigningKey
	}

	reqJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := CreateSignedRequest(method, c.baseURL+path, reqJSON, c.privateKey)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *CertificateClient) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *CertificateClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var errResp api.ErrorResponse
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			message = errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// MockCertificateProvider implements a mock api.CertificateProvider for testing.
type MockCertificateProvider struct {
	mock.Mock
}

func (m *MockCertificateProvider) Issue(req api.IssueRequest) (*interfaces.IssuedCertificate, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.IssuedCertificate), args.Error(1)
}

func (m *MockCertificateProvider) Update(id interfaces.CertificateID, metadata interfaces.LandMetadata) error {
	args := m.Called(id, metadata)
	return args.Error(0)
}

func (m *MockCertificateProvider) Get(id interfaces.CertificateID) (*api.CertificateResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CertificateResponse), args.Error(1)
}

func (m *MockCertificateProvider) Descriptor(id interfaces.CertificateID) (*api.DescriptorResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.DescriptorResponse), args.Error(1)
}

func (m *MockCertificateProvider) Account(id interfaces.CertificateID) (*api.AccountResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.AccountResponse), args.Error(1)
}

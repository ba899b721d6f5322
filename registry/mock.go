package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockCertificateRegistry mocks the CertificateRegistry interface
type MockCertificateRegistry struct {
	mock.Mock
}

// Issue mocks the Issue method
func (m *MockCertificateRegistry) Issue(ctx context.Context, caller interfaces.Credential, id interfaces.CertificateID, recipient common.Address, metadata interfaces.LandMetadata) (interfaces.IssuedCertificate, error) {
	args := m.Called(ctx, caller, id, recipient, metadata)
	return args.Get(0).(interfaces.IssuedCertificate), args.Error(1)
}

// Update mocks the Update method
func (m *MockCertificateRegistry) Update(ctx context.Context, caller interfaces.Credential, id interfaces.CertificateID, metadata interfaces.LandMetadata) error {
	args := m.Called(ctx, caller, id, metadata)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockCertificateRegistry) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.LandMetadata, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(interfaces.LandMetadata), args.Error(1)
}

// Descriptor mocks the Descriptor method
func (m *MockCertificateRegistry) Descriptor(ctx context.Context, id interfaces.CertificateID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// BoundAccount mocks the BoundAccount method
func (m *MockCertificateRegistry) BoundAccount(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(common.Address), args.Error(1)
}

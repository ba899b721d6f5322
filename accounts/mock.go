package accounts

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAccountFactory mocks the AccountFactory interface
type MockAccountFactory struct {
	mock.Mock
}

// CreateAccount mocks the CreateAccount method
func (m *MockAccountFactory) CreateAccount(ctx context.Context, req interfaces.AccountRequest) (common.Address, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(common.Address), args.Error(1)
}

// MockAccountBinder mocks the AccountBinder interface
type MockAccountBinder struct {
	mock.Mock
}

// Bind mocks the Bind method
func (m *MockAccountBinder) Bind(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(common.Address), args.Error(1)
}

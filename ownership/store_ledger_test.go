package ownership

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLedger_Lifecycle(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := NewStoreLedger(store, testLogger())
	ctx := context.Background()
	id := interfaces.NewCertificateID(1)

	_, exists, err := ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = ledger.Descriptor(ctx, id)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.ErrorIs(t, ledger.AttachDescriptor(ctx, id, "data:x"), ErrTokenNotFound)

	assert.ErrorIs(t, ledger.MintOwnership(ctx, id, common.Address{}), ErrInvalidRecipient)
	require.NoError(t, ledger.MintOwnership(ctx, id, alice))
	assert.ErrorIs(t, ledger.MintOwnership(ctx, id, bob), ErrTokenExists)

	owner, exists, err := ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, alice, owner)

	require.NoError(t, ledger.AttachDescriptor(ctx, id, "data:application/json;base64,e30="))
	desc, err := ledger.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "data:application/json;base64,e30=", desc)

	// Ownership is read from the store, so a second ledger sees the same state.
	reopened := NewStoreLedger(store, testLogger())
	owner, exists, err = reopened.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, alice, owner)

	require.NoError(t, ledger.Burn(ctx, id))
	_, exists, err = reopened.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, store.Len())

	// Burning twice is a no-op.
	require.NoError(t, ledger.Burn(ctx, id))
}

func TestStoreLedger_KeepsRecordFields(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := NewStoreLedger(store, testLogger())
	ctx := context.Background()
	id := interfaces.NewCertificateID(2)

	require.NoError(t, ledger.MintOwnership(ctx, id, alice))
	record, err := store.Get(ctx, id)
	require.NoError(t, err)
	record.Metadata.Name = "North Field"
	require.NoError(t, store.Put(ctx, record))

	require.NoError(t, ledger.AttachDescriptor(ctx, id, "data:new"))

	record, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "North Field", record.Metadata.Name)
	assert.Equal(t, "data:new", record.Descriptor)
	assert.Equal(t, alice, record.Owner)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(interfaces.CertificateRecord), args.Error(1)
}

func (m *mockStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockStore) Name() string {
	return "mock"
}

func (m *mockStore) LocationURI() string {
	return "mock://"
}

func TestStoreLedger_FailedMintIsCleanedUp(t *testing.T) {
	store := &mockStore{}
	ledger := NewStoreLedger(store, testLogger())
	ctx := context.Background()
	id := interfaces.NewCertificateID(3)

	store.On("Get", mock.Anything, id).Return(interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound).Once()
	store.On("Put", mock.Anything, interfaces.CertificateRecord{ID: id, Owner: alice}).Return(errors.New("replica down")).Once()
	store.On("Delete", mock.Anything, id).Return(nil).Once()

	err := ledger.MintOwnership(ctx, id, alice)
	assert.Error(t, err)
	store.AssertExpectations(t)
}

func TestStoreLedger_StoreErrors(t *testing.T) {
	store := &mockStore{}
	ledger := NewStoreLedger(store, testLogger())
	id := interfaces.NewCertificateID(4)
	cause := errors.New("connection refused")

	store.On("Get", mock.Anything, id).Return(interfaces.CertificateRecord{}, cause)

	_, _, err := ledger.CurrentOwner(context.Background(), id)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, ledger.MintOwnership(context.Background(), id, alice), cause)
}

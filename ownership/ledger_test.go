package ownership

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func TestLedger_MintAndOwner(t *testing.T) {
	ledger := NewLedger()
	ctx := context.Background()
	id := interfaces.NewCertificateID(1)

	_, exists, err := ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, ledger.MintOwnership(ctx, id, alice))

	owner, exists, err := ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, alice, owner)
	assert.Equal(t, uint64(1), ledger.BalanceOf(alice))
	assert.Equal(t, 1, ledger.TotalSupply())

	err = ledger.MintOwnership(ctx, id, bob)
	assert.ErrorIs(t, err, ErrTokenExists)

	owner, _, _ = ledger.CurrentOwner(ctx, id)
	assert.Equal(t, alice, owner, "failed re-mint must not change the owner")
	assert.Equal(t, uint64(0), ledger.BalanceOf(bob))

	err = ledger.MintOwnership(ctx, interfaces.NewCertificateID(2), common.Address{})
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestLedger_Descriptor(t *testing.T) {
	ledger := NewLedger()
	ctx := context.Background()
	id := interfaces.NewCertificateID(7)

	err := ledger.AttachDescriptor(ctx, id, "data:application/json;base64,e30=")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = ledger.Descriptor(ctx, id)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, ledger.MintOwnership(ctx, id, alice))

	uri, err := ledger.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, uri)

	require.NoError(t, ledger.AttachDescriptor(ctx, id, "data:application/json;base64,e30="))
	uri, err = ledger.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "data:application/json;base64,e30=", uri)
}

func TestLedger_Burn(t *testing.T) {
	ledger := NewLedger()
	ctx := context.Background()
	id := interfaces.NewCertificateID(3)

	assert.ErrorIs(t, ledger.Burn(ctx, id), ErrTokenNotFound)

	require.NoError(t, ledger.MintOwnership(ctx, id, alice))
	require.NoError(t, ledger.MintOwnership(ctx, interfaces.NewCertificateID(4), alice))
	require.NoError(t, ledger.AttachDescriptor(ctx, id, "uri"))

	require.NoError(t, ledger.Burn(ctx, id))

	_, exists, err := ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, uint64(1), ledger.BalanceOf(alice))

	_, err = ledger.Descriptor(ctx, id)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// A burned ID can be minted again by the ledger itself.
	require.NoError(t, ledger.MintOwnership(ctx, id, bob))
	uri, err := ledger.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

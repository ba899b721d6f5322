package access

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleAdmin(t *testing.T) {
	admin := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	other := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	guard, err := NewSingleAdmin(admin)
	require.NoError(t, err)
	assert.Equal(t, admin, guard.Admin().Address)

	assert.NoError(t, guard.Authorize(interfaces.NewCredential(admin)))
	assert.ErrorIs(t, guard.Authorize(interfaces.NewCredential(other)), interfaces.ErrNotAuthorized)
	assert.ErrorIs(t, guard.Authorize(interfaces.Credential{}), interfaces.ErrNotAuthorized)

	_, err = NewSingleAdmin(common.Address{})
	assert.Error(t, err)
}

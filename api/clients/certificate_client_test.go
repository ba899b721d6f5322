package clients

import (
	"io"
	"log/slog"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/land-certificate-registry/access"
	"github.com/ruteri/land-certificate-registry/accounts"
	"github.com/ruteri/land-certificate-registry/api"
	"github.com/ruteri/land-certificate-registry/httpserver"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/ownership"
	"github.com/ruteri/land-certificate-registry/registry"
	"github.com/ruteri/land-certificate-registry/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ api.CertificateProvider = (*CertificateClient)(nil)

func startServer(t *testing.T, admin common.Address) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	guard, err := access.NewSingleAdmin(admin)
	require.NoError(t, err)

	binder, err := accounts.NewBinder(
		accounts.NewLocalFactory(common.HexToAddress("0x02101dfB77FDE026414827Fdc604ddAF224F0921"), log),
		accounts.BinderConfig{
			TokenContract:  common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
			Implementation: common.HexToAddress("0x2D25602551487C3f3354dD80D76D54383A243358"),
			ChainID:        big.NewInt(1),
		}, log)
	require.NoError(t, err)

	reg, err := registry.NewLandRegistry(guard, ownership.NewLedger(), storage.NewMemoryStore(), binder, log)
	require.NoError(t, err)

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		Log:                      log,
		GracefulShutdownDuration: time.Second,
	}, httpserver.NewHandler(reg, log), nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestCertificateClient_RoundTrip(t *testing.T) {
	adminKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	ts := startServer(t, crypto.PubkeyToAddress(adminKey.PublicKey))

	client := NewCertificateClient(ts.URL+"/", adminKey)
	reader := NewCertificateClient(ts.URL, nil)

	id := interfaces.NewCertificateID(42)
	owner := common.HexToAddress("0x90F79bf6EB2c4F870365E785982E1f101E93b906")
	metadata := interfaces.LandMetadata{
		Name:           "North Field",
		Location:       "Ubud",
		YieldPotential: 1500,
		LastSurveyDate: 1700000000,
	}

	cert, err := client.Issue(api.IssueRequest{ID: id, Recipient: owner, Metadata: metadata})
	require.NoError(t, err)
	assert.Equal(t, owner, cert.Owner)

	got, err := reader.Get(id)
	require.NoError(t, err)
	assert.Equal(t, metadata, got.Metadata)

	desc, err := reader.Descriptor(id)
	require.NoError(t, err)
	assert.Equal(t, cert.Descriptor, desc.Descriptor)

	account, err := reader.Account(id)
	require.NoError(t, err)
	assert.Equal(t, cert.BoundAccount, account.BoundAccount)

	next := interfaces.LandMetadata{Name: "South Field"}
	require.NoError(t, client.Update(id, next))
	got, err = reader.Get(id)
	require.NoError(t, err)
	assert.Equal(t, next, got.Metadata)
}

func TestCertificateClient_Errors(t *testing.T) {
	adminKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	strangerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	ts := startServer(t, crypto.PubkeyToAddress(adminKey.PublicKey))

	owner := common.HexToAddress("0x90F79bf6EB2c4F870365E785982E1f101E93b906")
	req := api.IssueRequest{ID: interfaces.NewCertificateID(1), Recipient: owner}

	_, err = NewCertificateClient(ts.URL, nil).Issue(req)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	_, err = NewCertificateClient(ts.URL, strangerKey).Issue(req)
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	client := NewCertificateClient(ts.URL, adminKey)
	_, err = client.Issue(req)
	require.NoError(t, err)
	_, err = client.Issue(req)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	_, err = client.Get(interfaces.NewCertificateID(2))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "certificate not found")
}

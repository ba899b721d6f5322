package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ruteri/land-certificate-registry/access"
	"github.com/ruteri/land-certificate-registry/accounts"
	"github.com/ruteri/land-certificate-registry/descriptor"
	"github.com/ruteri/land-certificate-registry/events"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/metrics"
	"github.com/ruteri/land-certificate-registry/ownership"
	"github.com/ruteri/land-certificate-registry/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	adminAddr          = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	strangerAddr       = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	ownerAddr          = common.HexToAddress("0x90F79bf6EB2c4F870365E785982E1f101E93b906")
	factoryAddr        = common.HexToAddress("0x02101dfB77FDE026414827Fdc604ddAF224F0921")
	implementationAddr = common.HexToAddress("0x2D25602551487C3f3354dD80D76D54383A243358")
	tokenContractAddr  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

type testEnv struct {
	registry *LandRegistry
	ledger   *ownership.Ledger
	store    *storage.MemoryStore
	factory  *accounts.LocalFactory
	recorder *events.Recorder
	metrics  *metrics.RegistryMetrics
	admin    interfaces.Credential
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBinder(t *testing.T, factory interfaces.AccountFactory) *accounts.Binder {
	t.Helper()
	binder, err := accounts.NewBinder(factory, accounts.BinderConfig{
		TokenContract:  tokenContractAddr,
		Implementation: implementationAddr,
		ChainID:        big.NewInt(1),
	}, testLogger())
	require.NoError(t, err)
	return binder
}

// setupRegistry wires a registry over in-memory collaborators. binder and sink override
// the local factory binder and the recorder when set.
func setupRegistry(t *testing.T, binder interfaces.AccountBinder, sink interfaces.EventSink) *testEnv {
	t.Helper()

	guard, err := access.NewSingleAdmin(adminAddr)
	require.NoError(t, err)

	env := &testEnv{
		ledger:   ownership.NewLedger(),
		store:    storage.NewMemoryStore(),
		factory:  accounts.NewLocalFactory(factoryAddr, testLogger()),
		recorder: events.NewRecorder(),
		metrics:  metrics.NewRegistryMetrics("test", prometheus.NewRegistry()),
		admin:    interfaces.NewCredential(adminAddr),
	}

	if binder == nil {
		binder = newBinder(t, env.factory)
	}
	if sink == nil {
		sink = env.recorder
	}

	env.registry, err = NewLandRegistry(guard, env.ledger, env.store, binder, testLogger(),
		WithEventSink(sink),
		WithMetrics(env.metrics),
	)
	require.NoError(t, err)
	return env
}

func parcel() interfaces.LandMetadata {
	return interfaces.LandMetadata{
		Name:           "North Field",
		Description:    "Terraced rice paddy",
		Location:       "Ubud, Bali",
		GPSCoordinates: "-8.5069,115.2625",
		Area:           "3.2 ha",
		SoilType:       "Volcanic loam",
		Ownership:      "Freehold",
		WaterSource:    "Subak irrigation",
		YieldPotential: 1500,
		LastSurveyDate: 1700000000,
		ImageURI:       "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		ExternalURL:    "https://registry.example.org/parcels/42",
	}
}

// assertNoTrace checks that nothing about id persisted.
func assertNoTrace(t *testing.T, env *testEnv, id interfaces.CertificateID) {
	t.Helper()
	ctx := context.Background()

	_, owned, err := env.ledger.CurrentOwner(ctx, id)
	require.NoError(t, err)
	assert.False(t, owned, "ownership must not persist")

	_, err = env.store.Get(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound, "record must not persist")

	_, err = env.ledger.Descriptor(ctx, id)
	assert.ErrorIs(t, err, ownership.ErrTokenNotFound, "descriptor must not persist")

	_, err = env.registry.Get(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	assert.Equal(t, 0, env.ledger.TotalSupply())
	assert.Equal(t, uint64(0), env.ledger.BalanceOf(ownerAddr))
}

func TestNewLandRegistry_RequiresCollaborators(t *testing.T) {
	guard, err := access.NewSingleAdmin(adminAddr)
	require.NoError(t, err)

	_, err = NewLandRegistry(nil, ownership.NewLedger(), storage.NewMemoryStore(), &accounts.MockAccountBinder{}, testLogger())
	assert.Error(t, err)
	_, err = NewLandRegistry(guard, nil, storage.NewMemoryStore(), &accounts.MockAccountBinder{}, testLogger())
	assert.Error(t, err)
	_, err = NewLandRegistry(guard, ownership.NewLedger(), nil, &accounts.MockAccountBinder{}, testLogger())
	assert.Error(t, err)
	_, err = NewLandRegistry(guard, ownership.NewLedger(), storage.NewMemoryStore(), nil, testLogger())
	assert.Error(t, err)
}

func TestIssue_EventScenario(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)
	m := parcel()

	cert, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, m)
	require.NoError(t, err)

	assert.Equal(t, id, cert.ID)
	assert.Equal(t, ownerAddr, cert.Owner)
	assert.Equal(t, descriptor.Render(m), cert.Descriptor)

	doc, err := descriptor.Decode(cert.Descriptor)
	require.NoError(t, err)
	yield, ok := doc.Attribute(descriptor.TraitYieldPotential)
	require.True(t, ok)
	assert.Equal(t, "1500 kg per year", yield)
	survey, ok := doc.Attribute(descriptor.TraitLastSurveyDate)
	require.True(t, ok)
	assert.Equal(t, "1700000000", survey)

	// The attached descriptor is the one returned.
	attached, err := env.registry.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.Descriptor, attached)

	// Exactly one Created event carrying the full record.
	recs := env.recorder.For(id)
	require.Len(t, recs, 1)
	assert.Equal(t, events.KindCreated, recs[0].Kind)
	assert.Equal(t, m, recs[0].Created.Metadata)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.CertificatesIssued))
}

func TestIssue_BindsDeterministicAccount(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)

	cert, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, parcel())
	require.NoError(t, err)

	expected, err := accounts.ComputeAddress(factoryAddr, interfaces.AccountRequest{
		Implementation: implementationAddr,
		ChainID:        big.NewInt(1),
		TokenContract:  tokenContractAddr,
		TokenID:        id,
	})
	require.NoError(t, err)
	assert.Equal(t, expected, cert.BoundAccount)
	assert.True(t, env.factory.Created(expected))

	stored, err := env.registry.BoundAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, expected, stored)

	// Updating metadata never re-provisions or reassigns the account.
	require.NoError(t, env.registry.Update(ctx, env.admin, id, interfaces.LandMetadata{Name: "renamed"}))
	stored, err = env.registry.BoundAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, expected, stored)
	assert.Equal(t, 1, env.factory.Count())
}

func TestIssue_Authorization(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	id := interfaces.NewCertificateID(1)

	_, err := env.registry.Issue(context.Background(), interfaces.NewCredential(strangerAddr), id, ownerAddr, parcel())
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	assertNoTrace(t, env, id)
	assert.Empty(t, env.recorder.Records())
	assert.Equal(t, 0, env.factory.Count())
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.Failures.WithLabelValues(opIssue, metrics.FailureUnauthorized)))
}

func TestIssue_NoDoubleIssuance(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(7)
	first := parcel()

	cert, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, first)
	require.NoError(t, err)

	second := parcel()
	second.Name = "Impostor"
	_, err = env.registry.Issue(ctx, env.admin, id, strangerAddr, second)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	got, err := env.registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	owner, err := env.registry.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	desc, err := env.registry.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.Descriptor, desc)

	assert.Len(t, env.recorder.Records(), 1)
}

func TestIssue_BindingFailureRollsBack(t *testing.T) {
	binder := &accounts.MockAccountBinder{}
	env := setupRegistry(t, binder, nil)
	id := interfaces.NewCertificateID(42)

	cause := errors.New("execution reverted")
	binder.On("Bind", mock.Anything, id).Return(common.Address{}, cause).Once()

	_, err := env.registry.Issue(context.Background(), env.admin, id, ownerAddr, parcel())
	assert.ErrorIs(t, err, interfaces.ErrBindingFailed)
	assert.ErrorIs(t, err, cause)

	assertNoTrace(t, env, id)
	assert.Empty(t, env.recorder.Records())
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.Failures.WithLabelValues(opIssue, metrics.FailureBinding)))
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.CertificatesIssued))
	binder.AssertExpectations(t)
}

func TestIssue_RetryAfterBindingFailure(t *testing.T) {
	binder := &accounts.MockAccountBinder{}
	env := setupRegistry(t, binder, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(5)
	account := common.HexToAddress("0x00000000000000000000000000000000000000b1")

	binder.On("Bind", mock.Anything, id).Return(common.Address{}, interfaces.ErrBindingFailed).Once()
	binder.On("Bind", mock.Anything, id).Return(account, nil).Once()

	_, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, parcel())
	require.ErrorIs(t, err, interfaces.ErrBindingFailed)

	cert, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, parcel())
	require.NoError(t, err)
	assert.Equal(t, account, cert.BoundAccount)
	binder.AssertExpectations(t)
}

func TestIssue_EventSinkFailureRollsBack(t *testing.T) {
	sink := &events.MockEventSink{}
	env := setupRegistry(t, nil, sink)
	id := interfaces.NewCertificateID(9)

	sink.On("Created", mock.Anything, mock.Anything).Return(errors.New("broker unavailable")).Once()

	_, err := env.registry.Issue(context.Background(), env.admin, id, ownerAddr, parcel())
	assert.Error(t, err)

	assertNoTrace(t, env, id)
	sink.AssertExpectations(t)
}

// failingStore fails every Put after the first n.
type failingStore struct {
	*storage.MemoryStore
	mutex sync.Mutex
	puts  int
	n     int
}

func (s *failingStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.puts++
	if s.puts > s.n {
		return errors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, record)
}

func TestIssue_StoreFailureRollsBack(t *testing.T) {
	for _, n := range []int{0, 1} {
		guard, err := access.NewSingleAdmin(adminAddr)
		require.NoError(t, err)

		ledger := ownership.NewLedger()
		store := &failingStore{MemoryStore: storage.NewMemoryStore(), n: n}
		recorder := events.NewRecorder()
		reg, err := NewLandRegistry(guard, ledger, store, newBinder(t, accounts.NewLocalFactory(factoryAddr, testLogger())), testLogger(),
			WithEventSink(recorder))
		require.NoError(t, err)

		id := interfaces.NewCertificateID(3)
		_, err = reg.Issue(context.Background(), interfaces.NewCredential(adminAddr), id, ownerAddr, parcel())
		require.Error(t, err)

		assert.Equal(t, 0, ledger.TotalSupply())
		assert.Equal(t, 0, store.Len())
		assert.Empty(t, recorder.Records())
	}
}

func TestIssue_InvalidRecipient(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	id := interfaces.NewCertificateID(11)

	_, err := env.registry.Issue(context.Background(), env.admin, id, common.Address{}, parcel())
	assert.ErrorIs(t, err, ownership.ErrInvalidRecipient)
	assertNoTrace(t, env, id)
}

func TestUpdate_ReplacesWholeRecord(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)

	_, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, parcel())
	require.NoError(t, err)

	// Only two fields set: every other field must come back empty, not merged.
	next := interfaces.LandMetadata{
		Location:       "Tabanan, Bali",
		YieldPotential: 2100,
	}
	require.NoError(t, env.registry.Update(ctx, env.admin, id, next))

	got, err := env.registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	desc, err := env.registry.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, descriptor.Render(next), desc)

	recs := env.recorder.For(id)
	require.Len(t, recs, 2)
	assert.Equal(t, events.KindMetadataUpdated, recs[1].Kind)
	assert.Equal(t, interfaces.MetadataUpdatedEvent{
		ID:             id,
		Location:       "Tabanan, Bali",
		YieldPotential: 2100,
	}, *recs[1].Updated)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.CertificatesUpdated))
}

func TestUpdate_EventCarriesDescriptiveFieldsOnly(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)

	_, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, parcel())
	require.NoError(t, err)

	next := parcel()
	next.Name = "South Field"
	next.SoilType = "Clay"
	require.NoError(t, env.registry.Update(ctx, env.admin, id, next))

	ev := env.recorder.For(id)[1].Updated
	require.NotNil(t, ev)
	assert.Equal(t, "Clay", ev.SoilType)
	assert.Equal(t, next.Location, ev.Location)
	assert.Equal(t, next.GPSCoordinates, ev.GPSCoordinates)
	assert.Equal(t, next.Area, ev.Area)
	assert.Equal(t, next.Ownership, ev.Ownership)
	assert.Equal(t, next.WaterSource, ev.WaterSource)
	assert.Equal(t, next.YieldPotential, ev.YieldPotential)
	assert.Equal(t, next.LastSurveyDate, ev.LastSurveyDate)
}

func TestUpdate_Errors(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)

	err := env.registry.Update(ctx, env.admin, id, parcel())
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	original := parcel()
	_, err = env.registry.Issue(ctx, env.admin, id, ownerAddr, original)
	require.NoError(t, err)

	err = env.registry.Update(ctx, interfaces.NewCredential(strangerAddr), id, interfaces.LandMetadata{Name: "hijacked"})
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	got, err := env.registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, original, got)
	assert.Len(t, env.recorder.Records(), 1)
}

func TestUpdate_EventSinkFailureRestoresPrevious(t *testing.T) {
	sink := &events.MockEventSink{}
	env := setupRegistry(t, nil, sink)
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)
	original := parcel()

	sink.On("Created", mock.Anything, mock.Anything).Return(nil).Once()
	sink.On("MetadataUpdated", mock.Anything, mock.Anything).Return(errors.New("broker unavailable")).Once()

	cert, err := env.registry.Issue(ctx, env.admin, id, ownerAddr, original)
	require.NoError(t, err)

	err = env.registry.Update(ctx, env.admin, id, interfaces.LandMetadata{Name: "lost"})
	require.Error(t, err)

	got, err := env.registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, original, got)

	desc, err := env.registry.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.Descriptor, desc)

	account, err := env.registry.BoundAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.BoundAccount, account)
	sink.AssertExpectations(t)
}

func TestReads_NotFound(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	ctx := context.Background()
	id := interfaces.NewCertificateID(1000)

	_, err := env.registry.Get(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = env.registry.Descriptor(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = env.registry.BoundAccount(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = env.registry.Owner(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestWithRenderer(t *testing.T) {
	guard, err := access.NewSingleAdmin(adminAddr)
	require.NoError(t, err)

	renderer := descriptor.NewRenderer(
		descriptor.WithDateFormatter(descriptor.CalendarDateFormatter{}),
		descriptor.WithEscaping(),
	)
	reg, err := NewLandRegistry(guard, ownership.NewLedger(), storage.NewMemoryStore(),
		newBinder(t, accounts.NewLocalFactory(factoryAddr, testLogger())), testLogger(),
		WithRenderer(renderer))
	require.NoError(t, err)

	m := parcel()
	m.Description = `the "upper" terrace`
	cert, err := reg.Issue(context.Background(), interfaces.NewCredential(adminAddr), interfaces.NewCertificateID(1), ownerAddr, m)
	require.NoError(t, err)

	doc, err := descriptor.Decode(cert.Descriptor)
	require.NoError(t, err)
	assert.Equal(t, m.Description, doc.Description)
	survey, _ := doc.Attribute(descriptor.TraitLastSurveyDate)
	assert.Equal(t, "2023-11-14", survey)
}

func TestIssue_ConcurrentSameID(t *testing.T) {
	env := setupRegistry(t, nil, nil)
	id := interfaces.NewCertificateID(77)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.registry.Issue(context.Background(), env.admin, id, ownerAddr, parcel())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, env.recorder.For(id), 1)
	assert.Equal(t, uint64(1), env.ledger.BalanceOf(ownerAddr))
}

// newPersistentRegistry wires a registry whose ownership lives in a file store under dir,
// the way the server wires it.
func newPersistentRegistry(t *testing.T, dir string, binder interfaces.AccountBinder) (*LandRegistry, *storage.FileStore) {
	t.Helper()

	guard, err := access.NewSingleAdmin(adminAddr)
	require.NoError(t, err)
	store, err := storage.NewFileStore(dir, testLogger())
	require.NoError(t, err)
	if binder == nil {
		binder = newBinder(t, accounts.NewLocalFactory(factoryAddr, testLogger()))
	}

	reg, err := NewLandRegistry(guard, ownership.NewStoreLedger(store, testLogger()), store, binder, testLogger())
	require.NoError(t, err)
	return reg, store
}

func TestRestart_CertificatesSurvive(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	admin := interfaces.NewCredential(adminAddr)
	id := interfaces.NewCertificateID(42)

	reg, _ := newPersistentRegistry(t, dir, nil)
	cert, err := reg.Issue(ctx, admin, id, ownerAddr, parcel())
	require.NoError(t, err)

	restarted, _ := newPersistentRegistry(t, dir, nil)

	got, err := restarted.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, parcel(), got)

	owner, err := restarted.Owner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	desc, err := restarted.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.Descriptor, desc)

	account, err := restarted.BoundAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.BoundAccount, account)

	_, err = restarted.Issue(ctx, admin, id, strangerAddr, parcel())
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	next := interfaces.LandMetadata{Name: "South Field"}
	require.NoError(t, restarted.Update(ctx, admin, id, next))

	again, _ := newPersistentRegistry(t, dir, nil)
	got, err = again.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, next, got)
	desc, err = again.Descriptor(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, descriptor.Render(next), desc)
	account, err = again.BoundAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cert.BoundAccount, account)
}

func TestRestart_FailedIssueLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	id := interfaces.NewCertificateID(42)

	binder := &accounts.MockAccountBinder{}
	binder.On("Bind", mock.Anything, id).Return(common.Address{}, errors.New("execution reverted")).Once()

	reg, store := newPersistentRegistry(t, dir, binder)
	_, err := reg.Issue(ctx, interfaces.NewCredential(adminAddr), id, ownerAddr, parcel())
	require.ErrorIs(t, err, interfaces.ErrBindingFailed)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)

	restarted, _ := newPersistentRegistry(t, dir, nil)
	_, err = restarted.Issue(ctx, interfaces.NewCredential(adminAddr), id, ownerAddr, parcel())
	assert.NoError(t, err)
	binder.AssertExpectations(t)
}

// offlineStore is a MemoryStore that reports itself unavailable while down is set.
type offlineStore struct {
	*storage.MemoryStore
	down bool
}

func (s *offlineStore) Available(ctx context.Context) bool {
	return !s.down
}

func TestIssue_ReplicatedStoreFailuresLeaveNoReplicaBehind(t *testing.T) {
	ctx := context.Background()
	admin := interfaces.NewCredential(adminAddr)
	guard, err := access.NewSingleAdmin(adminAddr)
	require.NoError(t, err)

	t.Run("partial write is rolled back", func(t *testing.T) {
		healthy := storage.NewMemoryStore()
		broken := &failingStore{MemoryStore: storage.NewMemoryStore()}
		multi := storage.NewMultiStore([]interfaces.MetadataStore{healthy, broken}, testLogger())

		reg, err := NewLandRegistry(guard, ownership.NewStoreLedger(multi, testLogger()), multi,
			newBinder(t, accounts.NewLocalFactory(factoryAddr, testLogger())), testLogger())
		require.NoError(t, err)

		id := interfaces.NewCertificateID(5)
		_, err = reg.Issue(ctx, admin, id, ownerAddr, parcel())
		require.Error(t, err)
		assert.Equal(t, 0, healthy.Len())
		assert.Equal(t, 0, broken.Len())
	})

	t.Run("update with a replica down keeps replicas equal", func(t *testing.T) {
		first := &offlineStore{MemoryStore: storage.NewMemoryStore()}
		second := &offlineStore{MemoryStore: storage.NewMemoryStore()}
		multi := storage.NewMultiStore([]interfaces.MetadataStore{first, second}, testLogger())

		reg, err := NewLandRegistry(guard, ownership.NewStoreLedger(multi, testLogger()), multi,
			newBinder(t, accounts.NewLocalFactory(factoryAddr, testLogger())), testLogger())
		require.NoError(t, err)

		id := interfaces.NewCertificateID(6)
		_, err = reg.Issue(ctx, admin, id, ownerAddr, parcel())
		require.NoError(t, err)

		second.down = true
		err = reg.Update(ctx, admin, id, interfaces.LandMetadata{Location: "NEW"})
		assert.ErrorIs(t, err, interfaces.ErrStoreUnavailable)
		second.down = false

		a, err := first.Get(ctx, id)
		require.NoError(t, err)
		b, err := second.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, parcel(), a.Metadata)

		require.NoError(t, reg.Update(ctx, admin, id, interfaces.LandMetadata{Location: "NEW"}))
		got, err := reg.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "NEW", got.Location)
	})
}

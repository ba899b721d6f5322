// Package registry implements the land certificate registry.
//
// A LandRegistry issues certificates representing land parcels. Every certificate has
// one metadata record, a descriptor rendered from that record and attached to the
// certificate, and a bound account provisioned through an ERC-6551 account factory.
//
// The registry composes its collaborators and does not reimplement them:
//
//   - interfaces.AccessGuard decides who may issue and update
//   - interfaces.OwnershipLedger records owners and descriptors
//   - interfaces.MetadataStore persists records
//   - interfaces.AccountBinder provisions bound accounts
//   - interfaces.EventSink receives Created and MetadataUpdated notifications
//
// # Atomicity
//
// Issue and Update are serialized and either complete or leave no trace. Each step that
// changes state registers a compensating action; when a later step fails (including a
// failed account binding or a failing event sink) the compensations run in reverse order.
// Bound accounts are derived deterministically, so an account created by a factory
// before a rollback is the same account a later successful issuance of that ID binds to.
//
// # Usage Example
//
//	guard, _ := access.NewSingleAdmin(adminAddress)
//	binder, _ := accounts.NewBinder(factory, accounts.BinderConfig{
//	    TokenContract:  registryAddress,
//	    Implementation: implementationAddress,
//	    ChainID:        chainID,
//	}, logger)
//
//	reg, err := registry.NewLandRegistry(guard, ownership.NewLedger(), storage.NewMemoryStore(), binder, logger,
//	    registry.WithEventSink(events.NewLogSink(logger)),
//	)
//
//	cert, err := reg.Issue(ctx, interfaces.NewCredential(adminAddress), interfaces.NewCertificateID(42), owner, metadata)
package registry

// Package main (cmd/httpserver) runs the land certificate registry server.
//
// The server exposes the registry over HTTP. Administrator requests (issue and
// update) must be signed with the configured administrator key; reads are open.
//
// Token-bound accounts are provisioned in one of two ways:
//
//   - Without --rpc-addr the accounts are derived locally with the ERC-6551
//     CREATE2 formula. Nothing is deployed. Suitable for development.
//
//   - With --rpc-addr the server calls createAccount on the configured account
//     registry contract, paying with --factory-key, and waits for the transaction
//     to be mined. Accounts that already hold code are returned without a transaction.
//
// Certificate metadata is persisted to every --store location (memory://, file://,
// redis:// or s3://). Every flag can also be set through its environment variable
// or a .env file in the working directory.
package main

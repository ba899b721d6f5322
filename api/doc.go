/*
Package api defines the HTTP API of the land certificate registry.

The types in this package are shared by the server (package httpserver) and the Go
client (package api/clients).

# Endpoints

Administrator endpoints require a request signature:

	POST /api/admin/certificates        issue a certificate (IssueRequest)
	PUT  /api/admin/certificates/{id}   replace the metadata of a certificate (UpdateRequest)

Public endpoints:

	GET /api/certificates/{id}              metadata of a certificate
	GET /api/certificates/{id}/descriptor   attached descriptor, raw and decoded
	GET /api/certificates/{id}/account      bound account address

Certificate IDs in paths are decimal or 0x-prefixed hex.

# Authentication

Administrator requests carry the X-Flashbots-Signature header produced by
github.com/flashbots/go-utils/signature: the signer address and a secp256k1 signature
over the request body. The recovered address is the caller credential the registry
checks against the configured administrator.

# Errors

Failures are returned as ErrorResponse with the status code derived from the
registry error: 403 not authorized, 404 not found, 409 already exists, 502 account
binding failed, 400 malformed request.
*/
package api

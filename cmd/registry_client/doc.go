// Package main (cmd/registry_client) is a command-line client for the land certificate registry API.
//
// The client supports the following commands:
//
//	issue          - Issue a certificate for --id to --recipient with the metadata
//	                 read from --metadata. Requires --admin-key.
//	update         - Replace the metadata of an existing certificate. Requires --admin-key.
//	get            - Print the stored metadata of a certificate.
//	descriptor     - Print the base64 data URI of a certificate together with the
//	                 decoded JSON document.
//	account        - Print the token-bound account of a certificate.
//	derive-account - Compute the token-bound account address offline, without a
//	                 server or node.
//
// Metadata files hold a single JSON object with the parcel fields, for example:
//
//	{"name": "North Field", "location": "Ubud", "yieldPotential": 1500, "lastSurveyDate": 1700000000}
package main

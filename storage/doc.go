// Package storage persists certificate records with pluggable backends.
//
// Every issued certificate has exactly one record: its metadata and the address of its
// bound account. Records are stored as JSON keyed by the 32-byte certificate ID:
//
//   - Memory storage for tests and single-process deployments
//   - File system storage for local development
//   - Redis storage for shared deployments
//   - S3-compatible storage for cloud deployments
//   - IPFS mutable file system storage for content-addressed publication
//
// # Storage URI Format
//
// Stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - memory://
//   - file:///var/lib/land-registry/
//   - redis://:password@redis.example.com:6379/0?prefix=land
//   - s3://ACCESS_KEY:SECRET_KEY@bucket-name/prefix/?region=us-west-2&endpoint=minio:9000
//   - ipfs://localhost:5001/land-registry?timeout=30s
//
// # Replication
//
// A MultiStore writes every record to all available stores and reads from the first
// store that holds it:
//
//	factory := storage.NewStoreFactory(logger)
//	store, err := factory.CreateMultiStore([]string{
//	    "file:///var/lib/land-registry",
//	    "redis://localhost:6379/0",
//	})
package storage

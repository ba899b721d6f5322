package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// StoreFactory creates metadata stores from URI strings and manages
// multi-store configurations for redundant storage.
type StoreFactory struct {
	log *slog.Logger
}

// NewStoreFactory creates a new factory instance.
func NewStoreFactory(logger *slog.Logger) *StoreFactory {
	return &StoreFactory{
		log: logger,
	}
}

// StoreFor creates a metadata store from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - memory:// - In-process storage
//   - file:// - Local filesystem storage
//   - redis:// and rediss:// - Redis server
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - Mutable file system of an IPFS node
//
// Returns an error wrapping ErrInvalidLocationURI if the URI is invalid or the scheme is unsupported.
func (sf *StoreFactory) StoreFor(locationURI string) (interfaces.MetadataStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return sf.createFileStore(u)
	case "redis", "rediss":
		return sf.createRedisStore(u)
	case "s3":
		return sf.createS3Store(u)
	case "ipfs":
		return sf.createIPFSStore(u)
	default:
		return nil, fmt.Errorf("%w: unsupported store scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiStore creates a replicated store from a list of location URIs.
// Invalid URIs are logged and skipped. Returns an error if no store could be created.
func (sf *StoreFactory) CreateMultiStore(locationURIs []string) (interfaces.MetadataStore, error) {
	stores := make([]interfaces.MetadataStore, 0, len(locationURIs))

	for _, uri := range locationURIs {
		store, err := sf.StoreFor(uri)
		if err != nil {
			sf.log.Warn("Failed to create metadata store",
				"err", err,
				slog.String("locationURI", uri))
			continue
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no valid metadata stores created")
	}
	if len(stores) == 1 {
		return stores[0], nil
	}

	return NewMultiStore(stores, sf.log), nil
}

// createRedisStore creates a Redis store.
// URI format: redis://[:password@]host:port/db?prefix=land
func (sf *StoreFactory) createRedisStore(u *url.URL) (interfaces.MetadataStore, error) {
	sf.log.Debug("Creating redis store", slog.String("host", u.Host))

	query := u.Query()
	prefix := query.Get("prefix")
	query.Del("prefix")

	clean := *u
	clean.RawQuery = query.Encode()

	return NewRedisStore(clean.String(), prefix, sf.log)
}

// createS3Store creates an S3 or S3-compatible store.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func (sf *StoreFactory) createS3Store(u *url.URL) (interfaces.MetadataStore, error) {
	bucketName := u.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing bucket in %s", interfaces.ErrInvalidLocationURI, u.Redacted())
	}

	sf.log.Debug("Creating S3 store", slog.String("uri", u.Redacted()))

	prefix := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey, sf.log)
}

// createIPFSStore creates an IPFS store.
// URI format: ipfs://host:port/mfs/root?timeout=30s
func (sf *StoreFactory) createIPFSStore(u *url.URL) (interfaces.MetadataStore, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing IPFS API address in %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	var timeout time.Duration
	if raw := u.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout %q", interfaces.ErrInvalidLocationURI, raw)
		}
		timeout = parsed
	}

	sf.log.Debug("Creating IPFS store", slog.String("host", u.Host))
	return NewIPFSStore(u.Host, u.Path, timeout, sf.log), nil
}

// createFileStore creates a file system store.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StoreFactory) createFileStore(u *url.URL) (interfaces.MetadataStore, error) {
	sf.log.Debug("Creating file store", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileStore(path, sf.log)
}

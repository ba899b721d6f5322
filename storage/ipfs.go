package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// DefaultIPFSRoot is the MFS directory records are written under when the URI sets none.
const DefaultIPFSRoot = "/land-registry"

// IPFSStore implements a metadata store on the mutable file system (MFS) of an IPFS node.
// Records are written to <root>/<hex id>.json, so every update produces a new CID
// while the path stays stable.
type IPFSStore struct {
	shell       *shell.Shell
	apiAddr     string
	root        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSStore creates a store talking to the IPFS API at host:port.
func NewIPFSStore(apiAddr, root string, timeout time.Duration, log *slog.Logger) *IPFSStore {
	if root == "" {
		root = DefaultIPFSRoot
	}
	root = "/" + strings.Trim(root, "/")

	sh := shell.NewShell(apiAddr)
	if timeout > 0 {
		sh.SetTimeout(timeout)
	}

	return &IPFSStore{
		shell:       sh,
		apiAddr:     apiAddr,
		root:        root,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s%s", apiAddr, root),
	}
}

// Get implements interfaces.MetadataStore.
func (s *IPFSStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	start := time.Now()
	filePath := s.getFilePath(id)

	reader, err := s.shell.FilesRead(ctx, filePath)
	if err != nil {
		if isIPFSNotFound(err) {
			return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
		}
		s.log.Error("Failed to read record from IPFS",
			slog.String("path", filePath),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to read record from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to read record from IPFS: %w", err)
	}

	s.log.Debug("Fetched record from IPFS",
		slog.String("path", filePath),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return decodeRecord(data)
}

// Put implements interfaces.MetadataStore.
func (s *IPFSStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	filePath := s.getFilePath(record.ID)
	err = s.shell.FilesWrite(ctx, filePath, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true))
	if err != nil {
		return fmt.Errorf("failed to write record to IPFS: %w", err)
	}

	s.log.Debug("Stored record in IPFS",
		slog.String("path", filePath),
		slog.Int("size", len(data)))
	return nil
}

// Delete implements interfaces.MetadataStore. Removing a missing record is not an error.
func (s *IPFSStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	err := s.shell.FilesRm(ctx, s.getFilePath(id), true)
	if err != nil && !isIPFSNotFound(err) {
		return fmt.Errorf("failed to remove record from IPFS: %w", err)
	}
	return nil
}

// Available checks if the IPFS node is accessible.
func (s *IPFSStore) Available(ctx context.Context) bool {
	return s.shell.IsUp()
}

// Name returns a unique identifier for this store.
func (s *IPFSStore) Name() string {
	return "ipfs-" + s.apiAddr
}

// LocationURI returns the URI that identifies this store.
func (s *IPFSStore) LocationURI() string {
	return s.locationURI
}

func (s *IPFSStore) getFilePath(id interfaces.CertificateID) string {
	return path.Join(s.root, recordKey(id)+".json")
}

func isIPFSNotFound(err error) bool {
	return strings.Contains(err.Error(), "does not exist")
}

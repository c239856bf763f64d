// Package metadata computes content digests for exported documents and
// reads and writes the sidecar files that carry them.
package metadata

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Algorithm prefixes every digest string.
const Algorithm = "sha256"

// SidecarExt is appended to a document's file name to name its sidecar.
const SidecarExt = ".meta"

// Metadata verification errors.
var (
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrMalformedDigest = errors.New("malformed digest")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes one exported document.
type Metadata struct {
	LastModify time.Time
	File       string
	Hash       string
	Format     string
	RequestID  string
	Size       int64
}

// CalculateHash returns the hex SHA-256 of content.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// Digest returns the prefixed digest of content, e.g. "sha256:ab12...".
func Digest(content []byte) string {
	return Algorithm + ":" + CalculateHash(content)
}

// Verify checks content against a digest produced by Digest.
func Verify(content []byte, digest string) (bool, error) {
	if digest == "" {
		return false, ErrNoHashFound
	}

	algo, want, ok := strings.Cut(digest, ":")
	if !ok || algo != Algorithm || len(want) != sha256.Size*2 {
		return false, fmt.Errorf("%w: %q", ErrMalformedDigest, digest)
	}

	calculated := CalculateHash(content)
	if calculated != strings.ToLower(want) {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, want, calculated)
	}

	return true, nil
}

// Sign builds the metadata of a document written at the given time.
func Sign(file, format, requestID string, content []byte, at time.Time) *Metadata {
	return &Metadata{
		LastModify: at.UTC(),
		File:       file,
		Hash:       Digest(content),
		Format:     format,
		RequestID:  requestID,
		Size:       int64(len(content)),
	}
}

// Encode renders the sidecar file body.
func (m *Metadata) Encode() []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "FILE: %s\n", m.File)
	fmt.Fprintf(&b, "FORMAT: %s\n", m.Format)
	fmt.Fprintf(&b, "SIZE: %d\n", m.Size)
	fmt.Fprintf(&b, "LAST_MODIFY: %s\n", m.LastModify.Format(time.RFC3339))

	if m.RequestID != "" {
		fmt.Fprintf(&b, "REQUEST_ID: %s\n", m.RequestID)
	}

	fmt.Fprintf(&b, "HASH: %s\n", m.Hash)

	return b.Bytes()
}

// Extract parses a sidecar file body. Unknown keys are ignored.
func Extract(sidecar []byte) (*Metadata, error) {
	meta := &Metadata{}

	scanner := bufio.NewScanner(bytes.NewReader(sidecar))
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "FILE":
			meta.File = val
		case "FORMAT":
			meta.Format = val
		case "SIZE":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				meta.Size = n
			}
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "REQUEST_ID":
			meta.RequestID = val
		case "HASH":
			meta.Hash = val
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	if meta.Hash == "" {
		return nil, ErrNoHashFound
	}

	return meta, nil
}

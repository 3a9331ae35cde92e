package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(m mindmap.MindMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a validated snapshot.
func Unmarshal(data []byte) (mindmap.MindMap, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(m mindmap.MindMap, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(m, f)
}

// Write writes a snapshot as JSON to an io.Writer.
func Write(m mindmap.MindMap, w io.Writer) error {
	return writeTo(m, w)
}

// ReadFile reads a JSON file and returns the decoded snapshot.
// Returns validation errors for malformed snapshots.
func ReadFile(path string) (mindmap.MindMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return mindmap.MindMap{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON snapshot from an io.Reader.
func Read(r io.Reader) (mindmap.MindMap, error) {
	return readFrom(r)
}

// Fingerprint returns a SHA-256 hex digest of the snapshot's content:
// structure, metadata, positions, pins and selection. The version counter is
// excluded, so two snapshots with equal content share a fingerprint.
func Fingerprint(m mindmap.MindMap) string {
	out := FromMindMap(m)
	out.Version = 0
	data, _ := json.Marshal(out)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(m mindmap.MindMap, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromMindMap(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (mindmap.MindMap, error) {
	var data MindMap
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return mindmap.MindMap{}, fmt.Errorf("decode: %w", err)
	}
	return ToMindMap(data)
}

package manifest

import (
	"image"

	"github.com/AnyUserName/imgforge/internal/codec"
)

// Manifest is the serialized output of one resource-encoding run: an
// ordered mapping of logical names to encoded image payloads, loadable
// without the original source tree. Entry order is the deterministic
// directory traversal order, and the file carries no run-varying fields,
// so encoding an unchanged tree twice is byte-identical.
type Manifest struct {
	Version int     `json:"version"`
	Quality int     `json:"quality"`
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

// Entry is one embedded resource.
type Entry struct {
	// Name is the logical resource name: the source path relative to the
	// encode root, slash-separated, without extension. Unique per run.
	Name string `json:"name"`

	// Format is the payload's encoded format; OriginalFormat is the
	// source file's format before re-compression.
	Format         string `json:"format"`
	OriginalFormat string `json:"original_format"`

	// Width and Height are the source image dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Quality is the compression quality the payload was encoded at.
	// Lossless formats record it but ignored it during encoding.
	Quality int `json:"quality"`

	SourceSize int64  `json:"source_size"` // source file length in bytes
	Size       int64  `json:"size"`        // payload length in bytes
	Hash       string `json:"hash"`        // first 16 hex chars of xxhash64 of payload

	// Data is the encoded image payload (base64 in JSON).
	Data []byte `json:"data"`
}

// Decode re-materializes the entry's payload into a pixel buffer.
func (e *Entry) Decode() (image.Image, error) {
	img, _, err := codec.DecodeBytes(e.Data)
	return img, err
}

// Stats aggregates encoding metrics.
type Stats struct {
	TotalEntries      int   `json:"total_entries"`
	TotalSourceBytes  int64 `json:"total_source_bytes"`
	TotalPayloadBytes int64 `json:"total_payload_bytes"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sample() *Manifest {
	m := New(85)
	m.Append(Entry{
		Name:           "icons/save",
		Format:         "png",
		OriginalFormat: "png",
		Width:          32, Height: 32,
		Quality:    85,
		SourceSize: 1200,
		Size:       4,
		Hash:       "abcd1234abcd1234",
		Data:       []byte{0x89, 0x50, 0x4e, 0x47},
	})
	m.Append(Entry{
		Name:           "splash",
		Format:         "jpeg",
		OriginalFormat: "jpeg",
		Width:          800, Height: 600,
		Quality:    85,
		SourceSize: 100000,
		Size:       3,
		Hash:       "1111222233334444",
		Data:       []byte{0xff, 0xd8, 0xff},
	})
	return m
}

func TestManifestRoundtrip(t *testing.T) {
	m := sample()

	dir := t.TempDir()
	path := filepath.Join(dir, "imgforge.manifest.json")
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	m2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Quality != 85 {
		t.Errorf("quality: got %d", m2.Quality)
	}
	if len(m2.Entries) != 2 {
		t.Fatalf("entries: got %d", len(m2.Entries))
	}

	e, ok := m2.Lookup("icons/save")
	if !ok {
		t.Fatal("entry icons/save missing")
	}
	if e.Format != "png" || e.Width != 32 || e.Height != 32 {
		t.Errorf("entry fields: %+v", e)
	}
	if !bytes.Equal(e.Data, []byte{0x89, 0x50, 0x4e, 0x47}) {
		t.Errorf("payload survived roundtrip wrong: %v", e.Data)
	}

	// Entry order is preserved.
	if m2.Entries[0].Name != "icons/save" || m2.Entries[1].Name != "splash" {
		t.Errorf("entry order: %q, %q", m2.Entries[0].Name, m2.Entries[1].Name)
	}

	if m2.Stats.TotalEntries != 2 {
		t.Errorf("total_entries: got %d", m2.Stats.TotalEntries)
	}
	if m2.Stats.TotalPayloadBytes != 7 {
		t.Errorf("total_payload_bytes: got %d", m2.Stats.TotalPayloadBytes)
	}
}

// The manifest carries no run-varying fields, so serializing the same
// content twice is byte-identical.
func TestWriteJSONDeterministic(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.json")
	p2 := filepath.Join(dir, "b.json")

	if err := WriteJSON(sample(), p1); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteJSON(sample(), p2); err != nil {
		t.Fatalf("write: %v", err)
	}

	d1, _ := os.ReadFile(p1)
	d2, _ := os.ReadFile(p2)
	if !bytes.Equal(d1, d2) {
		t.Fatal("two writes of the same manifest differ")
	}
}

func TestReadJSONRejectsUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "future.json")
	os.WriteFile(path, []byte(`{"version": 99, "quality": 85, "entries": [], "stats": {}}`), 0o644)

	if _, err := ReadJSON(path); err == nil {
		t.Fatal("expected version error")
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"quality": 85,
		"future_field": "should be ignored",
		"entries": [
			{ "name": "a", "format": "png", "original_format": "png",
			  "width": 1, "height": 1, "quality": 85, "source_size": 10,
			  "size": 1, "hash": "00", "data": "AA==", "new_flag": true }
		],
		"stats": { "total_entries": 1, "total_source_bytes": 10, "total_payload_bytes": 1, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 || len(m.Entries) != 1 {
		t.Errorf("parsed wrong: version=%d entries=%d", m.Version, len(m.Entries))
	}
}

func TestLookupMissing(t *testing.T) {
	m := sample()
	if _, ok := m.Lookup("nope"); ok {
		t.Fatal("lookup of missing name succeeded")
	}
}

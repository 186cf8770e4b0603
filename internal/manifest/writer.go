package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// New creates an empty manifest for one encoding run.
func New(quality int) *Manifest {
	return &Manifest{
		Version: SupportedManifestVersion,
		Quality: quality,
	}
}

// Append adds an entry, preserving insertion order.
func (m *Manifest) Append(e Entry) {
	m.Entries = append(m.Entries, e)
}

// Lookup returns the entry with the given logical name.
func (m *Manifest) Lookup(name string) (*Entry, bool) {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// ComputeStats recalculates aggregate statistics from entries.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalEntries = len(m.Entries)
	for _, e := range m.Entries {
		s.TotalSourceBytes += e.SourceSize
		s.TotalPayloadBytes += e.Size
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to path. Output is a pure function of
// the manifest content: repeated runs over unchanged input produce
// byte-identical files.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest from path, rejecting unsupported schema
// versions. Loading needs neither the encoder nor the source files.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version != SupportedManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version: %d", m.Version)
	}
	return &m, nil
}

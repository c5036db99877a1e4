// SPDX-License-Identifier: EPL-2.0

package store

import (
	"encoding/json"
	"fmt"
	"time"
)

type OriginKind string

const (
	OriginLocal  OriginKind = "local"
	OriginRemote OriginKind = "remote"
)

// Origin says where an override's audio came from. Locator is the source
// path for local overrides and the fetched URL for remote ones.
type Origin struct {
	Kind    OriginKind `json:"kind"`
	Locator string     `json:"locator"`
	ID      string     `json:"id,omitempty"`
}

type MetadataEntry struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Record is one persisted override.
type Record struct {
	Name      string          `json:"name"`
	Origin    Origin          `json:"origin"`
	Extension string          `json:"extension"`
	Metadata  []MetadataEntry `json:"metadata,omitempty"`
}

// Meta returns the first metadata text under label.
func (r Record) Meta(label string) string {
	for _, m := range r.Metadata {
		if m.Label == label {
			return m.Text
		}
	}
	return ""
}

// Same reports whether a and b select the same override. Identity is name
// plus origin; metadata does not count. Two nil records are the same.
func Same(a, b *Record) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Origin == b.Origin
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding record %s: %w", r.Name, err)
	}
	return string(b), nil
}

func decodeRecord(s string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	if r.Name == "" || r.Extension == "" {
		return Record{}, fmt.Errorf("decoding record: missing name or extension")
	}
	return r, nil
}

// Remote describes a search hit or preset entry to fetch.
type Remote struct {
	ID          string
	Name        string
	URL         string
	Duration    time.Duration
	Uploader    string
	UploaderURL string
}

func (r Remote) metadata() []MetadataEntry {
	md := []MetadataEntry{{Label: "Url", Text: r.URL}}
	if r.Name != "" {
		md = append(md, MetadataEntry{Label: "Name", Text: r.Name})
	}
	if r.Duration > 0 {
		md = append(md, MetadataEntry{Label: "Duration", Text: r.Duration.String()})
	}
	if r.Uploader != "" {
		md = append(md, MetadataEntry{Label: "Uploader", Text: r.Uploader})
	}
	if r.UploaderURL != "" {
		md = append(md, MetadataEntry{Label: "Uploader url", Text: r.UploaderURL})
	}
	return md
}

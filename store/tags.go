// SPDX-License-Identifier: EPL-2.0

package store

import (
	"os"

	"github.com/dhowden/tag"
)

// readTags pulls display metadata out of an audio file. Files without
// readable tags yield nothing.
func readTags(path string) []MetadataEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}

	var md []MetadataEntry
	for _, e := range []MetadataEntry{
		{Label: "Title", Text: m.Title()},
		{Label: "Artist", Text: m.Artist()},
		{Label: "Album", Text: m.Album()},
	} {
		if e.Text != "" {
			md = append(md, e)
		}
	}
	return md
}

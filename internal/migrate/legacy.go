// Legacy store access. The legacy store is the earlier per-entity object
// store: flat case records with embedded stage arrays, serialized as a
// single JSON array. The bridge only ever reads it.
package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LegacyFileName is the legacy export file the bridge looks for inside
// the data directory.
const LegacyFileName = "legacy.json"

// LegacyStage is one stage embedded in a legacy case record.
type LegacyStage struct {
	ID         string `json:"id"`
	StageIndex int    `json:"stageIndex"`
	Stage      string `json:"stage"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Date       string `json:"date"`
}

// LegacyCase is one record of the legacy store.
type LegacyCase struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt string        `json:"createdAt"`
	Stages    []LegacyStage `json:"stages"`
}

// Text returns the concatenated stage input/output text the classifier
// scans.
func (c *LegacyCase) Text() string {
	text := c.Name
	for _, st := range c.Stages {
		text += " " + st.Input + " " + st.Output
	}
	return text
}

// LegacyStore enumerates legacy records.
type LegacyStore interface {
	Records() ([]LegacyCase, error)
}

// FileStore reads legacy records from a JSON file. A missing file means
// an empty legacy store, not an error.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore for the legacy export inside dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{Path: filepath.Join(dataDir, LegacyFileName)}
}

// Records parses the legacy file.
func (f *FileStore) Records() ([]LegacyCase, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading legacy store: %w", err)
	}

	var records []LegacyCase
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing legacy store: %w", err)
	}
	return records, nil
}

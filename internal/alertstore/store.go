// Package alertstore loads the synthetic SOC alert collection used for
// triage. The collection is read-only: Load filters and returns copies,
// it never mutates the backing data.
package alertstore

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/linnemanlabs/go-core/xerrors"
)

//go:embed data/synthetic_alerts.json
var embeddedAlerts []byte

var (
	// ErrNotFound means the backing alert collection is absent.
	ErrNotFound = xerrors.New("alertstore: backing collection not found")

	// ErrMalformed means the backing collection is not a JSON sequence
	// of alert records.
	ErrMalformed = xerrors.New("alertstore: backing collection malformed")
)

// Store reads alerts from a raw JSON collection.
type Store struct {
	raw []byte
}

// New returns a Store backed by the embedded synthetic collection.
func New() *Store {
	return &Store{raw: embeddedAlerts}
}

// NewFromFile returns a Store backed by a JSON file on disk. The file
// is read once; Load parses it on every call so unchanged data yields
// identical results.
func NewFromFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is operator config, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("alertstore: read %s: %w", path, err)
	}
	return &Store{raw: raw}, nil
}

// Load returns alerts from the backing collection. When alertID is
// non-empty only alerts whose id string-equals it are returned,
// possibly none. Load is idempotent: identical input against unchanged
// backing data returns identical output.
func (s *Store) Load(alertID string) ([]Alert, error) {
	if len(s.raw) == 0 {
		return nil, ErrNotFound
	}

	var alerts []Alert
	if err := json.Unmarshal(s.raw, &alerts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if alertID == "" {
		return alerts, nil
	}

	filtered := make([]Alert, 0, 1)
	for _, a := range alerts {
		if a.ID == alertID {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Package adapter turns a source's raw catalogue payload into addon records.
//
// Every known source publishes the same record shape, so one JSON adapter
// serves them all. A source with a structurally different payload gets its
// own Adapter without the aggregator changing.
package adapter

import (
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

// Adapter decodes one source's payload.
type Adapter interface {
	Decode(source types.Source, body []byte) ([]types.CatalogAddon, error)
}

// Policy decides what a malformed record does to the rest of its payload.
type Policy int

const (
	// RejectSource voids the whole payload on the first bad record.
	RejectSource Policy = iota
	// SkipRecord drops bad records and keeps the rest.
	SkipRecord
)

func (p Policy) String() string {
	switch p {
	case RejectSource:
		return "reject-source"
	case SkipRecord:
		return "skip-record"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// RecordError is a record that failed to decode.
type RecordError struct {
	Source types.Source
	Index  int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s addon %d: %v", e.Source, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// JSONAdapter reads the shared camelCase catalogue format.
type JSONAdapter struct {
	Policy Policy
}

func NewJSONAdapter(policy Policy) *JSONAdapter {
	return &JSONAdapter{Policy: policy}
}

// Decode returns the payload's addons in payload order. Each addon's Source is
// the source the payload was fetched from, whatever the record itself claims.
func (a *JSONAdapter) Decode(source types.Source, body []byte) ([]types.CatalogAddon, error) {
	records, err := types.CatalogRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%s catalogue: %w", source, err)
	}

	addons := make([]types.CatalogAddon, 0, len(records))
	skipped := 0
	for i, record := range records {
		var addon types.CatalogAddon
		if err := json.Unmarshal(record, &addon); err != nil {
			recordErr := &RecordError{Source: source, Index: i, Err: err}
			if a.Policy == RejectSource {
				return nil, recordErr
			}
			slog.Warn("skipping malformed addon", "source", source, "index", i, "error", err)
			skipped++
			continue
		}

		if addon.Source != source {
			slog.Debug("addon claims a different source", "fetched-from", source, "claimed", addon.Source, "id", addon.ID)
			addon.Source = source
		}
		addons = append(addons, addon)
	}

	if skipped > 0 {
		slog.Warn("dropped malformed addons", "source", source, "skipped", skipped, "kept", len(addons))
	}

	return addons, nil
}

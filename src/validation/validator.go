package validation

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

// Issue is a problem with a single addon record
type Issue struct {
	Index   int
	Message string
}

// Report summarises a validated catalogue
type Report struct {
	Total    int
	Valid    int
	Undated  int
	BySource map[types.Source]int
	Issues   []Issue
}

// Err returns nil when every record is usable
func (r *Report) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}

	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, fmt.Sprintf("addon[%d]: %s", issue.Index, issue.Message))
	}
	return fmt.Errorf("validation failed: %d of %d addons invalid:\n  %s", len(r.Issues), r.Total, strings.Join(lines, "\n  "))
}

// ValidateCatalogueFile validates a catalogue JSON file
func ValidateCatalogueFile(filePath string) (*Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ValidateCatalogueJSON(data)
}

// ValidateCatalogueJSON checks every record of a catalogue payload. An
// unreadable payload is an error; bad records are collected in the report.
func ValidateCatalogueJSON(data []byte) (*Report, error) {
	records, err := types.CatalogRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	report := &Report{
		Total:    len(records),
		BySource: make(map[types.Source]int),
	}

	for i, record := range records {
		var addon types.CatalogAddon
		if err := json.Unmarshal(record, &addon); err != nil {
			report.Issues = append(report.Issues, Issue{Index: i, Message: err.Error()})
			continue
		}

		if issues := AddonSchema.Validate(&addon); len(issues) > 0 {
			report.Issues = append(report.Issues, Issue{Index: i, Message: "invalid " + strings.Join(issueFields(issues), ", ")})
			continue
		}

		report.Valid++
		report.BySource[addon.Source]++
		if addon.DateReleased == nil {
			report.Undated++
		}
	}

	return report, nil
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSourceFetch(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		before := testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("Tukui", OutcomeSuccess))

		RecordSourceFetch("Tukui", true, 200*time.Millisecond, 42)

		after := testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("Tukui", OutcomeSuccess))
		if after != before+1 {
			t.Errorf("success count = %v, want %v", after, before+1)
		}
		if got := testutil.ToFloat64(SourceAddons.WithLabelValues("Tukui")); got != 42 {
			t.Errorf("addons = %v, want 42", got)
		}
	})

	t.Run("failure contributes no addons", func(t *testing.T) {
		before := testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("Tukui", OutcomeFailure))

		RecordSourceFetch("Tukui", false, time.Second, 42)

		after := testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("Tukui", OutcomeFailure))
		if after != before+1 {
			t.Errorf("failure count = %v, want %v", after, before+1)
		}
		if got := testutil.ToFloat64(SourceAddons.WithLabelValues("Tukui")); got != 0 {
			t.Errorf("addons = %v, want 0", got)
		}
	})
}

func TestRecordCatalogue(t *testing.T) {
	now := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)

	RecordCatalogue(10, 2, now)
	if got := testutil.ToFloat64(CatalogueAddons); got != 10 {
		t.Errorf("catalogue addons = %v, want 10", got)
	}
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != float64(now.Unix()) {
		t.Errorf("last success = %v, want %v", got, now.Unix())
	}

	// an empty build with no healthy source leaves the last success alone
	RecordCatalogue(0, 0, now.Add(time.Hour))
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != float64(now.Unix()) {
		t.Errorf("last success = %v, want %v", got, now.Unix())
	}
}

func TestWriteTextfile(t *testing.T) {
	RecordSourceFetch("Curse", true, time.Second, 3)

	path := filepath.Join(t.TempDir(), "catalogue.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(data), "catalogue_source_fetches_total") {
		t.Errorf("metrics file is missing the fetch counter:\n%s", data)
	}
}

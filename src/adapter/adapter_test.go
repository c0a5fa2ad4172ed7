package adapter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

func addonJSON(id int, source, date string) string {
	return fmt.Sprintf(`{
  "id": %d,
  "websiteUrl": "https://example.com/addons/%d",
  "dateReleased": %q,
  "name": "Addon %d",
  "categories": ["Misc"],
  "summary": "summary",
  "numberOfDownloads": %d,
  "source": %q,
  "flavors": ["wow_retail"],
  "gameVersions": [{"gameVersion": "9.0.5", "flavor": "wow_retail"}]
}`, id, id, date, id, id*10, source)
}

func payload(records ...string) []byte {
	return []byte("[" + strings.Join(records, ",") + "]")
}

func TestJSONAdapter_Decode(t *testing.T) {
	body := payload(
		addonJSON(3, "tukui", "2021-05-01 12:00:00"),
		addonJSON(1, "tukui", "2021-05-01"),
		addonJSON(2, "tukui", "yesterday-ish"),
	)

	addons, err := NewJSONAdapter(RejectSource).Decode(types.TukuiSource, body)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}

	if len(addons) != 3 {
		t.Fatalf("len(addons) = %d, want 3", len(addons))
	}

	// payload order is kept
	for i, wantID := range []int32{3, 1, 2} {
		if addons[i].ID != wantID {
			t.Errorf("addons[%d].ID = %d, want %d", i, addons[i].ID, wantID)
		}
		if addons[i].Source != types.TukuiSource {
			t.Errorf("addons[%d].Source = %v, want Tukui", i, addons[i].Source)
		}
	}

	// an unparsable date never invalidates the addon
	if addons[2].DateReleased != nil {
		t.Errorf("addons[2].DateReleased = %v, want nil", addons[2].DateReleased)
	}
}

func TestJSONAdapter_Decode_SourceComesFromFetch(t *testing.T) {
	body := payload(addonJSON(1, "curse", "1619870400000"))

	addons, err := NewJSONAdapter(RejectSource).Decode(types.WowInterfaceSource, body)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if addons[0].Source != types.WowInterfaceSource {
		t.Errorf("Source = %v, want WowInterface", addons[0].Source)
	}
}

func TestJSONAdapter_Decode_Wrapped(t *testing.T) {
	body := []byte(`{"addons": ` + string(payload(addonJSON(1, "wowi", "1619870400000"))) + `}`)

	addons, err := NewJSONAdapter(RejectSource).Decode(types.WowInterfaceSource, body)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if len(addons) != 1 {
		t.Errorf("len(addons) = %d, want 1", len(addons))
	}
}

func TestJSONAdapter_Decode_Policies(t *testing.T) {
	malformed := `{"id": 99, "name": "no other fields"}`
	body := payload(
		addonJSON(1, "curse", "2021-05-01T12:00:00+00:00"),
		malformed,
		addonJSON(2, "curse", "2021-05-01T12:00:00+00:00"),
	)

	t.Run("reject source", func(t *testing.T) {
		addons, err := NewJSONAdapter(RejectSource).Decode(types.CurseSource, body)
		if err == nil {
			t.Fatal("Decode() expected error but got none")
		}
		if addons != nil {
			t.Errorf("addons = %v, want nil", addons)
		}

		var recordErr *RecordError
		if !errors.As(err, &recordErr) {
			t.Fatalf("error = %v, want a *RecordError", err)
		}
		if recordErr.Index != 1 || recordErr.Source != types.CurseSource {
			t.Errorf("RecordError = %+v, want index 1 of Curse", recordErr)
		}
		if !errors.Is(err, types.ErrMissingField) {
			t.Errorf("error = %v, want it to wrap ErrMissingField", err)
		}
	})

	t.Run("skip record", func(t *testing.T) {
		addons, err := NewJSONAdapter(SkipRecord).Decode(types.CurseSource, body)
		if err != nil {
			t.Fatalf("Decode() unexpected error: %v", err)
		}
		if len(addons) != 2 || addons[0].ID != 1 || addons[1].ID != 2 {
			t.Errorf("addons = %+v, want ids 1 and 2", addons)
		}
	})
}

func TestJSONAdapter_Decode_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"html error page", "<html>rate limited</html>"},
		{"truncated", `[{"id": 1`},
		{"unrecognised wrapper", `{"data": []}`},
		{"scalar", `42`},
	}

	for _, policy := range []Policy{RejectSource, SkipRecord} {
		for _, tt := range tests {
			t.Run(policy.String()+" "+tt.name, func(t *testing.T) {
				if _, err := NewJSONAdapter(policy).Decode(types.CurseSource, []byte(tt.body)); err == nil {
					t.Error("Decode() expected error but got none")
				}
			})
		}
	}
}

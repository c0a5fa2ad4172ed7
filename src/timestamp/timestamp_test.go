package timestamp

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	may1Noon := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	may1Midnight := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"rfc3339 utc offset", "2021-05-01T12:00:00+00:00", may1Noon, true},
		{"rfc3339 zulu", "2021-05-01T12:00:00Z", may1Noon, true},
		{"rfc3339 positive offset converted", "2021-05-01T14:00:00+02:00", may1Noon, true},
		{"rfc3339 negative offset crosses day", "2021-04-30T20:00:00-04:00", time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"naive date-time read as utc", "2021-05-01 12:00:00", may1Noon, true},
		{"date only gets midnight", "2021-05-01", may1Midnight, true},
		{"epoch millis", "1619870400000", may1Noon, true},
		{"epoch millis truncates sub-second", "1619870400999", may1Noon, true},
		{"epoch zero", "0", time.Unix(0, 0).UTC(), true},
		{"negative epoch", "-1000", time.Unix(-1, 0).UTC(), true},
		{"last representable epoch", "253402300799000", time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), true},
		{"epoch past year 9999", "253402300800000", time.Time{}, false},
		{"epoch before year 0", "-62167219201000", time.Time{}, false},
		{"max int64 epoch", "9223372036854775807", time.Time{}, false},
		{"offset pushes year below 0", "0000-01-01T00:00:00+01:00", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"wowinterface web format is unknown", "09-07-18 01:27 PM", time.Time{}, false},
		{"date with trailing junk", "2021-05-01x", time.Time{}, false},
		{"impossible month", "2021-13-01", time.Time{}, false},
		{"float epoch", "1619870400000.5", time.Time{}, false},
		{"iso without offset", "2021-05-01T12:00:00", time.Time{}, false},
		{"whitespace", " ", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if ok && got.Location() != time.UTC {
				t.Errorf("Parse(%q) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestParse_OrderMatters(t *testing.T) {
	// a bare year is a valid integer but must be read as epoch millis, not a date
	got, ok := Parse("2021")
	if !ok {
		t.Fatal("Parse(\"2021\") should succeed as epoch millis")
	}
	if !got.Equal(time.Unix(2, 0).UTC()) {
		t.Errorf("Parse(\"2021\") = %v, want 1970-01-01T00:00:02Z", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("nope"); got != nil {
		t.Errorf("Normalize(nope) = %v, want nil", got)
	}

	got := Normalize("2021-05-01")
	if got == nil {
		t.Fatal("Normalize(2021-05-01) = nil, want a date")
	}
	if got.Format(time.RFC3339) != "2021-05-01T00:00:00Z" {
		t.Errorf("Normalize(2021-05-01) = %s", got.Format(time.RFC3339))
	}
}

package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/timestamp"
)

// CatalogWrapperKey is the one key recognised when a catalogue payload is
// an object instead of a bare array.
const CatalogWrapperKey = "addons"

var (
	ErrMissingField = errors.New("missing required field")
	ErrNullField    = errors.New("required field is null")
)

var nullLiteral = []byte("null")

// CatalogRecords splits a catalogue payload into its undecoded addon records.
func CatalogRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty catalogue payload")
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse catalogue array: %w", err)
		}
		return records, nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse catalogue object: %w", err)
		}
		raw, ok := lookupField(wrapper, CatalogWrapperKey)
		if !ok {
			return nil, fmt.Errorf("catalogue object has no %q key", CatalogWrapperKey)
		}
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", CatalogWrapperKey, err)
		}
		return records, nil

	default:
		return nil, errors.New("catalogue payload must be a JSON array or object")
	}
}

// lookupField matches the key exactly, then case-insensitively. When several
// keys differ only in case, the smallest in byte order wins.
func lookupField(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if raw, ok := fields[key]; ok {
		return raw, true
	}
	match, found := "", false
	for k := range fields {
		if strings.EqualFold(k, key) && (!found || k < match) {
			match, found = k, true
		}
	}
	if !found {
		return nil, false
	}
	return fields[match], true
}

// fieldDecoder decodes named fields out of a JSON object, keeping the first error.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	err    error
}

func newFieldDecoder(data []byte) (*fieldDecoder, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	return &fieldDecoder{fields: fields}, nil
}

// raw returns the field's bytes, recording an error when it is absent.
func (d *fieldDecoder) raw(key string) (json.RawMessage, bool) {
	if d.err != nil {
		return nil, false
	}
	raw, ok := lookupField(d.fields, key)
	if !ok {
		d.err = fmt.Errorf("%w: %s", ErrMissingField, key)
		return nil, false
	}
	return raw, true
}

func (d *fieldDecoder) required(key string, dest any) {
	raw, ok := d.raw(key)
	if !ok {
		return
	}
	if bytes.Equal(bytes.TrimSpace(raw), nullLiteral) {
		d.err = fmt.Errorf("%w: %s", ErrNullField, key)
		return
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		d.err = fmt.Errorf("field %s: %w", key, err)
	}
}

// date decodes a required date string through the timestamp normalizer.
// null and unparsable strings both leave dest nil.
func (d *fieldDecoder) date(key string, dest **time.Time) {
	raw, ok := d.raw(key)
	if !ok {
		return
	}
	if bytes.Equal(bytes.TrimSpace(raw), nullLiteral) {
		*dest = nil
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.err = fmt.Errorf("field %s: %w", key, err)
		return
	}
	*dest = timestamp.Normalize(s)
}

func (a *CatalogAddon) UnmarshalJSON(data []byte) error {
	d, err := newFieldDecoder(data)
	if err != nil {
		return fmt.Errorf("failed to parse addon: %w", err)
	}

	var addon CatalogAddon
	d.required("id", &addon.ID)
	d.required("websiteUrl", &addon.WebsiteURL)
	d.date("dateReleased", &addon.DateReleased)
	d.required("name", &addon.Name)
	d.required("categories", &addon.Categories)
	d.required("summary", &addon.Summary)
	d.required("numberOfDownloads", &addon.NumberOfDownloads)
	d.required("source", &addon.Source)
	d.required("flavors", &addon.Flavors)
	d.required("gameVersions", &addon.GameVersions)
	if d.err != nil {
		return d.err
	}

	*a = addon
	return nil
}

func (g *GameVersion) UnmarshalJSON(data []byte) error {
	d, err := newFieldDecoder(data)
	if err != nil {
		return fmt.Errorf("failed to parse game version: %w", err)
	}

	var gv GameVersion
	d.required("gameVersion", &gv.GameVersion)
	d.required("flavor", &gv.Flavor)
	if d.err != nil {
		return d.err
	}

	*g = gv
	return nil
}

package validation

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Oudwins/zog"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

// Endpoint is the part of a catalogue endpoint that can be checked up front
type Endpoint struct {
	Source types.Source
	URL    string
}

// isValidURL checks for an absolute http(s) URL
func isValidURL(str string) bool {
	if str == "" {
		return false
	}
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isValidURLPtr checks if a string pointer is a valid URL
func isValidURLPtr(val *string, ctx zog.Ctx) bool {
	if val == nil {
		return false
	}
	return isValidURL(*val)
}

// EndpointSchema validates an Endpoint
var EndpointSchema = zog.Struct(zog.Schema{
	"URL": zog.String().Required(zog.Message("url is required")).TestFunc(isValidURLPtr, zog.Message("url must be an absolute http(s) URL")),
})

// AddonSchema lints a decoded addon. Decoding already enforces presence and
// types; this catches values a downstream addon manager cannot use.
var AddonSchema = zog.Struct(zog.Schema{
	"name":       zog.String().Required(zog.Message("name must be a non-empty string")),
	"websiteURL": zog.String().Required(zog.Message("websiteUrl is required")).TestFunc(isValidURLPtr, zog.Message("websiteUrl must be an absolute http(s) URL")),
})

// issueFields flattens a zog issue map into sorted field names
func issueFields[V any](issues map[string]V) []string {
	fields := make([]string, 0, len(issues))
	for field := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidateEndpoint checks a single endpoint's source and URL
func ValidateEndpoint(endpoint Endpoint) error {
	if !endpoint.Source.Valid() {
		return fmt.Errorf("validation failed: unknown source %d", int(endpoint.Source))
	}
	if issues := EndpointSchema.Validate(&endpoint); len(issues) > 0 {
		return fmt.Errorf("validation failed: %s endpoint: invalid %s: %q", endpoint.Source, strings.Join(issueFields(issues), ", "), endpoint.URL)
	}
	return nil
}

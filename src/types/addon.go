package types

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Source identifies the upstream catalogue an addon came from.
// Declaration order is the merge order of the aggregated catalogue.
type Source int

const (
	CurseSource Source = iota
	TukuiSource
	WowInterfaceSource
)

var AllSources = []Source{CurseSource, TukuiSource, WowInterfaceSource}

var sourceNames = map[Source]string{
	CurseSource:        "Curse",
	TukuiSource:        "Tukui",
	WowInterfaceSource: "WowInterface",
}

var sourceAliases = map[Source]string{
	CurseSource:        "curse",
	TukuiSource:        "tukui",
	WowInterfaceSource: "wowi",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Alias is the lower-case wire name, e.g. "wowi".
func (s Source) Alias() string {
	return sourceAliases[s]
}

func (s Source) Valid() bool {
	_, ok := sourceNames[s]
	return ok
}

// ParseSource matches the wire alias or display name, ignoring case.
func ParseSource(raw string) (Source, error) {
	for _, s := range AllSources {
		if strings.EqualFold(raw, s.Alias()) || strings.EqualFold(raw, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown source: %q", raw)
}

func (s Source) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid source %d", int(s))
	}
	return json.Marshal(s.Alias())
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("source must be a string: %w", err)
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Flavor is a game client variant. Values are opaque here; the constants
// are the ones the catalogues are known to carry.
type Flavor string

const (
	RetailFlavor     Flavor = "retail"
	RetailPTRFlavor  Flavor = "retail_ptr"
	RetailBetaFlavor Flavor = "retail_beta"
	ClassicFlavor    Flavor = "classic"
	ClassicPTRFlavor Flavor = "classic_ptr"
	ClassicTBCFlavor Flavor = "classic_tbc"
)

// GameVersion is one client target an addon release supports.
type GameVersion struct {
	GameVersion string `json:"gameVersion"`
	Flavor      Flavor `json:"flavor"`
}

// Compare orders by game version first, then flavor.
func (g GameVersion) Compare(other GameVersion) int {
	if c := cmp.Compare(g.GameVersion, other.GameVersion); c != 0 {
		return c
	}
	return cmp.Compare(g.Flavor, other.Flavor)
}

// SortGameVersions sorts in place using GameVersion.Compare.
func SortGameVersions(versions []GameVersion) {
	slices.SortFunc(versions, GameVersion.Compare)
}

// CatalogAddon is one addon entry, whatever catalogue it came from.
// Note: keep field order in sync with the wire format for readable output
type CatalogAddon struct {
	ID                int32      `json:"id"`
	WebsiteURL        string     `json:"websiteUrl"`
	DateReleased      *time.Time `json:"dateReleased"`
	Name              string     `json:"name"`
	Categories        []string   `json:"categories"`
	Summary           string     `json:"summary"`
	NumberOfDownloads uint64     `json:"numberOfDownloads"`
	Source            Source     `json:"source"`
	// Deprecated: older catalogue payloads only. Use GameVersions.
	Flavors      []Flavor      `json:"flavors"`
	GameVersions []GameVersion `json:"gameVersions"`
}

// SupportsFlavor reports whether any game version targets flavor.
func (a CatalogAddon) SupportsFlavor(flavor Flavor) bool {
	for _, gv := range a.GameVersions {
		if gv.Flavor == flavor {
			return true
		}
	}
	return false
}

// Catalog is the flat, ordered addon list. It is not deduplicated.
type Catalog struct {
	Addons []CatalogAddon
}

func (c Catalog) Len() int {
	return len(c.Addons)
}

// MarshalJSON writes the bare addon array.
func (c Catalog) MarshalJSON() ([]byte, error) {
	addons := c.Addons
	if addons == nil {
		addons = []CatalogAddon{}
	}
	return json.Marshal(addons)
}

// UnmarshalJSON accepts a bare array or an object wrapping it under "addons".
// Any bad record fails the whole catalogue.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	records, err := CatalogRecords(data)
	if err != nil {
		return err
	}
	addons := make([]CatalogAddon, 0, len(records))
	for i, record := range records {
		var addon CatalogAddon
		if err := json.Unmarshal(record, &addon); err != nil {
			return fmt.Errorf("addon %d: %w", i, err)
		}
		addons = append(addons, addon)
	}
	c.Addons = addons
	return nil
}

// AddonCount is the number of addons per source, for reporting.
func (c Catalog) AddonCount() map[Source]int {
	counts := make(map[Source]int)
	for _, addon := range c.Addons {
		counts[addon.Source]++
	}
	return counts
}

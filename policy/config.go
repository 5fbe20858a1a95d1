/*
JSON catalog configuration.

PURPOSE:
  Lets deployments adjust the shipped catalog without code changes. HR
  can raise an allowance, mark a policy uncapped, or switch its counting
  strategy from a JSON file checked alongside the service config.

JSON SCHEMA:
  {
    "overrides": [
      {"key": "HOME_OFFICE", "allowance": 20},
      {"key": "LIC_EXAM", "allowance": 12, "counting": "calendar_inclusive"},
      {"key": "VACATION", "unlimited": true}
    ]
  }

Overrides are matched by the definition Key; an override naming an
unknown key is a load error rather than a silent no-op.
*/
package policy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of catalog overrides.
type CatalogJSON struct {
	Overrides []OverrideJSON `json:"overrides"`
}

// OverrideJSON adjusts one shipped definition.
type OverrideJSON struct {
	Key       string   `json:"key"`
	Allowance *float64 `json:"allowance,omitempty"`
	Unlimited bool     `json:"unlimited,omitempty"`
	Counting  string   `json:"counting,omitempty"`
}

// =============================================================================
// LOADING
// =============================================================================

// ParseCatalog applies JSON overrides on top of the shipped definitions
// and builds the resulting catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cj CatalogJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return FromJSON(cj)
}

// LoadCatalog reads a catalog override file. An empty path yields the
// shipped defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// FromJSON converts CatalogJSON into a Catalog.
func FromJSON(cj CatalogJSON) (*Catalog, error) {
	defs := make([]Definition, len(DefaultDefinitions))
	copy(defs, DefaultDefinitions)

	byKey := make(map[string]*Definition, len(defs))
	for i := range defs {
		byKey[defs[i].Key] = &defs[i]
	}

	for _, oj := range cj.Overrides {
		def, ok := byKey[oj.Key]
		if !ok {
			return nil, fmt.Errorf("override for unknown policy %q", oj.Key)
		}
		if oj.Unlimited {
			def.Allowance = nil
		} else if oj.Allowance != nil {
			if *oj.Allowance < 0 {
				return nil, fmt.Errorf("policy %s: negative allowance", oj.Key)
			}
			a := leave.NewAmount(*oj.Allowance, def.Unit)
			def.Allowance = &a
		}
		if oj.Counting != "" {
			counting, err := parseCounting(oj.Counting)
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", oj.Key, err)
			}
			def.Counting = counting
		}
	}

	return NewCatalog(defs)
}

func parseCounting(s string) (CountingStrategy, error) {
	switch CountingStrategy(s) {
	case CountVacationBusinessDays, CountCalendarInclusive:
		return CountingStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown counting strategy %q", s)
	}
}

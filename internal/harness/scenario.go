package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

// Scenario defines a query conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// DefaultOrder overrides the engine's default sort key.
	// If empty, defaults to "Timestamp".
	DefaultOrder string `yaml:"default_order,omitempty"`

	// Records are the entries every case queries.
	Records []store.Entry `yaml:"records"`

	// Cases are run in order against the same records.
	Cases []Case `yaml:"cases"`
}

// Case is one query and its expected outcome.
type Case struct {
	Name    string `yaml:"name"`
	Options Query  `yaml:"options"`
	Expect  Expect `yaml:"expect"`
}

// Query mirrors engine.Options with an optional limit, so a scenario can
// leave the limit out and get the default page size.
type Query struct {
	Where     string `yaml:"where,omitempty"`
	Search    string `yaml:"search,omitempty"`
	OrderBy   string `yaml:"orderby,omitempty"`
	OrderDesc bool   `yaml:"orderdesc,omitempty"`
	Offset    int    `yaml:"offset,omitempty"`
	Limit     *int   `yaml:"limit,omitempty"`
}

// Options converts q to engine options.
func (q Query) Options() engine.Options {
	opts := engine.DefaultOptions()
	opts.Where = q.Where
	opts.Search = q.Search
	opts.OrderBy = q.OrderBy
	opts.OrderDesc = q.OrderDesc
	opts.Offset = q.Offset
	if q.Limit != nil {
		opts.Limit = *q.Limit
	}
	return opts
}

// Expect is the expected outcome of a case.
// Exactly one of IDs (possibly empty) or Error is meaningful: a non-empty
// Error means the query must fail with that code.
type Expect struct {
	IDs   []int64 `yaml:"ids,omitempty"`
	Error string  `yaml:"error,omitempty"`
}

// DefaultOrder is the sort key scenarios use unless they name another.
const DefaultOrder = "Timestamp"

var errorCodes = map[string]bool{
	string(ir.ErrCodeInvalidClauseSyntax):     true,
	string(ir.ErrCodeUnknownProperty):         true,
	string(ir.ErrCodeInvalidValue):            true,
	string(ir.ErrCodeUnsupportedSearchTarget): true,
	string(ir.ErrCodeMissingValue):            true,
	string(ir.ErrCodeUnsupportedPropertyType): true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Fixture is a file of records to load, without cases.
// Scenario files are valid fixtures: their cases are ignored.
type Fixture struct {
	Records []store.Entry `yaml:"records"`
}

// LoadRecords reads the records of a fixture or scenario file and stamps
// missing timestamps. IDs are left as written; zero IDs are assigned by
// the store on insert.
func LoadRecords(path string) ([]store.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(fx.Records) == 0 {
		return nil, fmt.Errorf("fixture %s has no records", path)
	}

	return StampTimes(fx.Records, testutil.NewDeterministicClock()), nil
}

// StampTimes returns a copy of records with zero timestamps taken from
// clock, in order. Every timestamp is converted to UTC.
func StampTimes(records []store.Entry, clock *testutil.DeterministicClock) []store.Entry {
	out := make([]store.Entry, len(records))
	for i, r := range records {
		if r.Timestamp.IsZero() {
			r.Timestamp = clock.Next()
		}
		r.Timestamp = r.Timestamp.UTC()
		out[i] = r
	}
	return out
}

// Stamp is StampTimes plus numbering: zero IDs are assigned in order,
// starting after the largest explicit ID, so they never collide with one.
func Stamp(records []store.Entry, clock *testutil.DeterministicClock) []store.Entry {
	out := StampTimes(records, clock)
	var next int64
	for _, r := range out {
		next = max(next, r.ID)
	}
	for i := range out {
		if out[i].ID == 0 {
			next++
			out[i].ID = next
		}
	}
	return out
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	ids := make(map[int64]int, len(s.Records))
	for i, r := range s.Records {
		if r.ID == 0 {
			continue
		}
		if j, dup := ids[r.ID]; dup {
			return fmt.Errorf("records[%d]: id %d already used by records[%d]", i, r.ID, j)
		}
		ids[r.ID] = i
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true

		if c.Expect.Error != "" {
			if !errorCodes[c.Expect.Error] {
				return fmt.Errorf("cases[%d].expect: unknown error code %q", i, c.Expect.Error)
			}
			if len(c.Expect.IDs) > 0 {
				return fmt.Errorf("cases[%d].expect: ids and error are mutually exclusive", i)
			}
		}
	}

	return nil
}

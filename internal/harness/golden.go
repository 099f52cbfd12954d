package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden form of a scenario result.
type Snapshot struct {
	Scenario string         `json:"scenario"`
	Cases    []SnapshotCase `json:"cases"`
}

// SnapshotCase is the golden form of one case.
type SnapshotCase struct {
	Name  string  `json:"name"`
	IDs   []int64 `json:"ids"`
	Error string  `json:"error,omitempty"`
	SQL   string  `json:"sql,omitempty"`
}

// MarshalSnapshot renders the golden form of result as indented JSON.
// The output is deterministic for a given scenario.
func MarshalSnapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snap := Snapshot{
		Scenario: scenario.Name,
		Cases:    make([]SnapshotCase, 0, len(result.Cases)),
	}
	for _, c := range result.Cases {
		snap.Cases = append(snap.Cases, SnapshotCase{
			Name:  c.Name,
			IDs:   normalizeIDs(c.IDs),
			Error: c.Error,
			SQL:   c.SQL,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // keep SQL operators readable
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AssertGolden compares result against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	data, err := MarshalSnapshot(scenario, result)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}

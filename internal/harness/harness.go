package harness

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/containerd/log"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs every case in memory and through a scratch SQLite store.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine[store.Entry]
	sql     *querysql.SQLCompiler
	records []store.Entry
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Stamp records with IDs and timestamps where missing
// 2. Create fresh in-memory database and insert the records
// 3. Run each case in memory and via SQL
// 4. Compare both paths with each other and with the expectation
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	// Records are queried in ID order so the in-memory input order matches
	// the rowid order SQL breaks ties with.
	records := Stamp(scenario.Records, testutil.NewDeterministicClock())
	slices.SortStableFunc(records, func(a, b store.Entry) int {
		return cmp.Compare(a.ID, b.ID)
	})

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if len(records) > 0 {
		if _, err := st.Insert(ctx, records...); err != nil {
			return nil, fmt.Errorf("failed to insert records: %w", err)
		}
	}

	order := scenario.DefaultOrder
	if order == "" {
		order = DefaultOrder
	}
	eng, err := engine.New[store.Entry](catalog.New(), engine.Config{DefaultOrder: order})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{
		store:   st,
		engine:  eng,
		sql:     querysql.NewSQLCompiler(),
		records: records,
	}

	log.G(ctx).WithField("scenario", scenario.Name).Debugf("running %d cases over %d records", len(scenario.Cases), len(records))

	result := NewResult()
	for _, c := range scenario.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		result.AddCase(cr)
	}

	return result, nil
}

// runCase executes one case on both paths. Returned errors are
// infrastructure failures; query errors are part of the CaseResult.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, IDs: []int64{}}
	opts := c.Options.Options()

	q, err := h.engine.Compile(opts)
	if err != nil {
		qe, ok := ir.AsQueryError(err)
		if !ok {
			return cr, err
		}
		cr.Error = string(qe.Code)
		cr.Errors = CheckExpect(c.Expect, cr)
		cr.Pass = len(cr.Errors) == 0
		return cr, nil
	}

	memIDs := EntryIDs(q.Apply(h.records))

	sel := q.Plan(store.Table)
	sqlText, _, err := h.sql.Compile(sel)
	if err != nil {
		return cr, fmt.Errorf("compile sql: %w", err)
	}
	rows, err := h.store.List(ctx, sel)
	if err != nil {
		return cr, err
	}

	cr.IDs = memIDs
	cr.SQL = sqlText
	cr.Errors = append(cr.Errors, CheckAgreement(memIDs, EntryIDs(rows))...)
	cr.Errors = append(cr.Errors, CheckExpect(c.Expect, cr)...)
	cr.Pass = len(cr.Errors) == 0
	return cr, nil
}

// EntryIDs returns the IDs of entries in order.
func EntryIDs(entries []store.Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

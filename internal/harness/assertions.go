package harness

import (
	"fmt"
	"slices"
)

// CheckExpect compares a case outcome with its expectation.
// Returns one message per mismatch; empty when the case matches.
func CheckExpect(want Expect, got CaseResult) []string {
	var errs []string

	switch {
	case want.Error != "" && got.Error == "":
		errs = append(errs, fmt.Sprintf("expected error %s, query succeeded with ids %v", want.Error, got.IDs))
	case want.Error == "" && got.Error != "":
		errs = append(errs, fmt.Sprintf("unexpected error %s", got.Error))
	case want.Error != got.Error:
		errs = append(errs, fmt.Sprintf("expected error %s, got %s", want.Error, got.Error))
	case want.Error == "" && !slices.Equal(normalizeIDs(want.IDs), normalizeIDs(got.IDs)):
		errs = append(errs, fmt.Sprintf("expected ids %v, got %v", normalizeIDs(want.IDs), got.IDs))
	}

	return errs
}

// CheckAgreement compares the in-memory and SQL results of one case.
// Order matters: both paths must return the same IDs in the same order.
func CheckAgreement(memory, sql []int64) []string {
	if slices.Equal(memory, sql) {
		return nil
	}
	return []string{fmt.Sprintf("in-memory ids %v differ from sql ids %v", memory, sql)}
}

func normalizeIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

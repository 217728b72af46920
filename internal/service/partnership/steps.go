package partnership

import (
	"fmt"
	"sort"

	"github.com/lumina/partnerdesk/internal/domain"
)

// stepWritableFields maps a workflow step to the set of column names the
// influencer may write through the public portal at that step. This lookup
// table is the sole authorization boundary for the portal write path; steps
// 3-5 are read-only for the influencer.
var stepWritableFields = map[int]map[string]bool{
	1: {
		"agreed_price":   true,
		"proposal_notes": true,
		"contact_email":  true,
		"contact_phone":  true,
	},
	2: {
		"shipping_address": true,
		"contact_email":    true,
		"contact_phone":    true,
	},
	3: {},
	4: {},
	5: {},
}

// AllowedPortalFields returns the sorted field names the influencer may
// write at the given step. Unknown steps get an empty set.
func AllowedPortalFields(step int) []string {
	fields := stepWritableFields[step]
	out := make([]string, 0, len(fields))
	for f := range fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// validatePortalFields rejects any field not in the allowlist for the step.
// The returned error names the first offending field.
func validatePortalFields(step int, fields map[string]any) error {
	if step < domain.WorkflowFirstStep || step > domain.WorkflowLastStep {
		return fmt.Errorf("%w: step %d", ErrInvalidStep, step)
	}
	allowed := stepWritableFields[step]
	// Deterministic error message: check fields in sorted order.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !allowed[name] {
			return fmt.Errorf("%w: %q at step %d", ErrFieldNotAllowed, name, step)
		}
	}
	return nil
}

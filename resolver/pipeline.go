// Package resolver looks up skid and item attributes across the inbound
// tables in a fixed precedence order.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inbound/apperrors"
	"inbound/sheet"
)

// SourceInput marks values that were already set before any step ran.
const SourceInput = "input"

// Lookup fetches the values one source can supply. A nil map, a NotFound
// error or a missing table all mean "nothing from this source".
type Lookup func(ctx context.Context) (map[string]string, error)

// Step is one source in a precedence chain and the fields it may fill.
type Step struct {
	Source string
	Fields []string
	Lookup Lookup
}

// Resolution is the outcome of a pipeline run. Sources maps each filled
// field to the step that supplied it.
type Resolution struct {
	Values  map[string]string
	Sources map[string]string
}

// Missing lists the targets that are still blank.
func (r Resolution) Missing(targets []string) []string {
	var out []string
	for _, f := range targets {
		if r.Values[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// Run applies steps in order until every target has a non-blank value or
// the steps are exhausted. A step is only consulted when it can supply a
// field that is still blank, and it never overwrites a filled field.
func Run(ctx context.Context, initial map[string]string, targets []string, steps []Step) (Resolution, error) {
	res := Resolution{
		Values:  make(map[string]string, len(targets)),
		Sources: make(map[string]string, len(targets)),
	}
	for _, f := range targets {
		if v := strings.TrimSpace(initial[f]); v != "" {
			res.Values[f] = v
			res.Sources[f] = SourceInput
		}
	}

	for _, step := range steps {
		if len(res.Missing(targets)) == 0 {
			break
		}
		pending := res.pendingIn(step.Fields)
		if len(pending) == 0 {
			continue
		}
		values, err := step.Lookup(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, sheet.ErrTableNotFound) {
				continue
			}
			return res, fmt.Errorf("resolve from %s: %w", step.Source, err)
		}
		for _, f := range pending {
			if v := strings.TrimSpace(values[f]); v != "" {
				res.Values[f] = v
				res.Sources[f] = step.Source
			}
		}
	}
	return res, nil
}

func (r Resolution) pendingIn(fields []string) []string {
	var out []string
	for _, f := range fields {
		if r.Values[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

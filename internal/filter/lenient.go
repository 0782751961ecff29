//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package filter

import (
	"errors"
	"net/url"
	"slices"
)

// ParseWithDefaults is Parse with defaults filling any key that is absent
// or empty in values.
func ParseWithDefaults(values, defaults url.Values) (Filter, error) {
	return Parse(withDefaults(values, defaults))
}

// ParseLenient never fails. If values do not validate, the offending
// parameters are dropped (a single element for array paths, the whole key
// otherwise) and the query is validated once more. If that still fails the
// defaults alone are used.
func ParseLenient(values, defaults url.Values) Filter {
	f, err := ParseWithDefaults(values, defaults)
	if err == nil {
		return f
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		f, err = ParseWithDefaults(dropIssues(values, verr.Issues), defaults)
		if err == nil {
			return f
		}
	}

	if f, err = ParseWithDefaults(url.Values{}, defaults); err == nil {
		return f
	}
	return Default()
}

func withDefaults(values, defaults url.Values) url.Values {
	merged := cloneValues(values)
	for key, def := range defaults {
		if merged.Get(key) == "" && len(def) > 0 {
			merged[key] = slices.Clone(def)
		}
	}
	return merged
}

// dropIssues returns a copy of values without the parameters named by
// issues. Array elements are removed highest index first so earlier indexes
// stay valid.
func dropIssues(values url.Values, issues []Issue) url.Values {
	out := cloneValues(values)
	indexes := make(map[string][]int)
	for _, issue := range issues {
		field := issue.Field()
		if idx := issue.Index(); idx >= 0 {
			indexes[field] = append(indexes[field], idx)
			continue
		}
		out.Del(field)
	}

	for field, idx := range indexes {
		list, ok := out[field]
		if !ok {
			continue
		}
		slices.Sort(idx)
		idx = slices.Compact(idx)
		for i := len(idx) - 1; i >= 0; i-- {
			if idx[i] < len(list) {
				list = slices.Delete(list, idx[i], idx[i]+1)
			}
		}
		if len(list) == 0 {
			out.Del(field)
		} else {
			out[field] = list
		}
	}
	return out
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = slices.Clone(list)
	}
	return out
}

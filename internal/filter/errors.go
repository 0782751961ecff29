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
	"strconv"
	"strings"
)

// Issue is a single validation failure. Path uses dotted notation with
// array indexes as segments, e.g. "region.1".
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Field returns the query parameter the issue refers to.
func (i Issue) Field() string {
	field, _, _ := strings.Cut(i.Path, ".")
	return field
}

// Index returns the array element index of the issue, or -1 if the issue
// refers to the whole parameter.
func (i Issue) Index() int {
	_, rest, ok := strings.Cut(i.Path, ".")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return n
}

// ValidationError lists every issue found in a filter query.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Path + ": " + issue.Message
	}
	return "invalid filter: " + strings.Join(parts, "; ")
}

// Has reports whether any issue refers to the given query parameter.
func (e *ValidationError) Has(field string) bool {
	for _, issue := range e.Issues {
		if issue.Field() == field {
			return true
		}
	}
	return false
}

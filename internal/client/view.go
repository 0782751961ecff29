//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package client

import (
	"net/url"
	"strconv"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// View defaults applied to keys the query leaves empty.
const (
	ViewLimit     = 50
	ViewSortBy    = sales.SortByName
	ViewSortOrder = sales.SortAsc
)

// ViewDefaults returns the query defaults of a dashboard view.
func ViewDefaults() url.Values {
	return url.Values{
		filter.KeyPage:      {strconv.Itoa(filter.DefaultPage)},
		filter.KeyLimit:     {strconv.Itoa(ViewLimit)},
		filter.KeySortBy:    {string(ViewSortBy)},
		filter.KeySortOrder: {string(ViewSortOrder)},
	}
}

// ViewState is the filter a dashboard session is currently showing.
type ViewState struct {
	filter filter.Filter
}

// NewViewState builds the view for a raw query string. Invalid parameters
// are dropped rather than reported, and an inverted age range is closed by
// raising maxAge to minAge.
func NewViewState(rawQuery string) ViewState {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	f := filter.ParseLenient(values, ViewDefaults())
	reconcileAges(&f)
	return ViewState{filter: f}
}

// Filter returns the current filter.
func (v ViewState) Filter() filter.Filter {
	return v.filter
}

// Query returns the current filter as a query string.
func (v ViewState) Query() string {
	return v.filter.Encode()
}

// WithPage returns the view moved to page. Pages below 1 are clamped.
func (v ViewState) WithPage(page int) ViewState {
	if page < 1 {
		page = 1
	}
	v.filter.Page = page
	return v
}

// WithSort returns the view sorted by field. Choosing the current sort
// field flips the direction; any other field starts ascending. The view
// goes back to the first page.
func (v ViewState) WithSort(field sales.SortField) ViewState {
	if v.filter.SortBy == field {
		if v.filter.SortOrder == sales.SortAsc {
			v.filter.SortOrder = sales.SortDesc
		} else {
			v.filter.SortOrder = sales.SortAsc
		}
	} else {
		v.filter.SortBy = field
		v.filter.SortOrder = sales.SortAsc
	}
	v.filter.Page = 1
	return v
}

// Next returns the view on the following page if p has one.
func (v ViewState) Next(p sales.Pagination) (ViewState, bool) {
	if !p.HasNextPage {
		return v, false
	}
	return v.WithPage(v.filter.Page + 1), true
}

// Previous returns the view on the preceding page if there is one.
func (v ViewState) Previous() (ViewState, bool) {
	if v.filter.Page <= 1 {
		return v, false
	}
	return v.WithPage(v.filter.Page - 1), true
}

func reconcileAges(f *filter.Filter) {
	if f.MinAge == nil || f.MaxAge == nil {
		return
	}
	if *f.MaxAge < *f.MinAge {
		maxAge := *f.MinAge
		f.MaxAge = &maxAge
	}
}

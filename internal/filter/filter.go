//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package filter parses sales query parameters into a typed, validated
// Filter and encodes filters back to query-string form.
package filter

import (
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// Defaults applied when page or limit are absent.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Query parameter names.
const (
	KeyPage          = "page"
	KeyLimit         = "limit"
	KeySearch        = "search"
	KeyRegion        = "region"
	KeyGender        = "gender"
	KeyCategory      = "category"
	KeyPaymentMethod = "paymentMethod"
	KeyTags          = "tags"
	KeyMinAge        = "minAge"
	KeyMaxAge        = "maxAge"
	KeyStartDate     = "startDate"
	KeyEndDate       = "endDate"
	KeyMinPrice      = "minPrice"
	KeyMaxPrice      = "maxPrice"
	KeySortBy        = "sortBy"
	KeySortOrder     = "sortOrder"
)

// Filter is a validated sales query. Only Page and Limit are always set;
// every other field is optional and a zero value (nil, empty slice or
// empty string) means the filter was not supplied. Filters are passed by
// value and never modified after Parse returns them.
type Filter struct {
	Page   int
	Limit  int
	Search string

	Regions        []sales.Region
	Genders        []sales.Gender
	Categories     []sales.Category
	PaymentMethods []sales.PaymentMethod
	Tags           []sales.Tag

	MinAge *int
	MaxAge *int

	StartDate *time.Time
	EndDate   *time.Time

	MinPrice *float64
	MaxPrice *float64

	SortBy    sales.SortField
	SortOrder sales.SortOrder
}

// Default returns the filter for an empty query.
func Default() Filter {
	return Filter{Page: DefaultPage, Limit: DefaultLimit}
}

// Offset returns the number of rows preceding the current page. The result
// saturates instead of overflowing for absurd page numbers.
func (f Filter) Offset() int64 {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	pages := int64(f.Page - 1)
	limit := int64(f.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// Values encodes f as query parameters. Array fields become repeated keys
// and absent optional fields are omitted, so Parse(f.Values()) yields a
// filter equal to f.
func (f Filter) Values() url.Values {
	v := url.Values{}
	v.Set(KeyPage, strconv.Itoa(f.Page))
	v.Set(KeyLimit, strconv.Itoa(f.Limit))
	if f.Search != "" {
		v.Set(KeySearch, f.Search)
	}
	appendAll(v, KeyRegion, f.Regions)
	appendAll(v, KeyGender, f.Genders)
	appendAll(v, KeyCategory, f.Categories)
	appendAll(v, KeyPaymentMethod, f.PaymentMethods)
	appendAll(v, KeyTags, f.Tags)
	if f.MinAge != nil {
		v.Set(KeyMinAge, strconv.Itoa(*f.MinAge))
	}
	if f.MaxAge != nil {
		v.Set(KeyMaxAge, strconv.Itoa(*f.MaxAge))
	}
	if f.StartDate != nil {
		v.Set(KeyStartDate, f.StartDate.Format(time.RFC3339Nano))
	}
	if f.EndDate != nil {
		v.Set(KeyEndDate, f.EndDate.Format(time.RFC3339Nano))
	}
	if f.MinPrice != nil {
		v.Set(KeyMinPrice, strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set(KeyMaxPrice, strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.SortBy != "" {
		v.Set(KeySortBy, string(f.SortBy))
	}
	if f.SortOrder != "" {
		v.Set(KeySortOrder, string(f.SortOrder))
	}
	return v
}

// Encode returns f as a URL query string.
func (f Filter) Encode() string {
	return f.Values().Encode()
}

func appendAll[T ~string](v url.Values, key string, values []T) {
	for _, value := range values {
		v.Add(key, string(value))
	}
}

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
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// maxSafeInteger bounds integer parameters so page arithmetic stays exact.
const maxSafeInteger = 1<<53 - 1

// params is the query string after type coercion. The validate tags carry
// every constraint that is not a coercion failure.
type params struct {
	Page          *int     `query:"page" validate:"omitempty,gt=0"`
	Limit         *int     `query:"limit" validate:"omitempty,gt=0"`
	Search        string   `query:"search"`
	Region        []string `query:"region" validate:"omitempty,dive,vocab=region"`
	Gender        []string `query:"gender" validate:"omitempty,dive,vocab=gender"`
	Category      []string `query:"category" validate:"omitempty,dive,vocab=category"`
	PaymentMethod []string `query:"paymentMethod" validate:"omitempty,dive,vocab=paymentMethod"`
	Tags          []string `query:"tags" validate:"omitempty,dive,vocab=tag"`
	MinAge        *int     `query:"minAge" validate:"omitempty,gt=0"`
	MaxAge        *int     `query:"maxAge" validate:"omitempty,gt=0"`
	StartDate     *string  `query:"startDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate       *string  `query:"endDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MinPrice      *float64 `query:"minPrice" validate:"omitempty,gt=0"`
	MaxPrice      *float64 `query:"maxPrice" validate:"omitempty,gt=0"`
	SortBy        string   `query:"sortBy" validate:"omitempty,vocab=sortBy"`
	SortOrder     string   `query:"sortOrder" validate:"omitempty,vocab=sortOrder"`
}

// fieldOrder is the order issues are reported in.
var fieldOrder = []string{
	KeyPage, KeyLimit, KeySearch, KeyRegion, KeyGender, KeyCategory,
	KeyPaymentMethod, KeyTags, KeyMinAge, KeyMaxAge, KeyStartDate,
	KeyEndDate, KeyMinPrice, KeyMaxPrice, KeySortBy, KeySortOrder,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("query")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("vocab", validateVocab); err != nil {
		panic(err)
	}
	return v
}

func validateVocab(fl validator.FieldLevel) bool {
	return sales.InVocabulary(fl.Param(), fl.Field().String())
}

// Parse validates query parameters and returns the corresponding Filter.
// Every problem is collected; if there is at least one, Parse returns a
// *ValidationError and no filter. Empty scalar values count as absent and
// unknown keys are ignored.
func Parse(values url.Values) (Filter, error) {
	var p params
	var issues []Issue

	p.Page = intParam(values, KeyPage, &issues)
	p.Limit = intParam(values, KeyLimit, &issues)
	p.Search = values.Get(KeySearch)
	p.Region = listParam(values, KeyRegion)
	p.Gender = listParam(values, KeyGender)
	p.Category = listParam(values, KeyCategory)
	p.PaymentMethod = listParam(values, KeyPaymentMethod)
	p.Tags = listParam(values, KeyTags)
	p.MinAge = intParam(values, KeyMinAge, &issues)
	p.MaxAge = intParam(values, KeyMaxAge, &issues)
	p.StartDate = stringParam(values, KeyStartDate)
	p.EndDate = stringParam(values, KeyEndDate)
	p.MinPrice = floatParam(values, KeyMinPrice, &issues)
	p.MaxPrice = floatParam(values, KeyMaxPrice, &issues)
	if s, ok := scalar(values, KeySortBy); ok {
		p.SortBy = s
	}
	if s, ok := scalar(values, KeySortOrder); ok {
		p.SortOrder = s
	}

	if err := validate.Struct(&p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Filter{}, fmt.Errorf("failed to validate filter: %w", err)
		}
		for _, fe := range fieldErrs {
			issues = append(issues, Issue{
				Path:    issuePath(fe.Field()),
				Message: issueMessage(fe),
			})
		}
	}

	if len(issues) > 0 {
		sortIssues(issues)
		return Filter{}, &ValidationError{Issues: issues}
	}
	return p.filter(), nil
}

func (p *params) filter() Filter {
	f := Default()
	if p.Page != nil {
		f.Page = *p.Page
	}
	if p.Limit != nil {
		f.Limit = *p.Limit
	}
	f.Search = p.Search
	f.Regions = convert[sales.Region](p.Region)
	f.Genders = convert[sales.Gender](p.Gender)
	f.Categories = convert[sales.Category](p.Category)
	f.PaymentMethods = convert[sales.PaymentMethod](p.PaymentMethod)
	f.Tags = convert[sales.Tag](p.Tags)
	f.MinAge = p.MinAge
	f.MaxAge = p.MaxAge
	f.StartDate = parseTime(p.StartDate)
	f.EndDate = parseTime(p.EndDate)
	f.MinPrice = p.MinPrice
	f.MaxPrice = p.MaxPrice
	f.SortBy = sales.SortField(p.SortBy)
	f.SortOrder = sales.SortOrder(p.SortOrder)
	return f
}

func scalar(values url.Values, key string) (string, bool) {
	s := values.Get(key)
	return s, s != ""
}

func stringParam(values url.Values, key string) *string {
	s, ok := scalar(values, key)
	if !ok {
		return nil
	}
	return &s
}

func listParam(values url.Values, key string) []string {
	list := values[key]
	if len(list) == 0 {
		return nil
	}
	return slices.Clone(list)
}

func floatParam(values url.Values, key string, issues *[]Issue) *float64 {
	s, ok := scalar(values, key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		*issues = append(*issues, Issue{Path: key, Message: "Expected number, received nan"})
		return nil
	}
	return &n
}

func intParam(values url.Values, key string, issues *[]Issue) *int {
	n := floatParam(values, key, issues)
	if n == nil {
		return nil
	}
	if *n != math.Trunc(*n) {
		*issues = append(*issues, Issue{Path: key, Message: "Expected integer, received float"})
		return nil
	}
	if math.Abs(*n) > maxSafeInteger {
		*issues = append(*issues, Issue{
			Path:    key,
			Message: fmt.Sprintf("Number must be less than or equal to %d", int64(maxSafeInteger)),
		})
		return nil
	}
	i := int(*n)
	return &i
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func convert[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}

// issuePath turns validator field names such as "region[1]" into the
// dotted form "region.1".
func issuePath(field string) string {
	field = strings.ReplaceAll(field, "[", ".")
	return strings.ReplaceAll(field, "]", "")
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "Number must be greater than " + fe.Param()
	case "vocab":
		allowed := sales.Vocabulary(fe.Param())
		quoted := make([]string, len(allowed))
		for i, v := range allowed {
			quoted[i] = "'" + v + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'",
			strings.Join(quoted, " | "), fe.Value())
	case "datetime":
		return "Invalid datetime"
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

func sortIssues(issues []Issue) {
	slices.SortStableFunc(issues, func(a, b Issue) int {
		ia := slices.Index(fieldOrder, a.Field())
		ib := slices.Index(fieldOrder, b.Field())
		if ia != ib {
			return ia - ib
		}
		return a.Index() - b.Index()
	})
}

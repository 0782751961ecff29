//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package query turns a validated filter into SQL and runs the page and
// summary queries for the sales view.
package query

import (
	"strconv"
	"strings"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// fromClause joins every sale to its customer and product. Sales with a
// dangling reference are excluded.
const fromClause = `
FROM sales s
JOIN customers c ON s.customer_id = c.customer_id
JOIN products p ON s.product_id = p.product_id`

// Predicate is a WHERE clause and its positional arguments. Where is empty
// when the filter restricts nothing.
type Predicate struct {
	Where string
	Args  []any
}

type predicateBuilder struct {
	conds []string
	args  []any
}

func (b *predicateBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *predicateBuilder) add(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *predicateBuilder) anyOf(column string, values []string) {
	if len(values) == 0 {
		return
	}
	b.add(column + " = ANY(" + b.arg(values) + ")")
}

// BuildPredicate translates f into the WHERE clause shared by the page and
// summary queries. Fields are ANDed; values within a multi-value field are
// ORed. Range bounds are inclusive.
func BuildPredicate(f filter.Filter) Predicate {
	var b predicateBuilder

	if f.Search != "" {
		p := b.arg("%" + escapeLike(f.Search) + "%")
		b.add("(c.customer_name ILIKE " + p + " OR c.phone ILIKE " + p + ")")
	}

	b.anyOf("c.region", sales.Strings(f.Regions))
	b.anyOf("c.gender", sales.Strings(f.Genders))
	b.anyOf("p.category", sales.Strings(f.Categories))
	b.anyOf("s.payment_method", sales.Strings(f.PaymentMethods))

	if len(f.Tags) > 0 {
		patterns := make([]string, len(f.Tags))
		for i, tag := range f.Tags {
			patterns[i] = "%" + escapeLike(string(tag)) + "%"
		}
		b.add("p.tags ILIKE ANY(" + b.arg(patterns) + ")")
	}

	if f.MinAge != nil {
		b.add("c.age >= " + b.arg(*f.MinAge))
	}
	if f.MaxAge != nil {
		b.add("c.age <= " + b.arg(*f.MaxAge))
	}

	// Dates are stored as timestamps without time zone in UTC.
	if f.StartDate != nil {
		b.add("s.date >= " + b.arg(f.StartDate.UTC()))
	}
	if f.EndDate != nil {
		b.add("s.date <= " + b.arg(f.EndDate.UTC()))
	}

	if f.MinPrice != nil {
		b.add("s.final_amount >= " + b.arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		b.add("s.final_amount <= " + b.arg(*f.MaxPrice))
	}

	if len(b.conds) == 0 {
		return Predicate{}
	}
	return Predicate{
		Where: "WHERE " + strings.Join(b.conds, "\n  AND "),
		Args:  b.args,
	}
}

// OrderBy returns the ORDER BY clause for f. Without sortBy the page is
// always ordered by date, newest first, and sortOrder is ignored. With
// sortBy the direction defaults to ascending.
func OrderBy(f filter.Filter) string {
	if f.SortBy == "" {
		return "ORDER BY s.date DESC"
	}
	dir := "ASC"
	if f.SortOrder == sales.SortDesc {
		dir = "DESC"
	}
	return "ORDER BY " + sortColumn(f.SortBy) + " " + dir
}

func sortColumn(field sales.SortField) string {
	switch field {
	case sales.SortByQuantity:
		return "s.quantity"
	case sales.SortByAmount:
		return "s.final_amount"
	case sales.SortByName:
		return "c.customer_name"
	default:
		return "s.date"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

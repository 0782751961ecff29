//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ingest

import "github.com/pgEdge/pgedge-salesdash/internal/sales"

// batch buffers one transaction's worth of records. Customers and products
// are deduplicated by key, keeping the first occurrence.
type batch struct {
	customers []sales.Customer
	products  []sales.Product
	sales     []sales.Sale

	seenCustomers map[string]struct{}
	seenProducts  map[string]struct{}
}

func newBatch(size int) *batch {
	return &batch{
		customers:     make([]sales.Customer, 0, size),
		products:      make([]sales.Product, 0, size),
		sales:         make([]sales.Sale, 0, size),
		seenCustomers: make(map[string]struct{}, size),
		seenProducts:  make(map[string]struct{}, size),
	}
}

func (b *batch) add(r Record) {
	if _, ok := b.seenCustomers[r.Customer.CustomerID]; !ok {
		b.seenCustomers[r.Customer.CustomerID] = struct{}{}
		b.customers = append(b.customers, r.Customer)
	}
	if _, ok := b.seenProducts[r.Product.ProductID]; !ok {
		b.seenProducts[r.Product.ProductID] = struct{}{}
		b.products = append(b.products, r.Product)
	}
	b.sales = append(b.sales, r.Sale)
}

// len returns the number of CSV rows in the batch.
func (b *batch) len() int {
	return len(b.sales)
}

func (b *batch) reset() {
	b.customers = b.customers[:0]
	b.products = b.products[:0]
	b.sales = b.sales[:0]
	clear(b.seenCustomers)
	clear(b.seenProducts)
}

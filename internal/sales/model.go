//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sales defines the sales domain: customers, products, sales, the
// joined row served to clients and the closed vocabularies shared by the
// validation and query layers.
package sales

import "time"

// Customer is a buyer. Customers are created only by ingestion.
type Customer struct {
	CustomerID   string
	CustomerName string
	Phone        *string
	Gender       *string
	Age          *int
	Region       *string
	CustomerType *string
}

// Product is an item that can be sold. Tags is a comma-delimited list.
type Product struct {
	ProductID   string
	ProductName *string
	Brand       *string
	Category    *string
	Tags        *string
}

// Sale is a single transaction. TransactionID and Date are pointers so that
// unparseable source values reach the database as NULL and are rejected
// there.
type Sale struct {
	TransactionID      *int64
	Date               *time.Time
	CustomerID         string
	ProductID          string
	Quantity           int
	PricePerUnit       float64
	DiscountPercentage float64
	TotalAmount        float64
	FinalAmount        float64
	PaymentMethod      *string
	OrderStatus        *string
	DeliveryType       *string
	StoreID            *string
	StoreLocation      *string
	SalespersonID      *string
	EmployeeName       *string
}

// Row is one line of the sales table: a sale joined with its customer and
// product. TotalAmount carries the post-discount final amount.
type Row struct {
	TransactionID int64     `json:"transactionId"`
	Date          time.Time `json:"date"`
	Gender        *string   `json:"gender"`
	Age           *int      `json:"age"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone *string   `json:"customerPhone"`
	TotalAmount   float64   `json:"totalAmount"`
	Quantity      int       `json:"quantity"`
	PaymentMethod *string   `json:"paymentMethod"`
	Region        *string   `json:"region"`
	ProductID     string    `json:"productId"`
	ProductName   *string   `json:"productName"`
	Category      *string   `json:"category"`
	Tags          *string   `json:"tags"`
}

// KPI summarises the whole filtered set, independent of pagination.
type KPI struct {
	TotalUnitsSold int64   `json:"totalUnitsSold"`
	TotalAmount    float64 `json:"totalAmount"`
	TotalDiscount  float64 `json:"totalDiscount"`
}

// Pagination describes where a page sits in the filtered set.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination computes page metadata for total matching rows.
func NewPagination(page, limit int, total int64) Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     int64(page) < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Deref returns the value of p or the empty string.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Response is the body of a successful sales request.
type Response struct {
	Data       Data       `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Data holds one page of rows and the KPI of the whole filtered set.
type Data struct {
	PaginatedData []Row `json:"paginatedData"`
	KPIData       KPI   `json:"kpiData"`
}

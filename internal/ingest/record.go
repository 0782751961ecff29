//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// CSV column headers.
const (
	ColTransactionID      = "Transaction ID"
	ColDate               = "Date"
	ColCustomerID         = "Customer ID"
	ColCustomerName       = "Customer Name"
	ColPhone              = "Phone Number"
	ColGender             = "Gender"
	ColAge                = "Age"
	ColRegion             = "Customer Region"
	ColCustomerType       = "Customer Type"
	ColProductID          = "Product ID"
	ColProductName        = "Product Name"
	ColBrand              = "Brand"
	ColCategory           = "Product Category"
	ColTags               = "Tags"
	ColQuantity           = "Quantity"
	ColPricePerUnit       = "Price per Unit"
	ColDiscountPercentage = "Discount Percentage"
	ColTotalAmount        = "Total Amount"
	ColFinalAmount        = "Final Amount"
	ColPaymentMethod      = "Payment Method"
	ColOrderStatus        = "Order Status"
	ColDeliveryType       = "Delivery Type"
	ColStoreID            = "Store ID"
	ColStoreLocation      = "Store Location"
	ColSalespersonID      = "Salesperson ID"
	ColEmployeeName       = "Employee Name"
)

// Columns lists every column of the dataset in file order.
var Columns = []string{
	ColTransactionID, ColDate, ColCustomerID, ColCustomerName, ColPhone,
	ColGender, ColAge, ColRegion, ColCustomerType, ColProductID,
	ColProductName, ColBrand, ColCategory, ColTags, ColQuantity,
	ColPricePerUnit, ColDiscountPercentage, ColTotalAmount, ColFinalAmount,
	ColPaymentMethod, ColOrderStatus, ColDeliveryType, ColStoreID,
	ColStoreLocation, ColSalespersonID, ColEmployeeName,
}

// RequiredColumns must be present in the header. Any other column may be
// missing and is then read as empty.
var RequiredColumns = []string{
	ColTransactionID, ColDate, ColCustomerID, ColCustomerName, ColProductID,
}

// header maps column names to their position in a record.
type header map[string]int

func newHeader(names []string) (header, error) {
	h := make(header, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) text(record []string, col string) *string {
	s := h.get(record, col)
	if s == "" {
		return nil
	}
	return &s
}

// Record is one CSV line split into its three entities.
type Record struct {
	Customer sales.Customer
	Product  sales.Product
	Sale     sales.Sale
}

func (h header) record(fields []string) Record {
	age := int(parseIntPrefix(h.get(fields, ColAge)))

	return Record{
		Customer: sales.Customer{
			CustomerID:   h.get(fields, ColCustomerID),
			CustomerName: h.get(fields, ColCustomerName),
			Phone:        h.text(fields, ColPhone),
			Gender:       h.text(fields, ColGender),
			Age:          &age,
			Region:       h.text(fields, ColRegion),
			CustomerType: h.text(fields, ColCustomerType),
		},
		Product: sales.Product{
			ProductID:   h.get(fields, ColProductID),
			ProductName: h.text(fields, ColProductName),
			Brand:       h.text(fields, ColBrand),
			Category:    h.text(fields, ColCategory),
			Tags:        h.text(fields, ColTags),
		},
		Sale: sales.Sale{
			TransactionID:      parseID(h.get(fields, ColTransactionID)),
			Date:               parseDate(h.get(fields, ColDate)),
			CustomerID:         h.get(fields, ColCustomerID),
			ProductID:          h.get(fields, ColProductID),
			Quantity:           int(parseIntPrefix(h.get(fields, ColQuantity))),
			PricePerUnit:       parseFloatPrefix(h.get(fields, ColPricePerUnit)),
			DiscountPercentage: parseFloatPrefix(h.get(fields, ColDiscountPercentage)),
			TotalAmount:        parseFloatPrefix(h.get(fields, ColTotalAmount)),
			FinalAmount:        parseFloatPrefix(h.get(fields, ColFinalAmount)),
			PaymentMethod:      h.text(fields, ColPaymentMethod),
			OrderStatus:        h.text(fields, ColOrderStatus),
			DeliveryType:       h.text(fields, ColDeliveryType),
			StoreID:            h.text(fields, ColStoreID),
			StoreLocation:      h.text(fields, ColStoreLocation),
			SalespersonID:      h.text(fields, ColSalespersonID),
			EmployeeName:       h.text(fields, ColEmployeeName),
		},
	}
}

// Reader decodes dataset records from CSV input. The first line must be
// the header.
type Reader struct {
	csv    *csv.Reader
	header header
	line   int64
}

// NewReader reads the header from r and returns a reader positioned at the
// first record.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	names, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h, err := newHeader(names)
	if err != nil {
		return nil, err
	}
	return &Reader{csv: cr, header: h, line: 1}, nil
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	r.line++
	if err != nil {
		return Record{}, fmt.Errorf("failed to read CSV line %d: %w", r.line, err)
	}
	return r.header.record(fields), nil
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// parseIntPrefix reads the leading integer of s, ignoring trailing text.
// It returns 0 when s does not start with a number.
func parseIntPrefix(s string) int64 {
	m := intPrefix.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseFloatPrefix reads the leading decimal number of s, ignoring
// trailing text. It returns 0 when s does not start with a number.
func parseFloatPrefix(s string) float64 {
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseID returns nil for an unparseable transaction ID so the database
// rejects the row.
func parseID(s string) *int64 {
	if intPrefix.FindString(s) == "" {
		return nil
	}
	n := parseIntPrefix(s)
	return &n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseDate returns the date in UTC, or nil if s matches no known layout.
func parseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

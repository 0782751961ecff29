//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesdash/internal/ingest"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
	"github.com/pgEdge/pgedge-salesdash/internal/progress"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

// Options configures dataset generation.
type Options struct {
	// Rows is the number of sales to write.
	Rows int64

	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64

	// Start and End bound the sale dates.
	Start time.Time
	End   time.Time

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultOptions returns default generation options.
func DefaultOptions() Options {
	return Options{
		Rows:             10000,
		Start:            time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		ProgressInterval: progress.DefaultInterval,
	}
}

// Vocabulary weights, in the order of the sales vocabularies.
var (
	regionWeights   = []int{25, 20, 20, 20, 15}
	genderWeights   = []int{48, 52}
	categoryWeights = []int{30, 40, 30}
	paymentWeights  = []int{15, 25, 20, 10, 20, 10}
)

var (
	customerTypes       = []string{"New", "Returning", "Loyal"}
	customerTypeWeights = []int{30, 45, 25}
	orderStatuses       = []string{"Completed", "Pending", "Cancelled", "Returned"}
	orderStatusWeights  = []int{80, 8, 7, 5}
	deliveryTypes       = []string{"Standard", "Express", "Store Pickup"}
	discounts           = []int{0, 5, 10, 15, 20, 25}
	discountWeights     = []int{40, 15, 20, 10, 10, 5}
)

const (
	storeCount       = 12
	salespersonCount = 40
	maxProducts      = 2000
)

type customer struct {
	id, name, phone, gender, age, region, kind string
}

type product struct {
	id, name, brand, category, tags string
	price                           float64
}

type store struct {
	id, location string
}

type salesperson struct {
	id, name string
}

// Generator writes synthetic sales in the ingestion CSV format.
type Generator struct {
	opts         Options
	faker        *Faker
	customers    []customer
	products     []product
	stores       []store
	salespersons []salesperson
}

// NewGenerator creates a generator. The customer and product pools are
// sized from opts.Rows so that customers and products repeat across sales.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if opts.Start.IsZero() {
		opts.Start = def.Start
	}
	if opts.End.IsZero() || opts.End.Before(opts.Start) {
		opts.End = opts.Start.AddDate(1, 0, 0)
	}

	faker := NewFaker()
	if opts.Seed != 0 {
		faker = NewFakerWithSeed(opts.Seed)
	}

	g := &Generator{opts: opts, faker: faker}
	g.buildPools()
	return g
}

func (g *Generator) buildPools() {
	f := g.faker

	nCustomers := max(1, int(g.opts.Rows/5))
	g.customers = make([]customer, nCustomers)
	for i := range g.customers {
		g.customers[i] = customer{
			id:     fmt.Sprintf("CUST-%05d", i+1),
			name:   f.Name(),
			phone:  f.NullableString(f.Digits(10), 0.02),
			gender: string(ChooseWeighted(f, sales.Genders, genderWeights)),
			age:    strconv.Itoa(f.Int(18, 65)),
			region: string(ChooseWeighted(f, sales.Regions, regionWeights)),
			kind:   ChooseWeighted(f, customerTypes, customerTypeWeights),
		}
	}

	nProducts := min(maxProducts, max(1, int(g.opts.Rows/10)))
	g.products = make([]product, nProducts)
	for i := range g.products {
		tags := ChooseN(f, sales.Tags, f.Int(1, 3))
		g.products[i] = product{
			id:       fmt.Sprintf("PROD-%04d", i+1),
			name:     f.ProductName(),
			brand:    f.Company(),
			category: string(ChooseWeighted(f, sales.Categories, categoryWeights)),
			tags:     strings.Join(sales.Strings(tags), ","),
			price:    f.Price(5, 500),
		}
	}

	g.stores = make([]store, storeCount)
	for i := range g.stores {
		g.stores[i] = store{id: fmt.Sprintf("ST%03d", i+1), location: f.City()}
	}

	g.salespersons = make([]salesperson, salespersonCount)
	for i := range g.salespersons {
		g.salespersons[i] = salesperson{id: fmt.Sprintf("EMP%03d", i+1), name: f.Name()}
	}
}

// WriteFile writes the dataset to path, replacing any existing file.
func (g *Generator) WriteFile(ctx context.Context, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := g.Write(ctx, path, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	return n, err
}

// Write writes the header and opts.Rows sales to w. name labels progress
// messages.
func (g *Generator) Write(ctx context.Context, name string, w io.Writer) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ingest.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	reporter := progress.NewReporter(name, "Generating rows", g.opts.Rows, g.opts.ProgressInterval)
	record := make([]string, len(ingest.Columns))

	var written int64
	for written < g.opts.Rows {
		if written%1000 == 0 {
			if err := ctx.Err(); err != nil {
				cw.Flush()
				return written, err
			}
		}

		g.fill(record, written+1)
		if err := cw.Write(record); err != nil {
			return written, fmt.Errorf("failed to write row %d: %w", written+1, err)
		}
		written++
		reporter.Update(1)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("failed to flush CSV: %w", err)
	}
	reporter.Done()

	logging.Debug().
		Int("customers", len(g.customers)).
		Int("products", len(g.products)).
		Msg("Generated dataset pools")
	return written, nil
}

// fill writes one sale into record, in ingest.Columns order.
func (g *Generator) fill(record []string, id int64) {
	f := g.faker
	c := Choose(f, g.customers)
	p := Choose(f, g.products)
	st := Choose(f, g.stores)
	sp := Choose(f, g.salespersons)

	quantity := f.Int(1, 10)
	price := decimal.NewFromFloat(p.price).Round(2)
	discount := decimal.NewFromInt(int64(ChooseWeighted(f, discounts, discountWeights)))
	total := price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	final := FinalAmount(total, discount)

	values := map[string]string{
		ingest.ColTransactionID:      strconv.FormatInt(id, 10),
		ingest.ColDate:               f.DateRange(g.opts.Start, g.opts.End).Format("2006-01-02"),
		ingest.ColCustomerID:         c.id,
		ingest.ColCustomerName:       c.name,
		ingest.ColPhone:              c.phone,
		ingest.ColGender:             c.gender,
		ingest.ColAge:                c.age,
		ingest.ColRegion:             c.region,
		ingest.ColCustomerType:       c.kind,
		ingest.ColProductID:          p.id,
		ingest.ColProductName:        p.name,
		ingest.ColBrand:              p.brand,
		ingest.ColCategory:           p.category,
		ingest.ColTags:               p.tags,
		ingest.ColQuantity:           strconv.Itoa(quantity),
		ingest.ColPricePerUnit:       price.StringFixed(2),
		ingest.ColDiscountPercentage: discount.String(),
		ingest.ColTotalAmount:        total.StringFixed(2),
		ingest.ColFinalAmount:        final.StringFixed(2),
		ingest.ColPaymentMethod:      string(ChooseWeighted(f, sales.PaymentMethods, paymentWeights)),
		ingest.ColOrderStatus:        ChooseWeighted(f, orderStatuses, orderStatusWeights),
		ingest.ColDeliveryType:       Choose(f, deliveryTypes),
		ingest.ColStoreID:            st.id,
		ingest.ColStoreLocation:      st.location,
		ingest.ColSalespersonID:      sp.id,
		ingest.ColEmployeeName:       sp.name,
	}
	for i, col := range ingest.Columns {
		record[i] = values[col]
	}
}

// FinalAmount returns total reduced by discountPct percent, rounded to
// cents.
func FinalAmount(total, discountPct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return total.Mul(hundred.Sub(discountPct)).Div(hundred).Round(2)
}

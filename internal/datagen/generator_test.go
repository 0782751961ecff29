package datagen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesdash/internal/ingest"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

func generate(t *testing.T, opts Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := NewGenerator(opts).Write(context.Background(), "test", &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != opts.Rows {
		t.Fatalf("Expected %d rows written, got %d", opts.Rows, n)
	}
	return buf.Bytes()
}

func TestGeneratedRowsReadBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 200
	opts.Seed = 7

	r, err := ingest.NewReader(bytes.NewReader(generate(t, opts)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	var count int64
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		count++

		s := rec.Sale
		if s.TransactionID == nil || *s.TransactionID != count {
			t.Fatalf("Row %d: unexpected transaction id %v", count, s.TransactionID)
		}
		if s.Date == nil || s.Date.Before(opts.Start) || s.Date.After(opts.End) {
			t.Errorf("Row %d: date %v outside range", count, s.Date)
		}
		if a := *rec.Customer.Age; a < 18 || a > 65 {
			t.Errorf("Row %d: age %d out of range", count, a)
		}
		if s.Quantity < 1 || s.Quantity > 10 {
			t.Errorf("Row %d: quantity %d out of range", count, s.Quantity)
		}
		if !sales.InVocabulary(sales.VocabRegion, sales.Deref(rec.Customer.Region)) {
			t.Errorf("Row %d: region %v not in vocabulary", count, sales.Deref(rec.Customer.Region))
		}
		if !sales.InVocabulary(sales.VocabCategory, sales.Deref(rec.Product.Category)) {
			t.Errorf("Row %d: category %v not in vocabulary", count, sales.Deref(rec.Product.Category))
		}
		if !sales.InVocabulary(sales.VocabPaymentMethod, sales.Deref(s.PaymentMethod)) {
			t.Errorf("Row %d: payment method %v not in vocabulary", count, sales.Deref(s.PaymentMethod))
		}
		for _, tag := range strings.Split(sales.Deref(rec.Product.Tags), ",") {
			if !sales.InVocabulary(sales.VocabTag, tag) {
				t.Errorf("Row %d: tag %q not in vocabulary", count, tag)
			}
		}

		want := FinalAmount(decimal.NewFromFloat(s.TotalAmount), decimal.NewFromFloat(s.DiscountPercentage))
		if !want.Equal(decimal.NewFromFloat(s.FinalAmount)) {
			t.Errorf("Row %d: final %v, expected %v", count, s.FinalAmount, want)
		}
	}

	if count != opts.Rows {
		t.Errorf("Expected %d rows read back, got %d", opts.Rows, count)
	}
}

func TestGeneratorSeedIsReproducible(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 50
	opts.Seed = 99

	if !bytes.Equal(generate(t, opts), generate(t, opts)) {
		t.Error("Same seed produced different output")
	}
}

func TestGeneratorCustomersRepeat(t *testing.T) {
	g := NewGenerator(Options{Rows: 100, Seed: 1})
	if len(g.customers) != 20 {
		t.Errorf("Expected 20 customers, got %d", len(g.customers))
	}
	if len(g.products) != 10 {
		t.Errorf("Expected 10 products, got %d", len(g.products))
	}

	small := NewGenerator(Options{Rows: 1, Seed: 1})
	if len(small.customers) != 1 || len(small.products) != 1 {
		t.Errorf("Expected pools of at least one, got %d and %d", len(small.customers), len(small.products))
	}
}

func TestGeneratorDefaultsDates(t *testing.T) {
	g := NewGenerator(Options{Rows: 1})
	if g.opts.Start.IsZero() || !g.opts.End.After(g.opts.Start) {
		t.Errorf("Expected a valid date range, got %v - %v", g.opts.Start, g.opts.End)
	}
}

func TestGeneratorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := NewGenerator(Options{Rows: 10, Seed: 1}).Write(ctx, "test", &buf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFinalAmount(t *testing.T) {
	tests := []struct {
		total    string
		discount int64
		want     string
	}{
		{"100.00", 0, "100"},
		{"100.00", 25, "75"},
		{"19.99", 10, "17.99"},
		{"33.33", 15, "28.33"},
	}

	for _, tt := range tests {
		got := FinalAmount(decimal.RequireFromString(tt.total), decimal.NewFromInt(tt.discount))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("FinalAmount(%s, %d): expected %s, got %s", tt.total, tt.discount, tt.want, got)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := t.TempDir() + "/sales.csv"
	n, err := NewGenerator(Options{Rows: 5, Seed: 3, Start: time.Now().AddDate(-1, 0, 0)}).WriteFile(context.Background(), path)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 rows, got %d", n)
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/query"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeReader records the filters it receives and returns canned data.
type fakeReader struct {
	rows    []sales.Row
	kpi     sales.KPI
	total   int64
	err     error
	panics  bool
	filters []filter.Filter
	maxRows int
}

func (f *fakeReader) GetSales(ctx context.Context, flt filter.Filter) (*query.Result, error) {
	if f.panics {
		panic("boom")
	}
	f.filters = append(f.filters, flt)
	if f.err != nil {
		return nil, f.err
	}
	return &query.Result{
		Rows:       f.rows,
		KPI:        f.kpi,
		Pagination: sales.NewPagination(flt.Page, flt.Limit, f.total),
	}, nil
}

func (f *fakeReader) Summarize(ctx context.Context, flt filter.Filter) (query.Summary, error) {
	f.filters = append(f.filters, flt)
	if f.err != nil {
		return query.Summary{}, f.err
	}
	return query.Summary{Count: f.total, KPI: f.kpi}, nil
}

func (f *fakeReader) Export(ctx context.Context, flt filter.Filter, maxRows int, fn func(sales.Row) error) (int, error) {
	f.maxRows = maxRows
	n := 0
	for _, r := range f.rows {
		if maxRows > 0 && n >= maxRows {
			break
		}
		if err := fn(r); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func strPtr(s string) *string { return &s }

func sampleRows() []sales.Row {
	age := 31
	return []sales.Row{
		{
			TransactionID: 7,
			Date:          time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
			Gender:        strPtr("Female"),
			Age:           &age,
			CustomerID:    "C1",
			CustomerName:  "Ann Lee",
			CustomerPhone: strPtr("9876543210"),
			TotalAmount:   90.5,
			Quantity:      2,
			PaymentMethod: strPtr("UPI"),
			Region:        strPtr("South"),
			ProductID:     "P1",
			ProductName:   strPtr("Lipstick"),
			Category:      strPtr("Beauty"),
			Tags:          strPtr("beauty,makeup"),
		},
		{
			TransactionID: 8,
			Date:          time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC),
			CustomerID:    "C2",
			CustomerName:  "Bob",
			ProductID:     "P2",
		},
	}
}

func serve(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(t, NewServer(&fakeReader{}, DefaultOptions()), "/api/v1/ping")
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Errorf("Expected 200 pong, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request ID header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := NewServer(&fakeReader{}, DefaultOptions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("Expected request ID abc, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestGetSales(t *testing.T) {
	reader := &fakeReader{
		rows:  sampleRows(),
		kpi:   sales.KPI{TotalUnitsSold: 12, TotalAmount: 1234.5, TotalDiscount: 10},
		total: 21,
	}
	s := NewServer(reader, DefaultOptions())

	rec := serve(t, s, "/api/v1/sales?page=2&region=South&gender=Female&minAge=25&maxAge=40")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body sales.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(body.Data.PaginatedData) != 2 || body.Data.PaginatedData[0].CustomerName != "Ann Lee" {
		t.Errorf("Unexpected rows: %+v", body.Data.PaginatedData)
	}
	if body.Data.KPIData != reader.kpi {
		t.Errorf("Expected KPI %+v, got %+v", reader.kpi, body.Data.KPIData)
	}
	want := sales.Pagination{Page: 2, Limit: 10, Total: 21, TotalPages: 3, HasNextPage: true, HasPreviousPage: true}
	if body.Pagination != want {
		t.Errorf("Expected pagination %+v, got %+v", want, body.Pagination)
	}

	if len(reader.filters) != 1 {
		t.Fatalf("Expected one service call, got %d", len(reader.filters))
	}
	f := reader.filters[0]
	if len(f.Regions) != 1 || f.Regions[0] != sales.RegionSouth || *f.MinAge != 25 || *f.MaxAge != 40 {
		t.Errorf("Filter not passed through: %+v", f)
	}
}

func TestGetSalesRowJSONNames(t *testing.T) {
	s := NewServer(&fakeReader{rows: sampleRows()[:1]}, DefaultOptions())
	rec := serve(t, s, "/api/v1/sales")

	var raw struct {
		Data struct {
			PaginatedData []map[string]any `json:"paginatedData"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	row := raw.Data.PaginatedData[0]
	for _, key := range ExportColumns {
		if _, ok := row[key]; !ok {
			t.Errorf("Row JSON is missing %q", key)
		}
	}
	if row["totalAmount"] != 90.5 {
		t.Errorf("Expected totalAmount 90.5, got %v", row["totalAmount"])
	}
}

func TestGetSalesValidationError(t *testing.T) {
	reader := &fakeReader{}
	s := NewServer(reader, DefaultOptions())

	rec := serve(t, s, "/api/v1/sales?region=Atlantis&minAge=0")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Success || body.Message != "Validation Error" {
		t.Errorf("Unexpected envelope: %+v", body)
	}
	if len(body.Errors) != 2 || body.Errors[0].Path != "region.0" || body.Errors[1].Path != "minAge" {
		t.Errorf("Unexpected issues: %+v", body.Errors)
	}
	if len(reader.filters) != 0 {
		t.Error("Service must not be called for invalid filters")
	}
}

func TestGetSalesServiceError(t *testing.T) {
	s := NewServer(&fakeReader{err: errors.New("relation \"sales\" does not exist")}, DefaultOptions())
	rec := serve(t, s, "/api/v1/sales")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) ||
		!strings.Contains(rec.Body.String(), `relation \"sales\" does not exist`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestPanicRecovered(t *testing.T) {
	s := NewServer(&fakeReader{panics: true}, DefaultOptions())
	rec := serve(t, s, "/api/v1/sales")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"boom"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	s := NewServer(&fakeReader{}, DefaultOptions())
	rec := serve(t, s, "/api/v2/sales?page=1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Message != "Can't find /api/v2/sales?page=1 on this server!" {
		t.Errorf("Unexpected message: %q", body.Message)
	}
}

func TestCORSAllowList(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowedOrigins = []string{"http://dashboard.local"}
	s := NewServer(&fakeReader{}, opts)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://dashboard.local" {
		t.Errorf("Expected allowed origin header, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for disallowed origin, got %d", rec.Code)
	}
}

func TestExport(t *testing.T) {
	reader := &fakeReader{
		rows:  sampleRows(),
		kpi:   sales.KPI{TotalUnitsSold: 2, TotalAmount: 90.5, TotalDiscount: 9.5},
		total: 2,
	}
	opts := DefaultOptions()
	opts.ExportMaxRows = 50
	s := NewServer(reader, opts)

	rec := serve(t, s, "/api/v1/sales/export?gender=Female")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != xlsxType {
		t.Errorf("Unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("Unexpected content disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if reader.maxRows != 50 {
		t.Errorf("Expected export cap 50, got %d", reader.maxRows)
	}

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Response is not a workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(salesSheet)
	if err != nil {
		t.Fatalf("Failed to read sales sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	for i, col := range ExportColumns {
		if rows[0][i] != col {
			t.Errorf("Header %d: expected %q, got %q", i, col, rows[0][i])
		}
	}
	if rows[1][5] != "Ann Lee" || rows[1][1] != "2023-05-01T12:00:00Z" {
		t.Errorf("Unexpected first data row: %v", rows[1])
	}

	kpi, err := book.GetRows(kpiSheet)
	if err != nil {
		t.Fatalf("Failed to read KPI sheet: %v", err)
	}
	values := map[string]string{}
	for _, row := range kpi[1:] {
		values[row[0]] = row[1]
	}
	if values["totalUnitsSold"] != "2" || values["totalAmount"] != "90.5" || values["totalDiscount"] != "9.5" {
		t.Errorf("Unexpected KPI sheet: %v", values)
	}
	if values["exportedRows"] != "2" {
		t.Errorf("Expected 2 exported rows, got %q", values["exportedRows"])
	}
}

func TestExportCap(t *testing.T) {
	reader := &fakeReader{rows: sampleRows(), total: 2}
	opts := DefaultOptions()
	opts.ExportMaxRows = 1
	s := NewServer(reader, opts)

	rec := serve(t, s, "/api/v1/sales/export")
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Response is not a workbook: %v", err)
	}
	defer book.Close()

	rows, _ := book.GetRows(salesSheet)
	if len(rows) != 2 {
		t.Errorf("Expected header and 1 row, got %d", len(rows))
	}
}

func TestExportValidationError(t *testing.T) {
	s := NewServer(&fakeReader{}, DefaultOptions())
	rec := serve(t, s, "/api/v1/sales/export?sortOrder=sideways")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	opts := DefaultOptions()
	opts.Listen = "127.0.0.1:0"
	opts.ShutdownTimeout = time.Second
	s := NewServer(&fakeReader{}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/query"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

const (
	salesSheet = "Sales"
	kpiSheet   = "KPI"
	xlsxType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportColumns is the header row of the Sales sheet. It matches the row
// JSON field names.
var ExportColumns = []string{
	"transactionId", "date", "gender", "age", "customerId", "customerName",
	"customerPhone", "totalAmount", "quantity", "paymentMethod", "region",
	"productId", "productName", "category", "tags",
}

func (s *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (s *Server) getSales(c *gin.Context) {
	f, err := filter.Parse(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := s.reader.GetSales(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, sales.Response{
		Data: sales.Data{
			PaginatedData: result.Rows,
			KPIData:       result.KPI,
		},
		Pagination: result.Pagination,
	})
}

func (s *Server) exportSales(c *gin.Context) {
	f, err := filter.Parse(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	summary, err := s.reader.Summarize(ctx, f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	book, err := s.buildWorkbook(c, f, summary)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer book.Close()

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		_ = c.Error(fmt.Errorf("failed to write workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

func (s *Server) buildWorkbook(c *gin.Context, f filter.Filter, summary query.Summary) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", salesSheet); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to create sales sheet: %w", err)
	}

	sw, err := book.NewStreamWriter(salesSheet)
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to create sheet writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(ExportColumns)); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	line := 1
	exported, err := s.reader.Export(c.Request.Context(), f, s.opts.ExportMaxRows, func(r sales.Row) error {
		line++
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, exportRow(r))
	})
	if err != nil {
		book.Close()
		return nil, err
	}
	if err := sw.Flush(); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to flush sales sheet: %w", err)
	}

	if _, err := book.NewSheet(kpiSheet); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to create KPI sheet: %w", err)
	}
	kpiRows := [][]any{
		{"metric", "value"},
		{"totalUnitsSold", summary.KPI.TotalUnitsSold},
		{"totalAmount", summary.KPI.TotalAmount},
		{"totalDiscount", summary.KPI.TotalDiscount},
		{"matchingRows", summary.Count},
		{"exportedRows", exported},
	}
	for i, row := range kpiRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(kpiSheet, cell, &row); err != nil {
			book.Close()
			return nil, fmt.Errorf("failed to write KPI sheet: %w", err)
		}
	}

	requestLogger(c).Debug().
		Int("rows", exported).
		Int64("matching", summary.Count).
		Msg("Built export workbook")
	return book, nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func exportRow(r sales.Row) []any {
	var age any = ""
	if r.Age != nil {
		age = *r.Age
	}
	return []any{
		r.TransactionID,
		r.Date.UTC().Format(time.RFC3339),
		sales.Deref(r.Gender),
		age,
		r.CustomerID,
		r.CustomerName,
		sales.Deref(r.CustomerPhone),
		r.TotalAmount,
		r.Quantity,
		sales.Deref(r.PaymentMethod),
		sales.Deref(r.Region),
		r.ProductID,
		sales.Deref(r.ProductName),
		sales.Deref(r.Category),
		sales.Deref(r.Tags),
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdash/internal/client"
	"github.com/pgEdge/pgedge-salesdash/internal/sales"
)

var (
	browseURL    string
	browseQuery  string
	browsePage   int
	browseSort   string
	browseExport bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show a page of sales from a running API",
	Long: `Fetch one page of sales from a running API and print the KPI
summary, the rows and the pagination state.

The query uses the same parameters as the API. Invalid parameters are
dropped, and the view defaults to 50 rows sorted by customer name.

Example:
  pgedge-salesdash browse --query "region=South&gender=Female&minAge=25"
  pgedge-salesdash browse --query "search=ann" --sort amount --page 2`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseURL, "url", "",
		"API base URL (default: http://localhost:3000/api/v1)")
	browseCmd.Flags().StringVar(&browseQuery, "query", "",
		"filter query string, e.g. \"region=South&tags=organic\"")
	browseCmd.Flags().IntVar(&browsePage, "page", 0,
		"page to show")
	browseCmd.Flags().StringVar(&browseSort, "sort", "",
		"sort by date, quantity, amount or name; repeat the current field to reverse")
	browseCmd.Flags().BoolVar(&browseExport, "export", false,
		"print the spreadsheet export URL for the view")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if browseURL != "" {
		cfg.Browse.URL = browseURL
	}

	// Validate configuration
	if err := cfg.ValidateBrowse(); err != nil {
		return err
	}

	view := client.NewViewState(browseQuery)
	if browseSort != "" {
		field := sales.SortField(browseSort)
		if !field.Valid() {
			return fmt.Errorf("invalid sort field %q", browseSort)
		}
		view = view.WithSort(field)
	}
	if browsePage > 0 {
		view = view.WithPage(browsePage)
	}

	c := client.New(cfg.Browse.URL)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resp, err := c.GetSales(ctx, view.Filter())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := renderSales(out, resp); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nQuery: %s\n", view.Query())
	if browseExport {
		fmt.Fprintf(out, "Export: %s\n", c.ExportURL(view.Filter()))
	}
	return nil
}

// renderSales prints the KPI summary, the rows and the pagination line.
func renderSales(w io.Writer, resp *sales.Response) error {
	kpi := resp.Data.KPIData
	fmt.Fprintf(w, "Total units sold: %d | Total amount: %.2f | Total discount: %.2f\n\n",
		kpi.TotalUnitsSold, kpi.TotalAmount, kpi.TotalDiscount)

	if len(resp.Data.PaginatedData) == 0 {
		fmt.Fprintln(w, "No sales match the current filters.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tPHONE\tGENDER\tAGE\tREGION\tCATEGORY\tQTY\tAMOUNT\tPAYMENT")
		for _, r := range resp.Data.PaginatedData {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
				r.TransactionID,
				r.Date.UTC().Format("2006-01-02"),
				r.CustomerName,
				dash(sales.Deref(r.CustomerPhone)),
				dash(sales.Deref(r.Gender)),
				age(r.Age),
				dash(sales.Deref(r.Region)),
				dash(sales.Deref(r.Category)),
				r.Quantity,
				r.TotalAmount,
				dash(sales.Deref(r.PaymentMethod)),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	p := resp.Pagination
	fmt.Fprintf(w, "\nPage %d of %d (%d rows, %d per page)", p.Page, max(p.TotalPages, 1), p.Total, p.Limit)
	switch {
	case p.HasPreviousPage && p.HasNextPage:
		fmt.Fprint(w, " [prev] [next]")
	case p.HasPreviousPage:
		fmt.Fprint(w, " [prev]")
	case p.HasNextPage:
		fmt.Fprint(w, " [next]")
	}
	fmt.Fprintln(w)
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func age(a *int) string {
	if a == nil {
		return "-"
	}
	return strconv.Itoa(*a)
}

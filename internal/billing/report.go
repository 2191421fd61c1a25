package billing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/appetiteclub/roms/pkg/enums/orderstatus"
)

var csvHeader = []string{"Order ID", "Table", "Timestamp", "Status", "Subtotal", "GST", "Grand Total", "Items"}

type ReportRow struct {
	OrderID     string    `json:"order_id"`
	TableNumber int       `json:"table_number"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Subtotal    float64   `json:"subtotal"`
	GST         float64   `json:"gst"`
	GrandTotal  float64   `json:"grand_total"`
	Items       string    `json:"items"`
}

type ReportTotals struct {
	Orders     int     `json:"orders"`
	Subtotal   float64 `json:"subtotal"`
	GST        float64 `json:"gst"`
	GrandTotal float64 `json:"grand_total"`
}

type Report struct {
	Rows        []ReportRow  `json:"rows"`
	Totals      ReportTotals `json:"totals"`
	CurrentRate float64      `json:"current_rate"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// BuildReport computes one row per order. Rows keep unrounded amounts;
// totals are summed from them.
func BuildReport(orders []*order.Order, policy RatePolicy, currentRate float64, now time.Time) Report {
	report := Report{
		Rows:        make([]ReportRow, 0, len(orders)),
		CurrentRate: currentRate,
		GeneratedAt: now,
	}

	for _, o := range orders {
		bill := Compute(o, policy.RateFor(o, currentRate))
		report.Rows = append(report.Rows, ReportRow{
			OrderID:     o.ID.String(),
			TableNumber: o.TableNumber,
			Timestamp:   o.Timestamp,
			Status:      o.Status,
			Subtotal:    bill.Subtotal,
			GST:         bill.Tax,
			GrandTotal:  bill.GrandTotal,
			Items:       itemsSummary(o.Items),
		})
		report.Totals.Orders++
		report.Totals.Subtotal += bill.Subtotal
		report.Totals.GST += bill.Tax
		report.Totals.GrandTotal += bill.GrandTotal
	}

	return report
}

// WriteCSV renders rows with amounts rounded to cents.
func WriteCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("cannot write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.OrderID,
			strconv.Itoa(row.TableNumber),
			row.Timestamp.Format(time.RFC3339),
			row.Status,
			Money(row.Subtotal),
			Money(row.GST),
			Money(row.GrandTotal),
			row.Items,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write csv row %s: %w", row.OrderID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func itemsSummary(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

// Summary aggregates stored subtotals across all orders.
type Summary struct {
	AllTimeSales   float64 `json:"all_time_sales"`
	CompletedCount int     `json:"completed_count"`
	OrdersCount    int     `json:"orders_count"`
}

func Summarize(orders []*order.Order) Summary {
	var s Summary
	for _, o := range orders {
		s.OrdersCount++
		s.AllTimeSales += o.Total
		if o.Status == orderstatus.Statuses.Completed.Code() {
			s.CompletedCount++
		}
	}
	return s
}

// Metrics counts orders and their stored subtotal revenue in a window.
type Metrics struct {
	Orders  int       `json:"orders"`
	Revenue float64   `json:"revenue"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

func Aggregate(orders []*order.Order, from, to time.Time) Metrics {
	m := Metrics{From: from, To: to}
	for _, o := range orders {
		if o.Timestamp.Before(from) || !o.Timestamp.Before(to) {
			continue
		}
		m.Orders++
		m.Revenue += o.Total
	}
	return m
}

// DayWindow returns [midnight, next midnight) around now in now's location.
func DayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekWindow returns the week containing now, starting Monday 00:00.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	dayStart, _ := DayWindow(now)
	offset := (int(now.Weekday()) + 6) % 7
	start := dayStart.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

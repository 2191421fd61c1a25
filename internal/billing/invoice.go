package billing

import (
	"time"

	"github.com/appetiteclub/roms/internal/order"
	"github.com/google/uuid"
)

type InvoiceLine struct {
	Name             string  `json:"name"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	LineTotal        float64 `json:"line_total"`
	UnitPriceDisplay string  `json:"unit_price_display"`
	LineTotalDisplay string  `json:"line_total_display"`
}

type Invoice struct {
	OrderID           uuid.UUID     `json:"order_id"`
	TableNumber       int           `json:"table_number"`
	CustomerName      string        `json:"customer_name"`
	Status            string        `json:"status"`
	Timestamp         time.Time     `json:"timestamp"`
	Lines             []InvoiceLine `json:"lines"`
	Bill              Bill          `json:"bill"`
	RatePercent       string        `json:"rate_percent"`
	SubtotalDisplay   string        `json:"subtotal_display"`
	TaxDisplay        string        `json:"tax_display"`
	GrandTotalDisplay string        `json:"grand_total_display"`
}

func (i *Invoice) GetID() uuid.UUID {
	return i.OrderID
}

func (i *Invoice) ResourceType() string {
	return "invoice"
}

func BuildInvoice(o *order.Order, rate float64) *Invoice {
	bill := Compute(o, rate)

	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, item := range o.Items {
		total := item.LineTotal()
		lines = append(lines, InvoiceLine{
			Name:             item.Name,
			Quantity:         item.Quantity,
			UnitPrice:        item.Price,
			LineTotal:        total,
			UnitPriceDisplay: Money(item.Price),
			LineTotalDisplay: Money(total),
		})
	}

	return &Invoice{
		OrderID:           o.ID,
		TableNumber:       o.TableNumber,
		CustomerName:      o.CustomerName,
		Status:            o.Status,
		Timestamp:         o.Timestamp,
		Lines:             lines,
		Bill:              bill,
		RatePercent:       Percent(rate),
		SubtotalDisplay:   Money(bill.Subtotal),
		TaxDisplay:        Money(bill.Tax),
		GrandTotalDisplay: Money(bill.GrandTotal),
	}
}

package dashboard

import (
	"sort"
	"time"

	"marketplace/internal/domain"
)

// TopProductsLimit caps the best-seller list
const TopProductsLimit = 5

// Totals aggregates paid orders in the window
type Totals struct {
	Orders int          `json:"orders"`
	Units  int          `json:"units"`
	Gross  domain.Money `json:"gross"`
	Fees   domain.Money `json:"fees"`
	Net    domain.Money `json:"net"`
}

// Day is one point of the daily series
type Day struct {
	Date   string       `json:"date"` // UTC, YYYY-MM-DD
	Orders int          `json:"orders"`
	Gross  domain.Money `json:"gross"`
	Net    domain.Money `json:"net"`
}

// ProductSales ranks a product by revenue
type ProductSales struct {
	ProductID uint         `json:"product_id"`
	Title     string       `json:"title"`
	Units     int          `json:"units"`
	Gross     domain.Money `json:"gross"`
}

// Dashboard is the seller overview
type Dashboard struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	Totals      Totals         `json:"totals"`
	Daily       []Day          `json:"daily"`
	TopProducts []ProductSales `json:"top_products"`
}

// Build aggregates paid orders created within the last `days` UTC days ending at now.
// Orders outside the window or not paid are ignored. titles maps product id to title.
// A window shorter than one day is widened to today.
func Build(orders []domain.Order, titles map[uint]string, now time.Time, days int) Dashboard {
	days = max(days, 1)
	end := truncateDay(now.UTC())
	start := WindowStart(now, days)

	daily := make([]Day, days)
	for i := range daily {
		daily[i].Date = start.AddDate(0, 0, i).Format(time.DateOnly)
	}

	var totals Totals
	byProduct := map[uint]*ProductSales{}
	for _, o := range orders {
		if o.Status != domain.OrderPaid {
			continue
		}
		created := time.UnixMilli(o.CreatedAt).UTC()
		idx := int(truncateDay(created).Sub(start).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		net := o.Amount - o.Fee

		totals.Orders++
		totals.Units += o.Quantity
		totals.Gross += o.Amount
		totals.Fees += o.Fee
		totals.Net += net

		daily[idx].Orders++
		daily[idx].Gross += o.Amount
		daily[idx].Net += net

		ps, ok := byProduct[o.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: o.ProductID, Title: titles[o.ProductID]}
			byProduct[o.ProductID] = ps
		}
		ps.Units += o.Quantity
		ps.Gross += o.Amount
	}

	top := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		top = append(top, *ps)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Gross != top[j].Gross {
			return top[i].Gross > top[j].Gross
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > TopProductsLimit {
		top = top[:TopProductsLimit]
	}

	return Dashboard{
		From:        start.Format(time.DateOnly),
		To:          end.Format(time.DateOnly),
		Totals:      totals,
		Daily:       daily,
		TopProducts: top,
	}
}

// WindowStart returns the first instant included by Build for the same arguments
func WindowStart(now time.Time, days int) time.Time {
	return truncateDay(now.UTC()).AddDate(0, 0, -(max(days, 1) - 1))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Package salesreport derives summary tables from a finite sequence of
// immutable sales records: grouped totals, top-N rankings, and revenue
// statistics. Everything here is sequential data transformation; records
// are loaded once from CSV and never mutated.
package salesreport

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"
)

// Record is a single sales transaction. Records are value types and are
// never modified after parsing.
type Record struct {
	OrderID       string
	Date          time.Time
	CustomerID    string
	CustomerName  string
	Category      string
	Product       string
	Quantity      int
	UnitPrice     float64
	TotalPrice    float64
	Region        string
	PaymentMethod string
}

func (r Record) String() string {
	return fmt.Sprintf("Order %s: %s - $%.2f", r.OrderID, r.Product, r.TotalPrice)
}

// ReadRecords parses CSV sales data with a header row. Column order is
// taken from the header, so files may arrange columns freely. Rows that
// fail to parse are skipped; a read-level failure aborts with an error.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("salesreport: reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"order_id", "date", "quantity", "unit_price", "total_price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("salesreport: missing column %q", required)
		}
	}

	var recs []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("salesreport: reading row: %w", err)
		}
		rec, err := parseRow(col, row)
		if err != nil {
			continue // malformed row, skip
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func parseRow(col map[string]int, row []string) (Record, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return Record{}, err
	}
	qty, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return Record{}, err
	}
	unit, err := strconv.ParseFloat(field("unit_price"), 64)
	if err != nil {
		return Record{}, err
	}
	total, err := strconv.ParseFloat(field("total_price"), 64)
	if err != nil {
		return Record{}, err
	}
	return Record{
		OrderID:       field("order_id"),
		Date:          date,
		CustomerID:    field("customer_id"),
		CustomerName:  field("customer_name"),
		Category:      field("product_category"),
		Product:       field("product_name"),
		Quantity:      qty,
		UnitPrice:     unit,
		TotalPrice:    total,
		Region:        field("region"),
		PaymentMethod: field("payment_method"),
	}, nil
}

// SumBy accumulates value(r) into buckets keyed by key(r).
func SumBy(recs []Record, key func(Record) string, value func(Record) float64) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range recs {
		out[key(r)] += value(r)
	}
	return out
}

// CountBy counts records per key(r).
func CountBy(recs []Record, key func(Record) string) map[string]int {
	out := make(map[string]int)
	for _, r := range recs {
		out[key(r)]++
	}
	return out
}

// TotalRevenue sums TotalPrice over all records.
func TotalRevenue(recs []Record) float64 {
	var total float64
	for _, r := range recs {
		total += r.TotalPrice
	}
	return total
}

// AverageOrderValue is total revenue divided by order count; 0 for no
// records.
func AverageOrderValue(recs []Record) float64 {
	if len(recs) == 0 {
		return 0
	}
	return TotalRevenue(recs) / float64(len(recs))
}

// RevenueByCategory sums revenue per product category.
func RevenueByCategory(recs []Record) map[string]float64 {
	return SumBy(recs, func(r Record) string { return r.Category }, func(r Record) float64 { return r.TotalPrice })
}

// RevenueByRegion sums revenue per region.
func RevenueByRegion(recs []Record) map[string]float64 {
	return SumBy(recs, func(r Record) string { return r.Region }, func(r Record) float64 { return r.TotalPrice })
}

// QuantityByCategory sums units sold per product category.
func QuantityByCategory(recs []Record) map[string]int {
	out := make(map[string]int)
	for _, r := range recs {
		out[r.Category] += r.Quantity
	}
	return out
}

// RevenueByRegionAndCategory is a two-level grouping: region, then
// category.
func RevenueByRegionAndCategory(recs []Record) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, r := range recs {
		inner, ok := out[r.Region]
		if !ok {
			inner = make(map[string]float64)
			out[r.Region] = inner
		}
		inner[r.Category] += r.TotalPrice
	}
	return out
}

// OrdersByPaymentMethod counts orders per payment method.
func OrdersByPaymentMethod(recs []Record) map[string]int {
	return CountBy(recs, func(r Record) string { return r.PaymentMethod })
}

// MonthlyRevenue sums revenue per calendar month, keyed "2006-01".
func MonthlyRevenue(recs []Record) map[string]float64 {
	return SumBy(recs, func(r Record) string { return r.Date.Format("2006-01") }, func(r Record) float64 { return r.TotalPrice })
}

// Ranked is one row of a top-N table.
type Ranked struct {
	Key   string
	Value float64
}

// TopN returns the n largest entries of m by value, descending. Equal
// values are ordered by key so results are deterministic.
func TopN(m map[string]float64, n int) []Ranked {
	ranked := make([]Ranked, 0, len(m))
	for k, v := range m {
		ranked = append(ranked, Ranked{Key: k, Value: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Key < ranked[j].Key
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// TopCustomers ranks customers by total spending.
func TopCustomers(recs []Record, n int) []Ranked {
	return TopN(SumBy(recs, func(r Record) string { return r.CustomerName }, func(r Record) float64 { return r.TotalPrice }), n)
}

// TopProductsByRevenue ranks products by revenue.
func TopProductsByRevenue(recs []Record, n int) []Ranked {
	return TopN(SumBy(recs, func(r Record) string { return r.Product }, func(r Record) float64 { return r.TotalPrice }), n)
}

// TopProductsByQuantity ranks products by units sold.
func TopProductsByQuantity(recs []Record, n int) []Ranked {
	return TopN(SumBy(recs, func(r Record) string { return r.Product }, func(r Record) float64 { return float64(r.Quantity) }), n)
}

// AverageOrderValueByCategory divides each category's revenue by its
// order count.
func AverageOrderValueByCategory(recs []Record) map[string]float64 {
	revenue := RevenueByCategory(recs)
	counts := CountBy(recs, func(r Record) string { return r.Category })
	out := make(map[string]float64, len(revenue))
	for cat, rev := range revenue {
		out[cat] = rev / float64(counts[cat])
	}
	return out
}

// CustomerPurchaseFrequency counts orders per customer name.
func CustomerPurchaseFrequency(recs []Record) map[string]int {
	return CountBy(recs, func(r Record) string { return r.CustomerName })
}

// OrdersAbove returns the records whose total price exceeds threshold,
// largest first. Equal totals keep their input order.
func OrdersAbove(recs []Record, threshold float64) []Record {
	var out []Record
	for _, r := range recs {
		if r.TotalPrice > threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPrice > out[j].TotalPrice })
	return out
}

// DistinctCustomers counts unique customer IDs.
func DistinctCustomers(recs []Record) int {
	seen := make(map[string]struct{})
	for _, r := range recs {
		seen[r.CustomerID] = struct{}{}
	}
	return len(seen)
}

// RevenueStats summarizes the distribution of order totals.
type RevenueStats struct {
	Min, Max, Mean, Median, StdDev float64
}

// Stats computes min/max/mean/median/stddev of order totals. The zero
// value is returned for no records.
func Stats(recs []Record) RevenueStats {
	if len(recs) == 0 {
		return RevenueStats{}
	}
	totals := make([]float64, len(recs))
	for i, r := range recs {
		totals[i] = r.TotalPrice
	}
	sort.Float64s(totals)

	var sum float64
	for _, v := range totals {
		sum += v
	}
	mean := sum / float64(len(totals))

	var sq float64
	for _, v := range totals {
		d := v - mean
		sq += d * d
	}

	median := totals[len(totals)/2]
	if len(totals)%2 == 0 {
		median = (totals[len(totals)/2-1] + totals[len(totals)/2]) / 2
	}

	return RevenueStats{
		Min:    totals[0],
		Max:    totals[len(totals)-1],
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(sq / float64(len(totals))),
	}
}

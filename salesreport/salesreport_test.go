package salesreport

import (
	"math"
	"strings"
	"testing"
)

const sampleCSV = `order_id,date,customer_id,customer_name,product_category,product_name,quantity,unit_price,total_price,region,payment_method
O-1,2024-01-05,C-1,Alice,Electronics,Laptop,1,1200.00,1200.00,North,card
O-2,2024-01-12,C-2,Bob,Electronics,Mouse,2,25.00,50.00,South,cash
O-3,2024-02-03,C-1,Alice,Books,Novel,3,10.00,30.00,North,card
O-4,2024-02-20,C-3,Carol,Books,Atlas,1,40.00,40.00,East,transfer
O-5,2024-02-21,C-2,Bob,Electronics,Keyboard,1,80.00,80.00,South,card
`

func load(t *testing.T) []Record {
	t.Helper()
	recs, err := ReadRecords(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("records = %d want 5", len(recs))
	}
	return recs
}

func TestReadRecords(t *testing.T) {
	recs := load(t)
	r := recs[0]
	if r.OrderID != "O-1" || r.CustomerName != "Alice" || r.Quantity != 1 {
		t.Fatalf("unexpected first record: %+v", r)
	}
	if r.Date.Year() != 2024 || r.Date.Month() != 1 {
		t.Fatalf("unexpected date: %v", r.Date)
	}
	if got := r.String(); got != "Order O-1: Laptop - $1200.00" {
		t.Fatalf("String() = %q", got)
	}
}

func TestReadRecordsSkipsMalformedRows(t *testing.T) {
	csv := "order_id,date,customer_id,customer_name,product_category,product_name,quantity,unit_price,total_price,region,payment_method\n" +
		"O-1,not-a-date,C-1,Alice,Books,Novel,1,10.00,10.00,North,card\n" +
		"O-2,2024-03-01,C-1,Alice,Books,Novel,x,10.00,10.00,North,card\n" +
		"O-3,2024-03-02,C-1,Alice,Books,Novel,1,10.00,10.00,North,card\n"
	recs, err := ReadRecords(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0].OrderID != "O-3" {
		t.Fatalf("records = %+v want just O-3", recs)
	}
}

func TestReadRecordsRequiresColumns(t *testing.T) {
	if _, err := ReadRecords(strings.NewReader("order_id,date\n")); err == nil {
		t.Fatal("expected missing-column error")
	}
}

func TestTotals(t *testing.T) {
	recs := load(t)
	if got := TotalRevenue(recs); got != 1400 {
		t.Fatalf("total revenue = %v want 1400", got)
	}
	if got := AverageOrderValue(recs); got != 280 {
		t.Fatalf("average order value = %v want 280", got)
	}
	if got := AverageOrderValue(nil); got != 0 {
		t.Fatalf("average of no records = %v want 0", got)
	}
}

func TestGroupings(t *testing.T) {
	recs := load(t)
	byCat := RevenueByCategory(recs)
	if byCat["Electronics"] != 1330 || byCat["Books"] != 70 {
		t.Fatalf("revenue by category = %v", byCat)
	}
	byRegion := RevenueByRegion(recs)
	if byRegion["North"] != 1230 || byRegion["South"] != 130 || byRegion["East"] != 40 {
		t.Fatalf("revenue by region = %v", byRegion)
	}
	qty := QuantityByCategory(recs)
	if qty["Electronics"] != 4 || qty["Books"] != 4 {
		t.Fatalf("quantity by category = %v", qty)
	}
	nested := RevenueByRegionAndCategory(recs)
	if nested["North"]["Electronics"] != 1200 || nested["North"]["Books"] != 30 {
		t.Fatalf("nested grouping = %v", nested)
	}
	pay := OrdersByPaymentMethod(recs)
	if pay["card"] != 3 || pay["cash"] != 1 || pay["transfer"] != 1 {
		t.Fatalf("orders by payment = %v", pay)
	}
	monthly := MonthlyRevenue(recs)
	if monthly["2024-01"] != 1250 || monthly["2024-02"] != 150 {
		t.Fatalf("monthly revenue = %v", monthly)
	}
}

func TestTopN(t *testing.T) {
	recs := load(t)
	top := TopCustomers(recs, 2)
	if len(top) != 2 || top[0].Key != "Alice" || top[0].Value != 1230 {
		t.Fatalf("top customers = %v", top)
	}
	if top[1].Key != "Bob" || top[1].Value != 130 {
		t.Fatalf("top customers = %v", top)
	}
	prods := TopProductsByRevenue(recs, 1)
	if len(prods) != 1 || prods[0].Key != "Laptop" {
		t.Fatalf("top products = %v", prods)
	}
	// Ties break deterministically by key.
	tied := TopN(map[string]float64{"b": 1, "a": 1, "c": 2}, 3)
	if tied[0].Key != "c" || tied[1].Key != "a" || tied[2].Key != "b" {
		t.Fatalf("tie order = %v", tied)
	}
	// n larger than the table returns everything.
	if got := TopN(map[string]float64{"x": 1}, 10); len(got) != 1 {
		t.Fatalf("topn overshoot = %v", got)
	}
}

func TestAverageOrderValueByCategory(t *testing.T) {
	recs := load(t)
	avg := AverageOrderValueByCategory(recs)
	// Electronics: 1330 over 3 orders; Books: 70 over 2 orders.
	if got := avg["Electronics"]; math.Abs(got-1330.0/3) > 1e-9 {
		t.Fatalf("electronics average = %v want %v", got, 1330.0/3)
	}
	if avg["Books"] != 35 {
		t.Fatalf("books average = %v want 35", avg["Books"])
	}
	if got := AverageOrderValueByCategory(nil); len(got) != 0 {
		t.Fatalf("average of no records = %v", got)
	}
}

func TestCustomerPurchaseFrequency(t *testing.T) {
	recs := load(t)
	freq := CustomerPurchaseFrequency(recs)
	if freq["Alice"] != 2 || freq["Bob"] != 2 || freq["Carol"] != 1 {
		t.Fatalf("purchase frequency = %v", freq)
	}
	if len(freq) != 3 {
		t.Fatalf("customers = %d want 3", len(freq))
	}
}

func TestFiltersAndCounts(t *testing.T) {
	recs := load(t)
	above := OrdersAbove(recs, 45)
	if len(above) != 3 {
		t.Fatalf("orders above 45 = %d want 3", len(above))
	}
	// Largest totals first: 1200, 80, 50.
	if above[0].TotalPrice != 1200 || above[1].TotalPrice != 80 || above[2].TotalPrice != 50 {
		t.Fatalf("orders above 45 out of order: %v", above)
	}
	if DistinctCustomers(recs) != 3 {
		t.Fatalf("distinct customers = %d want 3", DistinctCustomers(recs))
	}
}

func TestStats(t *testing.T) {
	recs := load(t)
	s := Stats(recs)
	if s.Min != 30 || s.Max != 1200 {
		t.Fatalf("stats = %+v", s)
	}
	if s.Mean != 280 {
		t.Fatalf("mean = %v want 280", s.Mean)
	}
	if s.Median != 50 {
		t.Fatalf("median = %v want 50", s.Median)
	}
	// Population stddev of 1200,50,30,40,80.
	want := math.Sqrt((846400.0 + 52900 + 62500 + 57600 + 40000) / 5)
	if math.Abs(s.StdDev-want) > 1e-9 {
		t.Fatalf("stddev = %v want %v", s.StdDev, want)
	}
	if got := Stats(nil); got != (RevenueStats{}) {
		t.Fatalf("stats of no records = %+v", got)
	}
}

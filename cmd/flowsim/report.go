package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/flowkit/boundedbuf/salesreport"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print sales analysis tables from a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "sales CSV `FILE`", Required: true},
			&cli.IntFlag{Name: "top", Value: 5, Usage: "rows per top-N table"},
			&cli.Float64Flag{Name: "threshold", Value: 500, Usage: "minimum total for the high-value orders table"},
		},
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	f, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("opening sales data: %w", err)
	}
	defer f.Close()

	recs, err := salesreport.ReadRecords(f)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return cli.Exit("no parseable records in input", 1)
	}
	n := c.Int("top")

	fmt.Printf("Orders: %d (distinct customers: %d)\n", len(recs), salesreport.DistinctCustomers(recs))
	fmt.Printf("Total revenue: $%.2f\n", salesreport.TotalRevenue(recs))
	fmt.Printf("Average order value: $%.2f\n", salesreport.AverageOrderValue(recs))

	printMoneyTable("Revenue by category", salesreport.RevenueByCategory(recs))
	printMoneyTable("Revenue by region", salesreport.RevenueByRegion(recs))
	printMoneyTable("Monthly revenue", salesreport.MonthlyRevenue(recs))
	printMoneyTable("Average order value by category", salesreport.AverageOrderValueByCategory(recs))
	printCountTable("Orders by payment method", salesreport.OrdersByPaymentMethod(recs))
	printCountTable("Quantity sold by category", salesreport.QuantityByCategory(recs))
	printCountTable("Customer purchase frequency", salesreport.CustomerPurchaseFrequency(recs))

	printRanked(fmt.Sprintf("Top %d customers", n), salesreport.TopCustomers(recs, n), "$%.2f")
	printRanked(fmt.Sprintf("Top %d products by revenue", n), salesreport.TopProductsByRevenue(recs, n), "$%.2f")
	printRanked(fmt.Sprintf("Top %d products by quantity", n), salesreport.TopProductsByQuantity(recs, n), "%.0f")

	threshold := c.Float64("threshold")
	high := salesreport.OrdersAbove(recs, threshold)
	fmt.Printf("\nOrders above $%.2f (%d)\n", threshold, len(high))
	limit := len(high)
	if limit > n {
		limit = n
	}
	for _, r := range high[:limit] {
		fmt.Printf("  %s\n", r)
	}

	s := salesreport.Stats(recs)
	fmt.Println("\nOrder value statistics")
	fmt.Printf("  min $%.2f | max $%.2f | mean $%.2f | median $%.2f | stddev $%.2f\n",
		s.Min, s.Max, s.Mean, s.Median, s.StdDev)
	return nil
}

func printMoneyTable(title string, m map[string]float64) {
	fmt.Println("\n" + title)
	for _, k := range sortedKeys(m) {
		fmt.Printf("  %-20s $%.2f\n", k, m[k])
	}
}

func printCountTable(title string, m map[string]int) {
	fmt.Println("\n" + title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, m[k])
	}
}

func printRanked(title string, rows []salesreport.Ranked, valueFormat string) {
	fmt.Println("\n" + title)
	for i, r := range rows {
		fmt.Printf("  %d. %-18s "+valueFormat+"\n", i+1, r.Key, r.Value)
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

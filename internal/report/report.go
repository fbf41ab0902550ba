// Package report aggregates fetched sale rows into revenue summaries.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/utils"
)

type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
	All   Period = "all"
)

var periodLabels = map[Period]string{
	Today: "Today",
	Week:  "Last 7 days",
	Month: "Last 30 days",
	All:   "All time",
}

// ParsePeriod accepts the period keywords; an empty string means today.
func ParsePeriod(s string) (Period, bool) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return Today, true
	}
	_, ok := periodLabels[p]
	return p, ok
}

func (p Period) Label() string { return periodLabels[p] }

// Range returns the unix bounds [from, to) of p ending now. Today starts at
// local midnight; the rolling periods count whole days back from it. All is
// unbounded and returns zeros.
func Range(p Period, now time.Time, loc *time.Location) (from, to int64) {
	if p == All {
		return 0, 0
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	switch p {
	case Week:
		midnight = midnight.AddDate(0, 0, -6)
	case Month:
		midnight = midnight.AddDate(0, 0, -29)
	}
	return midnight.Unix(), now.Unix() + 1
}

// Filter narrows the rows that are aggregated. Zero fields match all.
type Filter struct {
	Buyer     string
	ProductID int64
}

func (f Filter) match(s *models.SaleView) bool {
	if f.Buyer != "" && !strings.EqualFold(strings.TrimSpace(s.BuyerName), strings.TrimSpace(f.Buyer)) {
		return false
	}
	if f.ProductID != 0 && s.ProductID != f.ProductID {
		return false
	}
	return true
}

// Group is one row of a breakdown.
type Group struct {
	Key     string
	Count   int
	Revenue decimal.Decimal
}

type Summary struct {
	Sales   []models.SaleView // cleared, newest first
	Count   int
	Revenue decimal.Decimal
	Average decimal.Decimal

	UnclearedCount  int
	UnclearedAmount decimal.Decimal

	ByProduct []Group // revenue desc
	ByBuyer   []Group // revenue desc
	ByPayment []Group

	ByHour    [24]int
	ByWeekday [7]int // Sunday first
}

// Build aggregates sales matching f. Only cleared sales count as revenue;
// uncleared ones are totalled separately.
func Build(sales []models.SaleView, f Filter, loc *time.Location) Summary {
	s := Summary{
		Revenue:         decimal.Zero,
		Average:         decimal.Zero,
		UnclearedAmount: decimal.Zero,
	}
	products := map[string]*Group{}
	buyers := map[string]*Group{}
	payments := map[string]*Group{}

	for i := range sales {
		sale := &sales[i]
		if !f.match(sale) {
			continue
		}
		if !sale.IsCleared {
			s.UnclearedCount++
			s.UnclearedAmount = s.UnclearedAmount.Add(sale.Price)
			continue
		}

		s.Sales = append(s.Sales, *sale)
		s.Count++
		s.Revenue = s.Revenue.Add(sale.Price)
		add(products, sale.ProductName, sale.Price)
		add(buyers, sale.BuyerName, sale.Price)
		pt := "unknown"
		if sale.PaymentType != nil {
			pt = string(*sale.PaymentType)
		}
		add(payments, pt, sale.Price)

		t := time.Unix(sale.CreatedAt, 0).In(loc)
		s.ByHour[t.Hour()]++
		s.ByWeekday[t.Weekday()]++
	}

	sort.SliceStable(s.Sales, func(i, j int) bool {
		if s.Sales[i].CreatedAt != s.Sales[j].CreatedAt {
			return s.Sales[i].CreatedAt > s.Sales[j].CreatedAt
		}
		return s.Sales[i].ID > s.Sales[j].ID
	})
	if s.Count > 0 {
		s.Average = s.Revenue.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	s.ByProduct = ranked(products)
	s.ByBuyer = ranked(buyers)
	s.ByPayment = ranked(payments)
	return s
}

func add(m map[string]*Group, key string, amount decimal.Decimal) {
	g, ok := m[key]
	if !ok {
		g = &Group{Key: key, Revenue: decimal.Zero}
		m[key] = g
	}
	g.Count++
	g.Revenue = g.Revenue.Add(amount)
}

func ranked(m map[string]*Group) []Group {
	res := make([]Group, 0, len(m))
	for _, g := range m {
		res = append(res, *g)
	}
	sort.Slice(res, func(i, j int) bool {
		if c := res[i].Revenue.Cmp(res[j].Revenue); c != 0 {
			return c > 0
		}
		return res[i].Key < res[j].Key
	})
	return res
}

// Top returns at most n groups.
func Top(gs []Group, n int) []Group {
	if len(gs) > n {
		return gs[:n]
	}
	return gs
}

const maxListed = 15

// FormatSummary renders the sold-items view: totals followed by the latest
// sales.
func FormatSummary(title string, s Summary, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s\n━━━━━━━━━━━━━━━━━━\n", title)
	if s.Count == 0 && s.UnclearedCount == 0 {
		b.WriteString("No sales in this period.")
		return b.String()
	}

	fmt.Fprintf(&b, "🛒 Sales: %d\n💰 Revenue: %s\n📈 Average: %s\n",
		s.Count, utils.Money(s.Revenue), utils.Money(s.Average))
	if s.UnclearedCount > 0 {
		fmt.Fprintf(&b, "🕒 Uncleared: %d (%s)\n", s.UnclearedCount, utils.Money(s.UnclearedAmount))
	}

	if len(s.ByProduct) > 0 {
		b.WriteString("\n🏆 Top products:\n")
		for i, g := range Top(s.ByProduct, 5) {
			fmt.Fprintf(&b, "%d. %s: %d sold, %s\n", i+1, g.Key, g.Count, utils.Money(g.Revenue))
		}
	}

	if len(s.Sales) > 0 {
		b.WriteString("\n🧾 Latest:\n")
		for i, sale := range s.Sales {
			if i == maxListed {
				fmt.Fprintf(&b, "… and %d more\n", len(s.Sales)-maxListed)
				break
			}
			pt := "-"
			if sale.PaymentType != nil {
				pt = string(*sale.PaymentType)
			}
			fmt.Fprintf(&b, "• %s %s to %s, %s (%s)\n",
				utils.DateTime(sale.CreatedAt, loc), sale.ProductName, sale.BuyerName, utils.Money(sale.Price), pt)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatDetailed renders the analytics view with buyer, payment and time
// breakdowns.
func FormatDetailed(title string, s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s\n━━━━━━━━━━━━━━━━━━\n", title)
	if s.Count == 0 {
		b.WriteString("No cleared sales in this period.")
		return b.String()
	}
	fmt.Fprintf(&b, "🛒 Sales: %d\n💰 Revenue: %s\n📈 Average: %s\n",
		s.Count, utils.Money(s.Revenue), utils.Money(s.Average))

	b.WriteString("\n👥 Top buyers:\n")
	for i, g := range Top(s.ByBuyer, 5) {
		fmt.Fprintf(&b, "%d. %s: %s (%d)\n", i+1, g.Key, utils.Money(g.Revenue), g.Count)
	}

	b.WriteString("\n💳 By payment:\n")
	for _, g := range s.ByPayment {
		fmt.Fprintf(&b, "• %s: %s (%d)\n", g.Key, utils.Money(g.Revenue), g.Count)
	}

	b.WriteString("\n🕐 Busiest hours:\n")
	for _, h := range busiest(s.ByHour[:], 3) {
		fmt.Fprintf(&b, "• %02d:00: %d\n", h, s.ByHour[h])
	}

	b.WriteString("\n📅 By weekday:\n")
	for d, n := range s.ByWeekday {
		if n > 0 {
			fmt.Fprintf(&b, "• %s: %d\n", weekdays[d], n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// busiest returns the indexes of the n largest non-zero buckets.
func busiest(buckets []int, n int) []int {
	idx := make([]int, 0, len(buckets))
	for i, v := range buckets {
		if v > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return buckets[idx[a]] > buckets[idx[b]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

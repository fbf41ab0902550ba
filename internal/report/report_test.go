package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quicksell-bot/internal/models"
)

func sale(id int64, product, buyer, price string, cleared bool, at int64) models.SaleView {
	pt := models.PaymentCash
	if !cleared {
		pt = models.PaymentBorrowed
	}
	return models.SaleView{
		Sale: models.Sale{
			ID: id, ProductID: id * 10, BuyerName: buyer, Price: decimal.RequireFromString(price),
			PaymentType: &pt, IsCleared: cleared, CreatedAt: at,
		},
		ProductName: product,
	}
}

func TestBuildTotals(t *testing.T) {
	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC).Unix() // Monday
	sales := []models.SaleView{
		sale(1, "Carpet", "Bob", "10", true, base),
		sale(2, "Vase", "Ann", "20", true, base+3600),
		sale(3, "Carpet", "Bob", "30", true, base+7200),
		sale(4, "Lamp", "Eve", "99", false, base),
	}

	s := Build(sales, Filter{}, time.UTC)
	require.Equal(t, 3, s.Count)
	require.True(t, s.Revenue.Equal(decimal.NewFromInt(60)))
	require.True(t, s.Average.Equal(decimal.NewFromInt(20)))
	require.Equal(t, 1, s.UnclearedCount)
	require.True(t, s.UnclearedAmount.Equal(decimal.NewFromInt(99)))

	require.EqualValues(t, 3, s.Sales[0].ID)
	require.EqualValues(t, 1, s.Sales[2].ID)

	require.Equal(t, "Carpet", s.ByProduct[0].Key)
	require.Equal(t, 2, s.ByProduct[0].Count)
	require.True(t, s.ByProduct[0].Revenue.Equal(decimal.NewFromInt(40)))
	require.Equal(t, "Bob", s.ByBuyer[0].Key)

	require.Equal(t, 1, s.ByHour[9])
	require.Equal(t, 1, s.ByHour[10])
	require.Equal(t, 3, s.ByWeekday[time.Monday])
}

func TestBuildFilter(t *testing.T) {
	sales := []models.SaleView{
		sale(1, "Carpet", "Bob", "10", true, 100),
		sale(2, "Vase", "Ann", "20", true, 200),
		sale(3, "Carpet", "bob ", "30", true, 300),
	}

	s := Build(sales, Filter{Buyer: "BOB"}, time.UTC)
	require.Equal(t, 2, s.Count)
	require.True(t, s.Revenue.Equal(decimal.NewFromInt(40)))

	s = Build(sales, Filter{ProductID: 20}, time.UTC)
	require.Equal(t, 1, s.Count)
	require.True(t, s.Average.Equal(decimal.NewFromInt(20)))
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil, Filter{}, time.UTC)
	require.Zero(t, s.Count)
	require.True(t, s.Revenue.IsZero())
	require.True(t, s.Average.IsZero())
	require.Contains(t, FormatSummary("Today", s, time.UTC), "No sales")
	require.Contains(t, FormatDetailed("Today", s), "No cleared sales")
}

func TestRange(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	from, to := Range(Today, now, time.UTC)
	require.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC).Unix(), from)
	require.Equal(t, now.Unix()+1, to)

	from, _ = Range(Week, now, time.UTC)
	require.Equal(t, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC).Unix(), from)

	from, _ = Range(Month, now, time.UTC)
	require.Equal(t, time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC).Unix(), from)

	from, to = Range(All, now, time.UTC)
	require.Zero(t, from)
	require.Zero(t, to)
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod("")
	require.True(t, ok)
	require.Equal(t, Today, p)
	p, ok = ParsePeriod(" Month ")
	require.True(t, ok)
	require.Equal(t, Month, p)
	_, ok = ParsePeriod("decade")
	require.False(t, ok)
}

func TestFormatSummary(t *testing.T) {
	sales := []models.SaleView{
		sale(1, "Carpet", "Bob", "10", true, 1_700_000_000),
		sale(2, "Vase", "Ann", "20.5", true, 1_700_000_100),
	}
	out := FormatSummary("Today", Build(sales, Filter{}, time.UTC), time.UTC)
	require.Contains(t, out, "Revenue: $30.50")
	require.Contains(t, out, "Average: $15.25")
	require.Contains(t, out, "Vase to Ann, $20.50 (cash)")

	out = FormatDetailed("Today", Build(sales, Filter{}, time.UTC))
	require.Contains(t, out, "1. Ann: $20.50 (1)")
	require.Contains(t, out, "• 22:00: 2")
	require.Contains(t, out, "• Tue: 2")
}

package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	require.Equal(t, "$100.00", Money(decimal.NewFromInt(100)))
	require.Equal(t, "$149.90", Money(decimal.RequireFromString("149.9")))
	require.Equal(t, "-$0.50", Money(decimal.RequireFromString("-0.5")))
}

func TestDate(t *testing.T) {
	require.Equal(t, "2023-11-14", Date(1_700_000_000, time.UTC))
	require.Equal(t, "2023-11-14 22:13", DateTime(1_700_000_000, time.UTC))
	require.Equal(t, time.UTC, Location("Not/AZone"))
	require.Equal(t, time.UTC, Location(""))
}

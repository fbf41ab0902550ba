package dialog

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quicksell-bot/internal/models"
)

func TestOnboardingSteps(t *testing.T) {
	var s models.Session
	require.Equal(t, "👋 Welcome! What is your name?", Begin(&s, models.StateAwaitingName, models.Draft{}))

	done, err := Advance(&s, "  ")
	require.False(t, done)
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, models.StateAwaitingName, s.State)

	done, err = Advance(&s, " Ann ")
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, "Ann", s.Draft.Name)
	require.Equal(t, models.StateAwaitingLocation, s.State)

	_, err = Advance(&s, "Line 3")
	require.NoError(t, err)
	require.Equal(t, models.StateAwaitingShopNumber, s.State)

	for _, bad := range []string{"abc", "0", "-4", "1.5"} {
		done, err = Advance(&s, bad)
		require.ErrorAs(t, err, &ie, bad)
		require.False(t, done)
		require.Equal(t, models.StateAwaitingShopNumber, s.State)
		require.Equal(t, "Line 3", s.Draft.Location)
	}

	done, err = Advance(&s, "12")
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, models.StateAwaitingShopNumber, s.State)
	require.Equal(t, 12, s.Draft.ShopNumber)
}

func TestProductSteps(t *testing.T) {
	s := models.Session{}
	Begin(&s, models.StateAwaitingShopSelection, models.Draft{
		ShopChoices: map[string]int64{"Shop #1 - A": 10, "Shop #2 - B": 20},
	})

	_, err := Advance(&s, "Shop #3 - C")
	require.Error(t, err)
	require.Zero(t, s.Draft.ShopID)

	_, err = Advance(&s, "Shop #2 - B")
	require.NoError(t, err)
	require.EqualValues(t, 20, s.Draft.ShopID)

	inputs := []string{"Carpet", "2", "149.90", "200x300", "red"}
	for _, in := range inputs {
		done, err := Advance(&s, in)
		require.NoError(t, err)
		require.False(t, done)
	}
	require.Equal(t, models.StateAwaitingMaterial, s.State)

	done, err := Advance(&s, "wool")
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, "Carpet", s.Draft.ProductName)
	require.Equal(t, 2, s.Draft.Quantity)
	require.True(t, s.Draft.Price.Equal(decimal.RequireFromString("149.9")))
	require.Equal(t, "wool", s.Draft.Material)
}

func TestPaymentChoiceRejectsText(t *testing.T) {
	s := models.Session{State: models.StateAwaitingPaymentChoice, Draft: models.Draft{ProductID: 5, Buyer: "Bob"}}
	done, err := Advance(&s, "paid")
	require.False(t, done)
	require.Error(t, err)
	require.Equal(t, models.StateAwaitingPaymentChoice, s.State)
	require.Equal(t, "Bob", s.Draft.Buyer)
}

func TestAdvanceIdle(t *testing.T) {
	var s models.Session
	_, err := Advance(&s, "hello")
	require.ErrorIs(t, err, ErrNoStep)
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("12,50")
	require.NoError(t, err)
	require.True(t, a.Equal(decimal.RequireFromString("12.5")))

	for _, bad := range []string{"", "x", "0", "-1", "0.001"} {
		_, err := ParseAmount(bad)
		require.Error(t, err, bad)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	s, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, s.Idle())

	s.State = models.StateAwaitingShopSelection
	s.Draft.ShopChoices = map[string]int64{"a": 1}
	require.NoError(t, m.Save(ctx, 1, s))

	// mutating the caller's copy must not leak into the store
	s.Draft.ShopChoices["b"] = 2
	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, models.StateAwaitingShopSelection, got.State)
	require.Len(t, got.Draft.ShopChoices, 1)

	now = now.Add(2 * time.Minute)
	got, err = m.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, got.Idle())
	require.Equal(t, 0, m.Len())
}

func TestMemoryStoreSweepAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, 1, &models.Session{State: models.StateAwaitingName}))
	now = now.Add(30 * time.Second)
	require.NoError(t, m.Save(ctx, 2, &models.Session{State: models.StateAwaitingBuyer}))
	require.NoError(t, m.Save(ctx, 3, &models.Session{State: models.StateAwaitingPrice}))
	require.NoError(t, m.Clear(ctx, 3))

	now = now.Add(45 * time.Second)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 1, m.Len())

	// saving an idle session removes it
	require.NoError(t, m.Save(ctx, 2, &models.Session{}))
	require.Equal(t, 0, m.Len())
}

func TestRedisStoreUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: time.Second})
	defer client.Close()

	r := NewRedisStore(client, time.Minute)
	_, err = r.Get(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, "quicksell:session:42", sessionKey(42))
}

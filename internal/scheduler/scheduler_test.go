package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/storage"
)

type fakeBot struct {
	chats []int64
	fail  map[int64]bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m := c.(tgbotapi.MessageConfig)
	if f.fail[m.ChatID] {
		return tgbotapi.Message{}, errors.New("blocked by user")
	}
	f.chats = append(f.chats, m.ChatID)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakePayments struct {
	rows    []models.ExpiringPayment
	windows [][2]int64
	err     error
}

func (f *fakePayments) ListPaymentsExpiring(_ context.Context, from, to int64) ([]models.ExpiringPayment, error) {
	f.windows = append(f.windows, [2]int64{from, to})
	if f.err != nil {
		return nil, f.err
	}
	var res []models.ExpiringPayment
	for _, p := range f.rows {
		if p.ExpiresAt >= from && p.ExpiresAt < to {
			res = append(res, p)
		}
	}
	return res, nil
}

func payment(chat int64, expires time.Time) models.ExpiringPayment {
	return models.ExpiringPayment{
		Payment:    models.Payment{ID: chat, PlanType: "1 Month", ExpiresAt: expires.Unix()},
		TelegramID: chat,
	}
}

func TestRemindExpiring(t *testing.T) {
	now := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	pays := &fakePayments{rows: []models.ExpiringPayment{
		payment(1, now.Add(2*time.Hour)),     // tomorrow window
		payment(2, now.Add(50*time.Hour)),    // 3-day window
		payment(3, now.Add(30*time.Hour)),    // between windows
		payment(4, now.Add(10*24*time.Hour)), // far away
		payment(5, now.Add(60*time.Hour)),
	}}
	bot := &fakeBot{fail: map[int64]bool{5: true}}

	n := RemindExpiring(context.Background(), Deps{
		Bot: bot, Payments: pays, Log: zap.NewNop(), Location: time.UTC,
	}, now)

	require.Equal(t, 2, n)
	require.ElementsMatch(t, []int64{1, 2}, bot.chats)
	require.Len(t, pays.windows, 2)
	require.Equal(t, now.Add(48*time.Hour).Unix(), pays.windows[0][0])
	require.Equal(t, now.Unix(), pays.windows[1][0])
}

func TestRemindExpiringStopsOnError(t *testing.T) {
	pays := &fakePayments{err: errors.New("db down")}
	n := RemindExpiring(context.Background(), Deps{
		Bot: &fakeBot{}, Payments: pays, Log: zap.NewNop(), Location: time.UTC,
	}, time.Now())
	require.Zero(t, n)
	require.Len(t, pays.windows, 1)
}

func TestRemindExpiringSkipsRenewed(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	u := &models.User{TelegramID: 777, Name: "Ann"}
	require.NoError(t, db.UpsertUser(ctx, u))

	oldEnd := now.Add(60 * time.Hour)
	for _, p := range []models.Payment{
		{TransactionID: "first", CreatedAt: now.AddDate(0, -1, 0).Unix(), ExpiresAt: oldEnd.Unix()},
		{TransactionID: "renewal", CreatedAt: now.Unix(), ExpiresAt: oldEnd.AddDate(0, 0, 30).Unix()},
	} {
		p.UserID = u.ID
		p.Amount = decimal.RequireFromString("9.99")
		p.PlanType = "1 Month"
		p.Status = "completed"
		p.Method = "simulated"
		require.NoError(t, db.InsertPayment(ctx, &p))
	}

	bot := &fakeBot{}
	n := RemindExpiring(ctx, Deps{Bot: bot, Payments: db, Log: zap.NewNop(), Location: time.UTC}, now)
	require.Zero(t, n)
	require.Empty(t, bot.chats)

	// the renewal itself is reminded once it comes due
	n = RemindExpiring(ctx, Deps{Bot: bot, Payments: db, Log: zap.NewNop(), Location: time.UTC}, now.AddDate(0, 0, 30))
	require.Equal(t, 1, n)
	require.Equal(t, []int64{777}, bot.chats)
}

type countingSweeper struct{ calls int }

func (c *countingSweeper) Sweep() int { c.calls++; return 0 }

func TestStart(t *testing.T) {
	s, err := Start(Deps{
		Bot: &fakeBot{}, Payments: &fakePayments{}, Sessions: &countingSweeper{},
		Log: zap.NewNop(), Location: time.UTC,
	})
	require.NoError(t, err)
	require.Len(t, s.Jobs(), 2)
	require.NoError(t, s.Shutdown())
}

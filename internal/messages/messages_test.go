package messages

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quicksell-bot/internal/models"
)

type recorder struct {
	sent []tgbotapi.MessageConfig
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, m)
	}
	return tgbotapi.Message{MessageID: len(r.sent)}, nil
}

func (r *recorder) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSendExpiryReminder(t *testing.T) {
	now := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	p := models.ExpiringPayment{
		Payment: models.Payment{
			PlanType:  "1 Month",
			Amount:    decimal.RequireFromString("9.99"),
			ExpiresAt: now.Add(60 * time.Hour).Unix(),
		},
		TelegramID: 555,
	}

	r := &recorder{}
	require.NoError(t, SendExpiryReminder(r, p, now, time.UTC))
	require.Len(t, r.sent, 1)
	require.EqualValues(t, 555, r.sent[0].ChatID)
	require.Contains(t, r.sent[0].Text, "1 Month subscription ($9.99) expires in 3 days, on 2024-05-12")

	p.ExpiresAt = now.Add(5 * time.Hour).Unix()
	require.NoError(t, SendExpiryReminder(r, p, now, time.UTC))
	require.Contains(t, r.sent[1].Text, "expires tomorrow")
}

func TestSendSupportMessage(t *testing.T) {
	r := &recorder{}
	at := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, SendSupportMessage(r, 99, &models.User{Name: "Ann"}, 7, "help me", at))
	require.EqualValues(t, 99, r.sent[0].ChatID)
	require.Contains(t, r.sent[0].Text, "From: Ann (ID: 7)")
	require.Contains(t, r.sent[0].Text, "help me")

	require.NoError(t, SendSupportMessage(r, 99, nil, 7, "x", at))
	require.Contains(t, r.sent[1].Text, "Unknown user")
}

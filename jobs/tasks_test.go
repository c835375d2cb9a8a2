package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLedgerRowDrifted(t *testing.T) {
	clean := LedgerRow{
		StoredBilled: dec("1000"), StoredPaid: dec("400"), StoredBalance: dec("600"),
		DerivedBilled: dec("1000"), DerivedPaid: dec("400"), DerivedBalance: dec("600"),
	}
	require.False(t, clean.Drifted())

	badBalance := clean
	badBalance.StoredBalance = dec("650")
	require.True(t, badBalance.Drifted())

	badPaid := clean
	badPaid.DerivedPaid = dec("500")
	require.True(t, badPaid.Drifted())

	// Scale differences are not drift, 600 == 600.00.
	scaled := clean
	scaled.StoredBalance = dec("600.00")
	require.False(t, scaled.Drifted())
}

func TestNewSendEmailTask(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com", Subject: "hi", Body: "text"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeSendEmail, task.Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "a@example.com", payload.To)
}

type captureSender struct {
	to   string
	err  error
	sent int
}

func (c *captureSender) Send(to, subject, body string) error {
	c.sent++
	c.to = to
	return c.err
}

func TestSendEmailHandler(t *testing.T) {
	sender := &captureSender{}
	handler := NewSendEmailHandler(sender, slog.Default())

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com", Subject: "hi", Body: "text"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, sender.sent)
	require.Equal(t, "a@example.com", sender.to)
}

func TestSendEmailHandlerBadPayload(t *testing.T) {
	sender := &captureSender{}
	handler := NewSendEmailHandler(sender, slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{not json")))
	require.Error(t, err)
	require.True(t, errors.Is(err, asynq.SkipRetry))
	require.Zero(t, sender.sent)
}

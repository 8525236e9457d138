package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-order-api/events"
	"phone-order-api/models"
)

type sent struct{ to, body string }

type fakeSender struct {
	messages []sent
	err      error
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.messages = append(f.messages, sent{to, body})
	return "SM123", nil
}

func TestConfirmationMessage(t *testing.T) {
	sender := &fakeSender{}
	minutes := 25
	err := NewSMS(sender).Dispatch(context.Background(), events.OrderStatusChanged{
		OrderID:                  42,
		From:                     models.StatusPending,
		To:                       models.StatusConfirmed,
		EstimatedPreparationTime: &minutes,
		CustomerPhone:            "5551234567",
		RestaurantName:           "Tote",
		RestaurantAddress:        "123 Main Street",
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "+15551234567", sender.messages[0].to)
	assert.Contains(t, sender.messages[0].body, "#42")
	assert.Contains(t, sender.messages[0].body, "25 minutes")
	assert.Contains(t, sender.messages[0].body, "123 Main Street")
}

func TestReadyMessage(t *testing.T) {
	to, body, ok := Message(events.OrderStatusChanged{OrderID: 3, To: models.StatusReady, CustomerPhone: "5550001111"})
	require.True(t, ok)
	assert.Equal(t, "5550001111", to)
	assert.Contains(t, body, "ready for pickup")
	assert.Contains(t, body, "our restaurant")
}

func TestTimeUpdateMessage(t *testing.T) {
	_, body, ok := Message(events.OrderTimeUpdated{OrderID: 9, Minutes: 45, RestaurantName: "Tote"})
	require.True(t, ok)
	assert.Contains(t, body, "45 minutes")
}

func TestSilentEvents(t *testing.T) {
	sender := &fakeSender{}
	sms := NewSMS(sender)

	for _, e := range []events.Event{
		events.OrderCreated{OrderID: 1},
		events.OrderStatusChanged{To: models.StatusPreparing},
		events.OrderStatusChanged{To: models.StatusConfirmed}, // no time known
		events.OrderStatusChanged{To: models.StatusCancelled},
	} {
		require.NoError(t, sms.Dispatch(context.Background(), e))
	}
	assert.Empty(t, sender.messages)
}

func TestSendFailureIsReturned(t *testing.T) {
	sms := NewSMS(&fakeSender{err: errors.New("twilio down")})
	err := sms.Dispatch(context.Background(), events.OrderStatusChanged{To: models.StatusReady, CustomerPhone: "5551234567"})
	assert.ErrorContains(t, err, "twilio down")
}

func TestTwilioSenderHonoursCancelledContext(t *testing.T) {
	sender := NewTwilioSender("AC00000000000000000000000000000000", "token", "+15550000000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sid, err := sender.Send(ctx, "+15551234567", "Your order is ready")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sid)
}

func TestDispatchStopsWhenDeadlinePassed(t *testing.T) {
	sms := NewSMS(NewTwilioSender("AC00000000000000000000000000000000", "token", "+15550000000"))
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	err := sms.Dispatch(ctx, events.OrderStatusChanged{To: models.StatusReady, CustomerPhone: "5551234567"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// Package notify texts customers about their orders.
package notify

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"phone-order-api/events"
	"phone-order-api/models"
	"phone-order-api/phone"
)

// Sender delivers one text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// SMS turns order events into customer text messages. It implements
// events.Dispatcher.
type SMS struct {
	Sender Sender
}

func NewSMS(sender Sender) *SMS {
	return &SMS{Sender: sender}
}

func (s *SMS) Dispatch(ctx context.Context, event events.Event) error {
	to, body, ok := Message(event)
	if !ok {
		return nil
	}
	sid, err := s.Sender.Send(ctx, phone.E164(to), body)
	if err != nil {
		return fmt.Errorf("send %s sms: %w", event.Type(), err)
	}
	log.WithFields(log.Fields{"event": event.Type(), "message_sid": sid}).Info("SMS sent to customer")
	return nil
}

// Message renders the text for an event. ok is false for events customers
// are not told about.
func Message(event events.Event) (to, body string, ok bool) {
	switch e := event.(type) {
	case events.OrderStatusChanged:
		restaurant := e.RestaurantName
		if restaurant == "" {
			restaurant = "our restaurant"
		}
		switch e.To {
		case models.StatusConfirmed:
			if e.EstimatedPreparationTime == nil {
				return "", "", false
			}
			body = fmt.Sprintf("Thanks for ordering from %s! Order #%d is confirmed.\n\n"+
				"Estimated preparation time: %d minutes\nPickup location: %s\n\n"+
				"We'll text you again when it's ready.",
				restaurant, e.OrderID, *e.EstimatedPreparationTime, e.RestaurantAddress)
			return e.CustomerPhone, body, true
		case models.StatusReady:
			body = fmt.Sprintf("Good news! Order #%d from %s is ready for pickup.", e.OrderID, restaurant)
			return e.CustomerPhone, body, true
		}
	case events.OrderTimeUpdated:
		restaurant := e.RestaurantName
		if restaurant == "" {
			restaurant = "our restaurant"
		}
		body = fmt.Sprintf("Update on order #%d from %s: sorry, we need a little longer. "+
			"The new estimated preparation time is %d minutes. Thanks for your patience.",
			e.OrderID, restaurant, e.Minutes)
		return e.CustomerPhone, body, true
	}
	return "", "", false
}

const sendTimeout = 10 * time.Second

// TwilioSender sends messages through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(sendTimeout)
	return &TwilioSender{client: client, from: from}
}

// Send creates the message. twilio-go takes no context, so ctx is only
// checked before the request goes out; once sent the call cannot be
// cancelled and is bounded by sendTimeout instead.
func (t *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// Package voice answers the telephony provider's inbound-call webhook by
// registering the call with the ordering agent and dialing it over SIP. It
// also receives the agent platform's signed call lifecycle events.
package voice

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"phone-order-api/phone"
)

const apologyMessage = "Sorry, we are unable to take your call right now. Please try again later."

// twimlResponse is the markup the telephony provider executes for the call.
type twimlResponse struct {
	XMLName xml.Name   `xml:"Response"`
	Dial    *twimlDial `xml:"Dial,omitempty"`
	Say     string     `xml:"Say,omitempty"`
	Hangup  *struct{}  `xml:"Hangup,omitempty"`
}

type twimlDial struct {
	Sip string `xml:"Sip"`
}

type Bridge struct {
	Registrar Registrar
	SIPDomain string

	// APIKey signs the call events posted to /webhook.
	APIKey string
}

func NewBridge(registrar Registrar, sipDomain, apiKey string) *Bridge {
	return &Bridge{Registrar: registrar, SIPDomain: sipDomain, APIKey: apiKey}
}

// Webhook handles POST /voice-webhook.
func (b *Bridge) Webhook(c *gin.Context) {
	from := firstNonEmpty(c.PostForm("From"), c.PostForm("Caller"))
	to := firstNonEmpty(c.PostForm("To"), c.PostForm("Called"))
	if from == "" || to == "" {
		log.WithFields(log.Fields{"from": from, "to": to}).Warn("Voice webhook without caller or callee")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "From and To are required"})
		return
	}

	entry := log.WithFields(log.Fields{
		"call_sid": c.PostForm("CallSid"),
		"caller":   phone.FromCaller(from),
	})

	callID, err := b.Registrar.RegisterCall(c.Request.Context(), from, to)
	if err != nil {
		entry.WithError(err).Error("Failed to register call with agent")
		c.XML(http.StatusOK, twimlResponse{Say: apologyMessage, Hangup: &struct{}{}})
		return
	}

	entry.WithField("call_id", callID).Info("Call registered, dialing agent")
	c.XML(http.StatusOK, twimlResponse{
		Dial: &twimlDial{Sip: "sip:" + callID + "@" + b.SIPDomain},
	})
}

// Health handles GET /health on the webhook server.
func (b *Bridge) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "voice webhook"})
}

// Router builds the engine for the webhook server.
func (b *Bridge) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware...)
	r.Use(gin.Recovery())
	r.POST("/voice-webhook", b.Webhook)
	r.POST("/webhook", b.Events)
	r.GET("/health", b.Health)
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

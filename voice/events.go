package voice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SignatureHeader carries the agent platform's signature of the event body.
const SignatureHeader = "X-Retell-Signature"

// signatureTolerance bounds the age of a timestamped signature.
const signatureTolerance = 5 * time.Minute

const maxEventBody = 1 << 20

type callEvent struct {
	Event string    `json:"event"`
	Call  *callInfo `json:"call"`
	Data  *callInfo `json:"data"`
}

type callInfo struct {
	CallID     string `json:"call_id"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	CallStatus string `json:"call_status"`
}

func (e callEvent) info() callInfo {
	switch {
	case e.Call != nil:
		return *e.Call
	case e.Data != nil:
		return *e.Data
	}
	return callInfo{}
}

// Sign returns the hex HMAC-SHA256 of payload keyed with apiKey.
func Sign(apiKey string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature accepts either a bare hex digest of the body or the
// timestamped form "v=<unix ms>,d=<hex digest of body+timestamp>".
func VerifySignature(apiKey string, body []byte, signature string, now time.Time) bool {
	if apiKey == "" || signature == "" {
		return false
	}
	if !strings.HasPrefix(signature, "v=") {
		return hmac.Equal([]byte(Sign(apiKey, body)), []byte(strings.ToLower(signature)))
	}

	var stamp, digest string
	for _, part := range strings.Split(signature, ",") {
		switch {
		case strings.HasPrefix(part, "v="):
			stamp = strings.TrimPrefix(part, "v=")
		case strings.HasPrefix(part, "d="):
			digest = strings.TrimPrefix(part, "d=")
		}
	}
	ms, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil || digest == "" {
		return false
	}
	age := now.Sub(time.UnixMilli(ms))
	if age > signatureTolerance || age < -signatureTolerance {
		return false
	}
	payload := append(append([]byte(nil), body...), stamp...)
	return hmac.Equal([]byte(Sign(apiKey, payload)), []byte(strings.ToLower(digest)))
}

// Events handles POST /webhook, the agent platform's call lifecycle
// notifications. Events are logged only.
func (b *Bridge) Events(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if !VerifySignature(b.APIKey, body, c.GetHeader(SignatureHeader), time.Now()) {
		log.WithField("remote", c.ClientIP()).Warn("Call event with invalid signature")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var event callEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.WithError(err).Warn("Malformed call event")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	call := event.info()
	entry := log.WithFields(log.Fields{
		"event":   event.Event,
		"call_id": call.CallID,
	})
	switch event.Event {
	case "call_started":
		entry.WithField("from", call.FromNumber).Info("Call started")
	case "call_ended":
		entry.WithField("status", call.CallStatus).Info("Call ended")
	case "call_analyzed":
		entry.Info("Call analyzed")
	default:
		entry.Warn("Unknown call event")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

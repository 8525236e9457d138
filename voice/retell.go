package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Registrar registers an inbound call with the conversational agent and
// returns the call id used to route the SIP leg.
type Registrar interface {
	RegisterCall(ctx context.Context, from, to string) (string, error)
}

// RetellClient talks to the agent service's phone-call registration endpoint.
type RetellClient struct {
	BaseURL string
	APIKey  string
	AgentID string
	HTTP    *http.Client
}

func NewRetellClient(baseURL, apiKey, agentID string) *RetellClient {
	return &RetellClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		AgentID: agentID,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type registerCallRequest struct {
	AgentID    string `json:"agent_id"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	Direction  string `json:"direction"`
}

type registerCallResponse struct {
	CallID string `json:"call_id"`
}

func (r *RetellClient) RegisterCall(ctx context.Context, from, to string) (string, error) {
	body, err := json.Marshal(registerCallRequest{
		AgentID:    r.AgentID,
		FromNumber: from,
		ToNumber:   to,
		Direction:  "inbound",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v2/register-phone-call", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build register call request")
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "register call")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("register call: agent service answered %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out registerCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode register call response")
	}
	if out.CallID == "" {
		return "", errors.New("register call: response has no call_id")
	}
	return out.CallID, nil
}

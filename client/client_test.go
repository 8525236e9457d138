package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-order-api/models"
)

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, nil), srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginStoresTokenAndInjectsIt(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			var req models.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "staff@example.com", req.Email)
			writeJSON(w, http.StatusOK, models.TokenResponse{
				AccessToken: "tok_1",
				TokenType:   "bearer",
				User:        models.User{ID: 7, Username: "staff"},
			})
		case "/users/me":
			assert.Equal(t, "Bearer tok_1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"user": models.User{ID: 7, Username: "staff"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := c.Login(context.Background(), "staff@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok_1", c.Session.Token())
	assert.Equal(t, uint(7), c.Session.User().ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "staff", me.Username)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
	})
	require.NoError(t, c.Session.Set("stale", &models.User{ID: 1}))

	_, err := c.ListOrders(context.Background(), "")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, c.Session.Authenticated())
	assert.Nil(t, c.Session.User())
}

func TestNotFoundAndAPIErrors(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/99":
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
		case "/orders/1/status":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "Invalid state transition",
				"reason": "invalid status transition",
			})
		}
	})
	require.NoError(t, c.Session.Set("tok", nil))

	_, err := c.GetOrder(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.UpdateOrderStatus(context.Background(), 1, models.UpdateOrderStatusRequest{Status: models.StatusPreparing})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Invalid state transition")
	assert.True(t, c.Session.Authenticated())
}

func TestConfirmOrderBody(t *testing.T) {
	var bodies []models.UpdateOrderStatusRequest
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/5/status", r.URL.Path)
		var req models.UpdateOrderStatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		bodies = append(bodies, req)
		writeJSON(w, http.StatusOK, map[string]interface{}{"order": models.Order{ID: 5, Status: models.StatusConfirmed}})
	})

	order, err := c.ConfirmOrder(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)

	_, err = c.ConfirmOrder(context.Background(), 5, 45)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Nil(t, bodies[0].EstimatedPreparationTime)
	require.NotNil(t, bodies[1].EstimatedPreparationTime)
	assert.Equal(t, 45, *bodies[1].EstimatedPreparationTime)
}

func TestToggleSendsOnlyAvailability(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]interface{}{"is_available": false}, raw)
		writeJSON(w, http.StatusOK, map[string]interface{}{"item": models.MenuItem{ID: 3, IsAvailable: false}})
	})

	item, err := c.ToggleMenuItemAvailability(context.Background(), 3, false)
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)
}

func TestListMenuItemsQuery(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pizza", r.URL.Query().Get("category"))
		assert.Equal(t, "true", r.URL.Query().Get("available"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"count": 1, "menu": []models.MenuItem{{ID: 1}}})
	})

	items, err := c.ListMenuItems(context.Background(), CatalogFilter{Category: "pizza", AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}

	s, err := NewSession(store)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Set("tok_9", &models.User{ID: 3, Username: "ops"}))

	restored, err := NewSession(store)
	require.NoError(t, err)
	assert.Equal(t, "tok_9", restored.Token())
	assert.Equal(t, "ops", restored.User().Username)

	require.NoError(t, restored.Clear())
	again, err := NewSession(store)
	require.NoError(t, err)
	assert.False(t, again.Authenticated())
}

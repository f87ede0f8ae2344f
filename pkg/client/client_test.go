package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(srv.URL+"/", opts...)
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c
}

func TestClientRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("today sends guest and profile", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/schedule/today", r.URL.Path)
			assert.Equal(t, "42", r.URL.Query().Get("guest_id"))
			assert.Equal(t, "3", r.URL.Query().Get("profile_id"))
			assert.Equal(t, "Bearer guest-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"has_assignment":true,"is_me":true,"assigned_to":{"id":42,"name":"Nimal Perera"},"date":"2024-06-01","schedule":[]}`))
		}, WithToken("guest-token"))

		profile := int64(3)
		today, err := c.Today(ctx, 42, &profile)
		require.NoError(t, err)
		assert.True(t, today.IsMe)
		assert.Equal(t, "Nimal Perera", today.AssignedTo.Name)
	})

	t.Run("set completion posts the item", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/progress", r.URL.Path)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "mission", body["item_type"])
			assert.Equal(t, true, body["is_completed"])
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		err := c.SetCompletion(ctx, &models.SetCompletionRequest{GuestID: 1, ItemID: 9, ItemType: models.ItemMission, IsCompleted: true})
		assert.NoError(t, err)
	})

	t.Run("reorder picks the list endpoint", func(t *testing.T) {
		var paths []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			var body models.ReorderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotNil(t, body.Updates)
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		require.NoError(t, c.Reorder(ctx, models.ItemMission, []models.OrderUpdate{{ID: 1, DisplayOrder: 0}}))
		require.NoError(t, c.Reorder(ctx, models.ItemStep, nil))
		assert.Equal(t, []string{"/api/missions/reorder", "/api/steps/reorder"}, paths)
	})

	t.Run("clear assignment query", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "2", r.URL.Query().Get("unit_id"))
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("date"))
			_, _ = w.Write([]byte(`{"success":true}`))
		})
		assert.NoError(t, c.ClearAssignment(ctx, 2, "2024-01-01"))
	})

	t.Run("login keeps the token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/admin/login" {
				_, _ = w.Write([]byte(`{"success":true,"token":"admin-token","expires_at":1}`))
				return
			}
			assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"guests":3,"steps":4,"completions":5,"unit_distribution":[]}`))
		})

		_, err := c.Login(ctx, "admin", "secret")
		require.NoError(t, err)
		stats, err := c.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Guests)
	})
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("api error carries code and message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden","message":"Token does not belong to this guest","code":"GUEST_MISMATCH"}`))
		})

		_, err := c.Progress(ctx, 5, "")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, "GUEST_MISMATCH", apiErr.Code)
		assert.Equal(t, "Token does not belong to this guest", apiErr.Message)
	})

	t.Run("non-json error body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		})

		_, err := c.Assignments(ctx, 1, "", "")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Bad Gateway", apiErr.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-release
		}, WithTimeout(20*time.Millisecond))
		defer close(release)

		_, err := c.ProfileContent(ctx, 1)
		assert.Error(t, err)
	})
}

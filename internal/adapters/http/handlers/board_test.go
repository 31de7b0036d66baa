package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/display"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

func setupBoardRouter(t *testing.T) (*gin.Engine, *notify.Feed, *display.Board) {
	t.Helper()

	feed := notify.NewFeed(notify.FeedConfig{HistorySize: 5, Logger: slog.New(slog.DiscardHandler)})
	board := display.NewBoard()

	router := gin.New()
	NewBoardHandler(feed, board).RegisterBoardRoutes(router.Group("/api/v1"))

	return router, feed, board
}

func TestBoardHandler_ListNotifications(t *testing.T) {
	router, feed, _ := setupBoardRouter(t)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		feed.Notify(ctx, msg)
	}

	tests := []struct {
		name     string
		path     string
		wantCode int
		want     []string
	}{
		{name: "default limit", path: "/api/v1/notifications", wantCode: http.StatusOK, want: []string{"one", "two", "three"}},
		{name: "explicit limit keeps newest", path: "/api/v1/notifications?limit=2", wantCode: http.StatusOK, want: []string{"two", "three"}},
		{name: "limit out of range", path: "/api/v1/notifications?limit=501", wantCode: http.StatusBadRequest},
		{name: "limit not a number", path: "/api/v1/notifications?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodGet, tt.path, "")

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.want == nil {
				return
			}

			var resp dto.NotificationsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			got := make([]string, 0, len(resp.Notifications))
			for _, n := range resp.Notifications {
				got = append(got, n.Message)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoardHandler_GetDisplay(t *testing.T) {
	router, _, board := setupBoardRouter(t)

	w := perform(router, http.MethodGet, "/api/v1/display", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"quotes":[],"version":0}`, w.Body.String())

	board.Refresh(context.Background(), domain.SeedQuotes())

	w = perform(router, http.MethodGet, "/api/v1/display", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.DisplayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Quotes, 3)
	assert.Equal(t, uint64(1), resp.Version)
	assert.NotNil(t, resp.RefreshedAt)
	assert.Nil(t, resp.Current)
}

func TestBoardHandler_ShowNext(t *testing.T) {
	router, _, board := setupBoardRouter(t)

	w := perform(router, http.MethodPost, "/api/v1/display/next", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	board.Refresh(context.Background(), domain.SeedQuotes())

	w = perform(router, http.MethodPost, "/api/v1/display/next?category=Life", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.DisplayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Current)
	assert.Equal(t, "Life", resp.Current.Category)

	w = perform(router, http.MethodPost, "/api/v1/display/next?category=all", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/display/next?category=Unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

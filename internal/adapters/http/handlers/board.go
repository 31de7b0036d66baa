package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/display"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// DefaultNotificationLimit is used when the request does not set a limit.
const DefaultNotificationLimit = 20

// NotificationSource lists recently delivered notifications.
type NotificationSource interface {
	Recent(limit int) []notify.Notification
}

// DisplayBoard is the rendered view of the quote collection.
type DisplayBoard interface {
	Snapshot() display.Snapshot
	Show(category string) (domain.Quote, bool)
}

// BoardHandler exposes what the user currently sees: the display board and
// the notification feed.
type BoardHandler struct {
	feed  NotificationSource
	board DisplayBoard
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(feed NotificationSource, board DisplayBoard) *BoardHandler {
	return &BoardHandler{feed: feed, board: board}
}

type notificationsQuery struct {
	Limit int `form:"limit" validate:"gte=0,lte=500"`
}

// ListNotifications handles GET /api/v1/notifications[?limit=N]
func (h *BoardHandler) ListNotifications(c *gin.Context) {
	var query notificationsQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if query.Limit == 0 {
		query.Limit = DefaultNotificationLimit
	}

	recent := h.feed.Recent(query.Limit)

	resp := dto.NotificationsResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(recent)),
	}
	for _, n := range recent {
		resp.Notifications = append(resp.Notifications, dto.NotificationResponse{
			Seq:     n.Seq,
			Message: n.Message,
			At:      n.At,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetDisplay handles GET /api/v1/display
func (h *BoardHandler) GetDisplay(c *gin.Context) {
	c.JSON(http.StatusOK, displayResponse(h.board.Snapshot()))
}

// ShowNext handles POST /api/v1/display/next[?category=...]
// It picks a new current quote; "all" or no category means any quote.
func (h *BoardHandler) ShowNext(c *gin.Context) {
	var query dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	if _, ok := h.board.Show(query.Category); !ok {
		dto.HandleError(c, domain.NewNotFoundError("quotes in category", query.Category))
		return
	}

	c.JSON(http.StatusOK, displayResponse(h.board.Snapshot()))
}

// RegisterBoardRoutes registers display and notification routes.
func (h *BoardHandler) RegisterBoardRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.ListNotifications)
	rg.GET("/display", h.GetDisplay)
	rg.POST("/display/next", h.ShowNext)
}

func displayResponse(s display.Snapshot) dto.DisplayResponse {
	resp := dto.DisplayResponse{
		Quotes:  dto.QuotesFromDomain(s.Quotes),
		Version: s.Version,
	}

	if s.Current != nil {
		current := dto.QuoteFromDomain(*s.Current)
		resp.Current = &current
	}

	if !s.RefreshedAt.IsZero() {
		refreshed := s.RefreshedAt
		resp.RefreshedAt = &refreshed
	}

	return resp
}

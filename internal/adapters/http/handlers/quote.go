package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes[?category=...]
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Only quotes in this category"
// @Success 200 {object} dto.QuoteListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var query dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quotes := h.service.ListQuotes(c.Request.Context(), query.Category)

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(quotes))
}

// AddQuote handles POST /api/v1/quotes
//
// @Summary Add a local quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.AddQuoteRequest true "Quote to add"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.QuoteFromDomain(quote))
}

// ImportQuotes handles POST /api/v1/quotes/import
// Invalid entries and texts already stored are skipped and counted.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json
// @Produce json
// @Param quotes body dto.ImportRequest true "Quotes to import"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	var req dto.ImportRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	result, err := h.service.ImportQuotes(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportFromApp(result))
}

// GetRandomQuote handles GET /api/v1/quotes/random[?category=...]
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	var query dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.RandomQuote(c.Request.Context(), query.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteFromDomain(quote))
}

// ListCategories handles GET /api/v1/categories
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	categories := h.service.Categories(c.Request.Context())
	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: categories})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.POST("/import", h.ImportQuotes)
	quotes.GET("/random", h.GetRandomQuote)

	rg.GET("/categories", h.ListCategories)
}

package handler

import (
	"net/http"
	"strconv"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/books と /api/promotions の公開API
type BookHandler struct {
	books  *usecase.BookUsecase
	promos *usecase.PromotionUsecase
}

// DI
func NewBookHandler(books *usecase.BookUsecase, promos *usecase.PromotionUsecase) *BookHandler {
	return &BookHandler{books: books, promos: promos}
}

func (h *BookHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/books", h.list)
	api.GET("/books/:id", h.detail)
	api.POST("/books/calculate", h.calculate)
	api.GET("/promotions", h.promotions)
}

func (h *BookHandler) list(c echo.Context) error {
	out, err := h.books.ListBooks(c.Request().Context(), usecase.ListBooksInput{
		Search:  c.QueryParam("search"),
		Display: c.QueryParam("display"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	b, err := h.books.GetBook(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// body: [{id, quantity}]
func (h *BookHandler) calculate(c echo.Context) error {
	var req []usecase.PriceItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.books.Calculate(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) promotions(c echo.Context) error {
	out, err := h.promos.ListPromotions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

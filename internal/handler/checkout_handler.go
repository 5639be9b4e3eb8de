package handler

import (
	"net/http"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// user-dataはログイン必須、processはゲストも可
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/api/checkout")

	g.GET("/user-data", h.userData, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
	g.POST("/process", h.process, middleware.OptionalAuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
}

func (h *CheckoutHandler) userData(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UserData(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) process(c echo.Context) error {
	//ゲストは0
	userID, _ := getUserIDFromContext(c)

	var req usecase.ProcessCheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	key := c.Request().Header.Get(idempotencyHeader)
	out, err := h.uc.Process(c.Request().Context(), userID, key, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

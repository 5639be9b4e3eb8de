package server

import (
	"bookstore/internal/config"
	"bookstore/internal/handler"
	"bookstore/internal/repository"

	"github.com/labstack/echo/v4"
)

// main.goで作って渡す
type Handlers struct {
	Auth     *handler.AuthHandler
	Books    *handler.BookHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Profile  *handler.ProfileHandler
	Admin    *handler.AdminHandler

	//TokenVersionGuardで使う
	Users repository.UserRepository
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, loginLimit echo.MiddlewareFunc) {
	h.Auth.RegisterRoutes(e, cfg, h.Users, loginLimit)
	h.Books.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg, h.Users)
	h.Checkout.RegisterRoutes(e, cfg, h.Users)
	h.Orders.RegisterRoutes(e, cfg, h.Users)
	h.Profile.RegisterRoutes(e, cfg, h.Users)
	h.Admin.RegisterRoutes(e, cfg, h.Users)
}

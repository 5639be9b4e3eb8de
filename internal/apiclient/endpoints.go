package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// --- auth ---

func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, "/api/profile", nil, in, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// 成功後は今のトークンは使えない
func (c *Client) ChangePassword(ctx context.Context, in PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/api/profile/password", nil, in, nil)
}

// --- catalog / pricing ---

// displayは "featured" / "coming-soon" / ""（全件）
func (c *Client) ListBooks(ctx context.Context, search, display string) ([]Book, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if display != "" {
		q.Set("display", display)
	}
	var out []Book
	if err := c.do(ctx, http.MethodGet, "/api/books", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBook(ctx context.Context, id int64) (Book, error) {
	var out Book
	if err := c.do(ctx, http.MethodGet, "/api/books/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return Book{}, err
	}
	return out, nil
}

func (c *Client) Calculate(ctx context.Context, items []PriceItem) (PriceCalculation, error) {
	if items == nil {
		items = []PriceItem{}
	}
	var out PriceCalculation
	if err := c.do(ctx, http.MethodPost, "/api/books/calculate", nil, items, &out); err != nil {
		return PriceCalculation{}, err
	}
	return out, nil
}

func (c *Client) ListPromotions(ctx context.Context) ([]Promotion, error) {
	var out []Promotion
	if err := c.do(ctx, http.MethodGet, "/api/promotions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- cart (要ログイン) ---

func (c *Client) GetCart(ctx context.Context) ([]CartLine, error) {
	var out []CartLine
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, bookID, quantity int64) ([]CartLine, error) {
	var out []CartLine
	in := CartItemRequest{BookID: bookID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/api/cart", nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// quantity <= 0 はサーバー側で行削除
func (c *Client) SetCartQuantity(ctx context.Context, bookID, quantity int64) ([]CartLine, error) {
	var out []CartLine
	in := CartItemRequest{BookID: bookID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, "/api/cart", nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, bookID int64) ([]CartLine, error) {
	var out []CartLine
	if err := c.do(ctx, http.MethodDelete, "/api/cart/"+strconv.FormatInt(bookID, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil, nil)
}

func (c *Client) MergeCart(ctx context.Context, items []CartItemRequest) ([]CartLine, error) {
	if items == nil {
		items = []CartItemRequest{}
	}
	var out []CartLine
	if err := c.do(ctx, http.MethodPost, "/api/cart/merge", nil, items, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- checkout / orders ---

func (c *Client) CheckoutUserData(ctx context.Context) (CheckoutUserData, error) {
	var out CheckoutUserData
	if err := c.do(ctx, http.MethodGet, "/api/checkout/user-data", nil, nil, &out); err != nil {
		return CheckoutUserData{}, err
	}
	return out, nil
}

// 同じkeyで再送しても二重に処理されない
func (c *Client) ProcessCheckout(ctx context.Context, idempotencyKey string, req ProcessCheckoutRequest) (CheckoutConfirmation, error) {
	var out CheckoutConfirmation
	err := c.do(ctx, http.MethodPost, "/api/checkout/process", nil, req, &out,
		withHeader(idempotencyHeader, idempotencyKey))
	if err != nil {
		return CheckoutConfirmation{}, err
	}
	return out, nil
}

func (c *Client) RecordOrder(ctx context.Context, idempotencyKey string, req RecordOrderRequest) (Order, error) {
	var out Order
	err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &out,
		withHeader(idempotencyHeader, idempotencyKey))
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, page, limit int) (OrderList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out OrderList
	if err := c.do(ctx, http.MethodGet, "/api/orders", q, nil, &out); err != nil {
		return OrderList{}, err
	}
	return out, nil
}

package shop

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"bookstore/internal/apiclient"
	"bookstore/internal/shop/storage"
)

// =====================
// Mock: RemoteCartAPI
// =====================

type MockRemoteCartAPI struct {
	mock.Mock
}

func (m *MockRemoteCartAPI) GetCart(ctx context.Context) ([]apiclient.CartLine, error) {
	args := m.Called(ctx)
	lines, _ := args.Get(0).([]apiclient.CartLine)
	return lines, args.Error(1)
}

func (m *MockRemoteCartAPI) AddToCart(ctx context.Context, bookID, quantity int64) ([]apiclient.CartLine, error) {
	args := m.Called(ctx, bookID, quantity)
	lines, _ := args.Get(0).([]apiclient.CartLine)
	return lines, args.Error(1)
}

func (m *MockRemoteCartAPI) SetCartQuantity(ctx context.Context, bookID, quantity int64) ([]apiclient.CartLine, error) {
	args := m.Called(ctx, bookID, quantity)
	lines, _ := args.Get(0).([]apiclient.CartLine)
	return lines, args.Error(1)
}

func (m *MockRemoteCartAPI) RemoveFromCart(ctx context.Context, bookID int64) ([]apiclient.CartLine, error) {
	args := m.Called(ctx, bookID)
	lines, _ := args.Get(0).([]apiclient.CartLine)
	return lines, args.Error(1)
}

func (m *MockRemoteCartAPI) ClearCart(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRemoteCartAPI) MergeCart(ctx context.Context, items []apiclient.CartItemRequest) ([]apiclient.CartLine, error) {
	args := m.Called(ctx, items)
	lines, _ := args.Get(0).([]apiclient.CartLine)
	return lines, args.Error(1)
}

// =====================
// Mock: PricingAPI
// =====================

type MockPricingAPI struct {
	mock.Mock
}

func (m *MockPricingAPI) Calculate(ctx context.Context, items []apiclient.PriceItem) (apiclient.PriceCalculation, error) {
	args := m.Called(ctx, items)
	res, _ := args.Get(0).(apiclient.PriceCalculation)
	return res, args.Error(1)
}

func (m *MockPricingAPI) ListPromotions(ctx context.Context) ([]apiclient.Promotion, error) {
	args := m.Called(ctx)
	promos, _ := args.Get(0).([]apiclient.Promotion)
	return promos, args.Error(1)
}

// =====================
// Mock: OrderAPI
// =====================

type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) ProcessCheckout(ctx context.Context, idempotencyKey string, req apiclient.ProcessCheckoutRequest) (apiclient.CheckoutConfirmation, error) {
	args := m.Called(ctx, idempotencyKey, req)
	res, _ := args.Get(0).(apiclient.CheckoutConfirmation)
	return res, args.Error(1)
}

func (m *MockOrderAPI) RecordOrder(ctx context.Context, idempotencyKey string, req apiclient.RecordOrderRequest) (apiclient.Order, error) {
	args := m.Called(ctx, idempotencyKey, req)
	res, _ := args.Get(0).(apiclient.Order)
	return res, args.Error(1)
}

func (m *MockOrderAPI) ListOrders(ctx context.Context, page, limit int) (apiclient.OrderList, error) {
	args := m.Called(ctx, page, limit)
	res, _ := args.Get(0).(apiclient.OrderList)
	return res, args.Error(1)
}

// =====================
// Mock: CatalogAPI
// =====================

type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) ListBooks(ctx context.Context, search, display string) ([]apiclient.Book, error) {
	args := m.Called(ctx, search, display)
	books, _ := args.Get(0).([]apiclient.Book)
	return books, args.Error(1)
}

func (m *MockCatalogAPI) GetBook(ctx context.Context, id int64) (apiclient.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(apiclient.Book)
	return b, args.Error(1)
}

// =====================
// Helper
// =====================

var errDiskFull = errors.New("disk full")

// 書き込みだけ失敗するKV
type readOnlyKV struct {
	*storage.MemoryKV
}

func (readOnlyKV) Set(context.Context, string, []byte) error { return errDiskFull }
func (readOnlyKV) Delete(context.Context, string) error      { return errDiskFull }

// 読み込みが失敗し、書き込み回数を数えるKV
type failingKV struct {
	storage.KV
	getErr error
	sets   int
}

func (k *failingKV) Get(context.Context, string) ([]byte, error) { return nil, k.getErr }

func (k *failingKV) Set(ctx context.Context, key string, v []byte) error {
	k.sets++
	return k.KV.Set(ctx, key, v)
}

func unauthorizedErr() error {
	return &apiclient.StatusError{Method: "GET", Path: "/api/cart", StatusCode: 401, Message: "unauthorized"}
}

func serverErr() error {
	return &apiclient.StatusError{Method: "POST", Path: "/api/cart", StatusCode: 500, Message: "internal error"}
}

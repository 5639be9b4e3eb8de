package shop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bookstore/internal/apiclient"
	"bookstore/internal/shop/storage"
)

// 注文履歴の保存キー
const OrderHistoryKey = "bookstore_orders"

// 確定した注文。作ったあとは変更しない
type Order struct {
	ID        string          `json:"id"`
	RemoteID  int64           `json:"remoteID,omitempty"`
	Items     []CartLine      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	PromoCode string          `json:"promoCode,omitempty"`
	Date      time.Time       `json:"date"`
	EmailSent bool            `json:"emailSent"`
}

// 端末ローカルの追記専用の注文履歴。壊れた記録は空として扱い、次の追記で上書きする
type OrderHistory struct {
	mu  sync.Mutex
	kv  storage.KV
	log *zap.Logger
}

func NewOrderHistory(kv storage.KV, log *zap.Logger) *OrderHistory {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHistory{kv: kv, log: log}
}

func (h *OrderHistory) Append(ctx context.Context, o Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	orders, err := h.list(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, o)

	raw, err := json.Marshal(orders)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := h.kv.Set(ctx, OrderHistoryKey, raw); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// 古い順。読めないときは空
func (h *OrderHistory) List(ctx context.Context) ([]Order, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	orders, err := h.list(ctx)
	if err != nil {
		h.log.Warn("order history unreadable, showing empty", zap.Error(err))
		return []Order{}, nil
	}
	return orders, nil
}

func (h *OrderHistory) list(ctx context.Context) ([]Order, error) {
	raw, err := h.kv.Get(ctx, OrderHistoryKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []Order{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	//読み込み失敗と違い、壊れた中身は上書きしてよい
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		h.log.Warn("order history corrupt, starting over", zap.Error(err))
		return []Order{}, nil
	}
	return orders, nil
}

type OrderListAPI interface {
	ListOrders(ctx context.Context, page, limit int) (apiclient.OrderList, error)
}

// ログイン中はサーバーの履歴を使う。新しい順
func ListRemoteOrders(ctx context.Context, api OrderListAPI, page, limit int) ([]Order, int64, error) {
	res, err := api.ListOrders(ctx, page, limit)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return nil, 0, &UnauthorizedError{Err: err}
		}
		return nil, 0, err
	}

	out := make([]Order, 0, len(res.Items))
	for _, o := range res.Items {
		items := make([]CartLine, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, CartLine{
				BookID:    it.BookID,
				Title:     it.Title,
				Author:    it.Author,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}
		out = append(out, Order{
			RemoteID:  o.ID,
			Items:     items,
			Total:     o.GrandTotal,
			PromoCode: o.PromoCode,
			Date:      o.CreatedAt,
		})
	}
	return out, res.Total, nil
}

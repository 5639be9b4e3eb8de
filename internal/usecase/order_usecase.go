package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewOrderUsecase(tx repo.TransactionManager, clock Clock) *OrderUsecase {
	return &OrderUsecase{tx: tx, clock: clock}
}

type OrderCartItem struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

type AppliedPromoInput struct {
	ID        int64  `json:"id"`
	PromoCode string `json:"promoCode"`
}

// POST /api/orders の入力
type RecordOrderInput struct {
	CartItems    []OrderCartItem    `json:"cartItems"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	AppliedPromo *AppliedPromoInput `json:"appliedPromo"`
}

type OrderItemOutput struct {
	BookID    int64           `json:"bookID"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID         int64             `json:"orderID"`
	UserID     int64             `json:"userID"`
	PromoCode  string            `json:"promoCode,omitempty"`
	GrandTotal decimal.Decimal   `json:"grandTotal"`
	CreatedAt  time.Time         `json:"createdAt"`
	Items      []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 同じキーの注文が先にコミットされた。失敗したtxの外で引き直す
var errIdempotencyKeyTaken = errors.New("idempotency key taken")

// 注文を記録する。同じキーなら同じ結果
func (u *OrderUsecase) RecordOrder(ctx context.Context, userID int64, idempotencyKey string, in RecordOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}
	if len(in.CartItems) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if in.TotalAmount.IsNegative() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid totalAmount")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := findOrderByKey(ctx, r, userID, key)
		if err != nil {
			return err
		}
		if found {
			out = existing
			return nil
		}

		//本のスナップショット
		ids := make([]int64, 0, len(in.CartItems))
		for _, ci := range in.CartItems {
			if ci.ID <= 0 || ci.Quantity <= 0 {
				return NewHTTPError(http.StatusBadRequest, "invalid cart item")
			}
			ids = append(ids, ci.ID)
		}
		books, err := r.Books().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		byID := make(map[int64]model.Book, len(books))
		for _, b := range books {
			byID[b.ID] = b
		}

		now := u.clock.Now()
		orderItems := make([]model.OrderItem, 0, len(in.CartItems))
		for _, ci := range in.CartItems {
			b, ok := byID[ci.ID]
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "book not found")
			}
			orderItems = append(orderItems, model.OrderItem{
				BookID:            b.ID,
				TitleSnapshot:     b.Title,
				AuthorSnapshot:    b.Author,
				UnitPriceSnapshot: b.SellingPrice,
				Quantity:          ci.Quantity,
				CreatedAt:         now,
			})
		}

		order := model.Order{
			UserID:         userID,
			GrandTotal:     in.TotalAmount.Round(2),
			IdempotencyKey: key,
			CreatedAt:      now,
		}

		//プロモは存在確認してコードを控える
		if in.AppliedPromo != nil && in.AppliedPromo.ID > 0 {
			p, err := r.Promotions().FindByID(ctx, in.AppliedPromo.ID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "promotion not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			promoID := p.ID
			order.PromoID = &promoID
			order.PromoCode = p.PromoCode
		}

		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicate) {
			return errIdempotencyKeyTaken
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	//同時に同じキーが入った場合は新しいtxで検索し直して同じ結果を返す
	if errors.Is(err, errIdempotencyKeyTaken) {
		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			existing, found, err := findOrderByKey(ctx, r, userID, key)
			if err != nil {
				return err
			}
			if !found {
				return NewHTTPError(http.StatusConflict, "idempotency conflict")
			}
			out = existing
			return nil
		})
	}

	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return OrderOutput{}, err
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

func findOrderByKey(ctx context.Context, r repo.TxRepos, userID int64, key string) (OrderOutput, bool, error) {
	existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return OrderOutput{}, false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found {
		return OrderOutput{}, false, nil
	}
	items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
	if err != nil {
		return OrderOutput{}, false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(existing, items), true, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	out := OrderListOutput{Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		items, err := withOrderItems(ctx, r.OrderItems(), orders)
		if err != nil {
			return err
		}
		out.Items = items
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 明細は1クエリでまとめて付ける
func withOrderItems(ctx context.Context, items repo.OrderItemRepository, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := items.ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o, byOrder[o.ID]))
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			BookID:    it.BookID,
			Title:     it.TitleSnapshot,
			Author:    it.AuthorSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		UserID:     o.UserID,
		PromoCode:  o.PromoCode,
		GrandTotal: o.GrandTotal,
		CreatedAt:  o.CreatedAt,
		Items:      outItems,
	}
}

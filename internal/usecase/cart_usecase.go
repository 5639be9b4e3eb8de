package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

// /api/cart の業務ロジック
// CartとCartItemを分離して受け取る
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	bookRepo     repo.BookRepository
	tx           repo.TransactionManager
	clock        Clock
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	bookRepo repo.BookRepository,
	tx repo.TransactionManager,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		bookRepo:     bookRepo,
		tx:           tx,
		clock:        clock,
	}
}

// カート1行。単価は本の現在の販売価格
type CartLineResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int64           `json:"quantity"`
}

type AddCartInput struct {
	BookID   int64 `json:"bookID"`
	Quantity int64 `json:"quantity"`
}

// ゲストカートの1行
type MergeCartItem struct {
	BookID   int64 `json:"bookID"`
	Quantity int64 `json:"quantity"`
}

// カート取得（無ければACTIVEを作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) ([]CartLineResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartLines(ctx, u.cartItemRepo, u.bookRepo, cart.ID)
}

// カートに追加（同じ本は数量加算）
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) ([]CartLineResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BookID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid bookID")
	}
	if in.Quantity < 1 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	if _, err := u.bookRepo.FindByID(ctx, in.BookID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "book not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.UpsertByCartAndBook(ctx, cart.ID, in.BookID, in.Quantity); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartLines(ctx, u.cartItemRepo, u.bookRepo, cart.ID)
}

// 数量を上書き。0以下はその行を削除
func (u *CartUsecase) SetQuantity(ctx context.Context, userID int64, in AddCartInput) ([]CartLineResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BookID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid bookID")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Quantity <= 0 {
		err := u.cartItemRepo.DeleteByCartAndBook(ctx, cart.ID, in.BookID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return buildCartLines(ctx, u.cartItemRepo, u.bookRepo, cart.ID)
	}

	if _, err := u.bookRepo.FindByID(ctx, in.BookID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "book not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.SetQuantity(ctx, cart.ID, in.BookID, in.Quantity); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartLines(ctx, u.cartItemRepo, u.bookRepo, cart.ID)
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, bookID int64) ([]CartLineResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid bookID")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartAndBook(ctx, cart.ID, bookID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartLines(ctx, u.cartItemRepo, u.bookRepo, cart.ID)
}

// 全明細を削除
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ゲストカートを取り込む。同じ本は数量を足す
// 存在しない本や数量0以下の行は読み飛ばす
func (u *CartUsecase) MergeCart(ctx context.Context, userID int64, items []MergeCartItem) ([]CartLineResponse, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out []CartLineResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		for _, it := range items {
			if it.BookID <= 0 || it.Quantity <= 0 {
				continue
			}

			if _, err := r.Books().FindByID(ctx, it.BookID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.CartItems().UpsertByCartAndBook(ctx, cart.ID, it.BookID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.Carts().MarkMerged(ctx, cart.ID, u.clock.Now()); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		lines, err := buildCartLines(ctx, r.CartItems(), r.Books(), cart.ID)
		if err != nil {
			return err
		}
		out = lines
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return nil, err
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// cartIDの明細をまとめて返す。削除済みの本は出さない
func buildCartLines(ctx context.Context, items repo.CartItemRepository, books repo.BookRepository, cartID int64) ([]CartLineResponse, error) {
	list, err := items.ListByCartID(ctx, cartID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]int64, 0, len(list))
	for _, it := range list {
		ids = append(ids, it.BookID)
	}

	found, err := books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	byID := make(map[int64]int, len(found))
	for i, b := range found {
		byID[b.ID] = i
	}

	out := make([]CartLineResponse, 0, len(list))
	for _, it := range list {
		idx, ok := byID[it.BookID]
		if !ok {
			continue
		}
		b := found[idx]
		out = append(out, CartLineResponse{
			ID:           b.ID,
			Title:        b.Title,
			Author:       b.Author,
			SellingPrice: b.SellingPrice,
			Quantity:     it.Quantity,
		})
	}
	return out, nil
}

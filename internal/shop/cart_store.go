package shop

import (
	"context"
	"encoding/json"
	"errors"

	"bookstore/internal/apiclient"
	"bookstore/internal/shop/storage"
)

// ゲストカートの保存キー
const CartStorageKey = "bookstore_cart"

// カートの正がある場所。ゲストはローカル、ログイン中はサーバー
type CartStore interface {
	Load(ctx context.Context) (Cart, error)
	Add(ctx context.Context, book Book) (Cart, error)
	ChangeQuantity(ctx context.Context, bookID int64, delta int64) (Cart, error)
	Clear(ctx context.Context) error
}

// --- local ---

type LocalCartStore struct {
	kv  storage.KV
	key string
}

func NewLocalCartStore(kv storage.KV) *LocalCartStore {
	return &LocalCartStore{kv: kv, key: CartStorageKey}
}

// 読めない・壊れている場合は空カートと*StorageErrorを返す
func (s *LocalCartStore) Load(ctx context.Context) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, &StorageError{Op: "read", Err: err}
	}

	var lines []CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return Cart{}, &StorageError{Op: "decode", Err: err}
	}
	return Cart{Lines: normalize(lines)}, nil
}

// 書き込みに失敗しても変更後のカートは返す
func (s *LocalCartStore) Add(ctx context.Context, book Book) (Cart, error) {
	cart, loadErr := s.Load(ctx)

	lines := cart.Lines
	found := false
	for i := range lines {
		if lines[i].BookID == book.ID {
			lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, CartLine{
			BookID:    book.ID,
			Title:     book.Title,
			Author:    book.Author,
			UnitPrice: book.SellingPrice,
			Quantity:  1,
		})
	}

	out := Cart{Lines: lines}
	if err := s.save(ctx, out); err != nil {
		return out, err
	}
	return out, loadErr
}

func (s *LocalCartStore) ChangeQuantity(ctx context.Context, bookID int64, delta int64) (Cart, error) {
	cart, loadErr := s.Load(ctx)

	lines := make([]CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		if l.BookID == bookID {
			l.Quantity += delta
		}
		if l.Quantity > 0 {
			lines = append(lines, l)
		}
	}

	out := Cart{Lines: lines}
	if err := s.save(ctx, out); err != nil {
		return out, err
	}
	return out, loadErr
}

func (s *LocalCartStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

func (s *LocalCartStore) save(ctx context.Context, cart Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// --- remote ---

// RemoteCartStoreが使うapi（*apiclient.Clientが満たす）
type RemoteCartAPI interface {
	GetCart(ctx context.Context) ([]apiclient.CartLine, error)
	AddToCart(ctx context.Context, bookID, quantity int64) ([]apiclient.CartLine, error)
	SetCartQuantity(ctx context.Context, bookID, quantity int64) ([]apiclient.CartLine, error)
	RemoveFromCart(ctx context.Context, bookID int64) ([]apiclient.CartLine, error)
	ClearCart(ctx context.Context) error
	MergeCart(ctx context.Context, items []apiclient.CartItemRequest) ([]apiclient.CartLine, error)
}

type RemoteCartStore struct {
	api RemoteCartAPI
}

func NewRemoteCartStore(api RemoteCartAPI) *RemoteCartStore {
	return &RemoteCartStore{api: api}
}

// 401は*UnauthorizedError、それ以外は*CartOperationError
func (s *RemoteCartStore) Load(ctx context.Context) (Cart, error) {
	lines, err := s.api.GetCart(ctx)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return Cart{}, &UnauthorizedError{Err: err}
		}
		return Cart{}, cartOpError("load", err)
	}
	return Cart{Lines: linesFromAPI(lines)}, nil
}

func (s *RemoteCartStore) Add(ctx context.Context, book Book) (Cart, error) {
	lines, err := s.api.AddToCart(ctx, book.ID, 1)
	if err != nil {
		return Cart{}, cartOpError("add", err)
	}
	return Cart{Lines: linesFromAPI(lines)}, nil
}

// 現在数量を読んでから quantity+delta をPUTする。0以下なら行をDELETE
func (s *RemoteCartStore) ChangeQuantity(ctx context.Context, bookID int64, delta int64) (Cart, error) {
	current, err := s.api.GetCart(ctx)
	if err != nil {
		return Cart{}, cartOpError("change quantity", err)
	}

	cart := Cart{Lines: linesFromAPI(current)}
	line, ok := cart.Find(bookID)
	if !ok {
		return cart, nil
	}

	var lines []apiclient.CartLine
	if qty := line.Quantity + delta; qty > 0 {
		lines, err = s.api.SetCartQuantity(ctx, bookID, qty)
	} else {
		lines, err = s.api.RemoveFromCart(ctx, bookID)
	}
	if err != nil {
		return Cart{}, cartOpError("change quantity", err)
	}
	return Cart{Lines: linesFromAPI(lines)}, nil
}

func (s *RemoteCartStore) Clear(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		return cartOpError("clear", err)
	}
	return nil
}

// ゲストの行をサーバーへ送る。数量の合算方法はサーバー側が決める
func (s *RemoteCartStore) Merge(ctx context.Context, guest []CartLine) (Cart, error) {
	items := make([]apiclient.CartItemRequest, 0, len(guest))
	for _, l := range guest {
		items = append(items, apiclient.CartItemRequest{BookID: l.BookID, Quantity: l.Quantity})
	}

	lines, err := s.api.MergeCart(ctx, items)
	if err != nil {
		return Cart{}, cartOpError("merge", err)
	}
	return Cart{Lines: linesFromAPI(lines)}, nil
}

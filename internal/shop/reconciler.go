package shop

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type SessionState int

const (
	Guest SessionState = iota
	MergePending
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Guest:
		return "guest"
	case MergePending:
		return "merge-pending"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Loginの結果。MergeErrがあってもログイン自体は成功している
type LoginResult struct {
	Cart     Cart
	MergeErr error
}

// 今のカートを1つに見せ、ログイン時にゲストカートをサーバーへ移す。
// 操作は1つずつ順に処理する
type CartReconciler struct {
	mu     sync.Mutex
	local  *LocalCartStore
	remote *RemoteCartStore
	store  CartStore
	state  SessionState
	log    *zap.Logger
}

func NewCartReconciler(local *LocalCartStore, log *zap.Logger) *CartReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartReconciler{
		local: local,
		store: local,
		state: Guest,
		log:   log,
	}
}

// すでにログイン済みのセッションを復元する（マージはしない）
func NewAuthenticatedCartReconciler(local *LocalCartStore, remote *RemoteCartStore, log *zap.Logger) *CartReconciler {
	r := NewCartReconciler(local, log)
	r.remote = remote
	r.store = remote
	r.state = Authenticated
	return r
}

func (r *CartReconciler) State() SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *CartReconciler) Authenticated() bool {
	return r.State() == Authenticated
}

// ゲストはサーバー側の正がないので、保存失敗は警告だけ出して手元の結果を返す。
// ログイン中の失敗はそのまま返す
func (r *CartReconciler) guestAbsorbs(op string, cart Cart, err error) (Cart, error) {
	if err == nil {
		return cart, nil
	}
	if r.state == Guest {
		r.log.Warn("guest cart storage error absorbed", zap.String("op", op), zap.Error(err))
		return cart, nil
	}
	r.log.Error("cart operation failed", zap.String("op", op), zap.Error(err))
	return Cart{}, err
}

func (r *CartReconciler) LoadCart(ctx context.Context) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.store.Load(ctx)
	return r.guestAbsorbs("load", cart, err)
}

// 同じ本なら+1、なければ数量1で追加
func (r *CartReconciler) AddItem(ctx context.Context, book Book) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.store.Add(ctx, book)
	return r.guestAbsorbs("add", cart, err)
}

// 1回の呼び出しで1回だけ増減する。0以下になった行は消える
func (r *CartReconciler) ChangeQuantity(ctx context.Context, bookID int64, delta int64) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.store.ChangeQuantity(ctx, bookID, delta)
	return r.guestAbsorbs("change quantity", cart, err)
}

// 今の正の方だけを空にする
func (r *CartReconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.guestAbsorbs("clear", Cart{}, r.store.Clear(ctx))
	return err
}

// Guest -> MergePending -> (マージ) -> Authenticated の後にサーバーのカートを読む。
// マージの失敗はMergeErrで返し、ログインは止めない
func (r *CartReconciler) Login(ctx context.Context, remote *RemoteCartStore) (LoginResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Guest {
		return LoginResult{}, ErrNotGuest
	}
	if remote == nil {
		return LoginResult{}, ErrNoRemoteCart
	}
	r.remote = remote
	r.state = MergePending

	mergeErr := r.mergeLocked(ctx)

	cart, err := r.store.Load(ctx)
	if err != nil {
		r.log.Error("load cart after login failed", zap.Error(err))
		return LoginResult{MergeErr: mergeErr}, err
	}
	return LoginResult{Cart: cart, MergeErr: mergeErr}, nil
}

// ログイン遷移ごとに1回だけ。成功ならローカルを消し、失敗なら残してエラーを返す。
// どちらの場合もAuthenticatedに進む
func (r *CartReconciler) MergeOnLogin(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != MergePending {
		return ErrMergeNotPending
	}
	return r.mergeLocked(ctx)
}

func (r *CartReconciler) mergeLocked(ctx context.Context) error {
	defer func() {
		r.store = r.remote
		r.state = Authenticated
	}()

	guest, err := r.local.Load(ctx)
	if err != nil {
		r.log.Warn("guest cart unreadable, nothing to merge", zap.Error(err))
		return nil
	}
	if guest.Empty() {
		return nil
	}

	if _, err := r.remote.Merge(ctx, guest.Lines); err != nil {
		r.log.Error("merge guest cart failed, guest cart kept", zap.Int("lines", len(guest.Lines)), zap.Error(err))
		return err
	}

	if err := r.local.Clear(ctx); err != nil {
		r.log.Warn("clear guest cart after merge failed", zap.Error(err))
	}
	return nil
}

// ローカルだけを空にしてゲストに戻す。サーバーのカートは残す
func (r *CartReconciler) Logout(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.local.Clear(ctx); err != nil {
		r.log.Warn("clear local cart on logout failed", zap.Error(err))
	}
	r.remote = nil
	r.store = r.local
	r.state = Guest
	return nil
}

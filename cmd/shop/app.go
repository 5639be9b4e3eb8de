package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"bookstore/internal/apiclient"
	"bookstore/internal/config"
	"bookstore/internal/logger"
	"bookstore/internal/shop"
	"bookstore/internal/shop/storage"
)

const sessionKey = "bookstore_session"

// ログイン中のトークン
type session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// 1コマンド分の依存。テストではkv/apiを先に入れておく
type app struct {
	cfg config.ShopConfig
	log *zap.Logger
	kv  storage.KV
	api *apiclient.Client
	out io.Writer

	sess     *session
	carts    *shop.CartReconciler
	catalog  *shop.Catalog
	checkout *shop.CheckoutCalculator
	history  *shop.OrderHistory

	closers []func() error
}

func (a *app) init(ctx context.Context) error {
	if a.log == nil {
		cfg, err := config.LoadShop()
		if err != nil {
			return err
		}
		a.cfg = cfg

		log, err := logger.NewCLI(cfg.GoEnv)
		if err != nil {
			return err
		}
		a.log = log
		a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })
	}

	if a.kv == nil {
		kv, err := a.openKV(ctx)
		if err != nil {
			return err
		}
		a.kv = kv
	}
	if a.api == nil {
		a.api = apiclient.New(a.cfg.APIBaseURL, a.cfg.RequestTimeout)
	}

	sess, err := a.loadSession(ctx)
	if err != nil {
		return err
	}
	a.bind(sess)
	return nil
}

// SHOP_REDIS_ADDRがあればredis、なければDataDir以下のファイル
func (a *app) openKV(ctx context.Context) (storage.KV, error) {
	if a.cfg.RedisAddr != "" {
		rdb := storage.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", a.cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.log.Debug("using redis storage", zap.String("addr", a.cfg.RedisAddr))
		return storage.NewRedisKV(rdb, "bookstore:"), nil
	}
	return storage.NewFileKV(a.cfg.DataDir)
}

// セッションに合わせてカート・注文のつなぎ先を決める
func (a *app) bind(sess *session) {
	a.sess = sess

	client := a.api
	local := shop.NewLocalCartStore(a.kv)
	if sess != nil {
		client = a.api.WithToken(sess.Token)
		a.carts = shop.NewAuthenticatedCartReconciler(local, shop.NewRemoteCartStore(client), a.log)
	} else {
		a.carts = shop.NewCartReconciler(local, a.log)
	}

	a.history = shop.NewOrderHistory(a.kv, a.log)
	a.catalog = shop.NewCatalog(client)
	a.checkout = shop.NewCheckoutCalculator(client, client, a.carts, a.history, a.log)
}

func (a *app) client() *apiclient.Client {
	if a.sess != nil {
		return a.api.WithToken(a.sess.Token)
	}
	return a.api
}

func (a *app) loadSession(ctx context.Context) (*session, error) {
	raw, err := a.kv.Get(ctx, sessionKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil || s.Token == "" {
		a.log.Warn("discarding unreadable session")
		_ = a.kv.Delete(ctx, sessionKey)
		return nil, nil
	}
	return &s, nil
}

func (a *app) saveSession(ctx context.Context, s session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, sessionKey, raw)
}

// 401ならセッションを捨ててログインし直してもらう
func (a *app) handleErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if shop.IsUnauthorized(err) || apiclient.IsUnauthorized(err) {
		_ = a.kv.Delete(ctx, sessionKey)
		return fmt.Errorf("session expired, please run `shop login` again: %w", err)
	}
	return err
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

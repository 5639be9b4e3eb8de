package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "bookstore_cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "bookstore_cart", []byte(`[{"id":1}]`)))
	got, err := kv.Get(ctx, "bookstore_cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	require.NoError(t, kv.Set(ctx, "bookstore_cart", []byte(`[]`)))
	got, err = kv.Get(ctx, "bookstore_cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, kv.Delete(ctx, "bookstore_cart"))
	_, err = kv.Get(ctx, "bookstore_cart")
	assert.ErrorIs(t, err, ErrNotFound)

	// 無いキーの削除はエラーにしない
	require.NoError(t, kv.Delete(ctx, "bookstore_cart"))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKV_ReturnsCopy(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", []byte("abc")))

	got, _ := kv.Get(ctx, "k")
	got[0] = 'x'

	again, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestFileKV_WritesJSONFileAndNoTmpLeft(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "bookstore_orders", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bookstore_orders.json", entries[0].Name())
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	err = kv.Set(context.Background(), "../evil", []byte("x"))
	assert.Error(t, err)
}

// go-redisの結果型だけで作ったフェイク
type fakeRedis struct {
	data map[string]string
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisKV(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	exerciseKV(t, NewRedisKV(fake, "shop:"))
}

func TestRedisKV_Prefix(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	kv := NewRedisKV(fake, "shop:")

	require.NoError(t, kv.Set(context.Background(), "bookstore_cart", []byte("[]")))
	_, ok := fake.data["shop:bookstore_cart"]
	assert.True(t, ok)
}

package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bookstore/internal/apiclient"
	"bookstore/internal/shop/storage"
)

func TestOrderHistory_AppendAndList(t *testing.T) {
	ctx := context.Background()
	h := NewOrderHistory(storage.NewMemoryKV(), nil)

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, h.Append(ctx, Order{ID: "a", Total: dec("10"), Date: fixedNow}))
	require.NoError(t, h.Append(ctx, Order{ID: "b", Total: dec("20"), Date: fixedNow.Add(time.Hour)}))

	list, err = h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.True(t, list[1].Total.Equal(dec("20")))
}

func TestOrderHistory_CorruptRecordIsReplaced(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, OrderHistoryKey, []byte("{not json")))
	core, logs := observer.New(zap.WarnLevel)
	h := NewOrderHistory(kv, zap.New(core))

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	//壊れた記録は捨てて追記できるか
	require.NoError(t, h.Append(ctx, Order{ID: "a", Total: dec("10")}))
	require.NoError(t, h.Append(ctx, Order{ID: "b", Total: dec("20")}))

	list, err = h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.GreaterOrEqual(t, logs.FilterMessage("order history corrupt, starting over").Len(), 1)
}

func TestOrderHistory_ReadFailureIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: storage.NewMemoryKV(), getErr: errors.New("disk gone")}
	h := NewOrderHistory(kv, nil)

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var se *StorageError
	require.ErrorAs(t, h.Append(ctx, Order{ID: "x"}), &se)
	assert.Equal(t, "read", se.Op)
	assert.Zero(t, kv.sets)
}

func TestListRemoteOrders(t *testing.T) {
	ctx := context.Background()
	api := new(MockOrderAPI)
	api.On("ListOrders", ctx, 1, 20).Return(apiclient.OrderList{
		Items: []apiclient.Order{{
			ID:         5,
			PromoCode:  "SAVE20",
			GrandTotal: dec("80"),
			CreatedAt:  fixedNow,
			Items:      []apiclient.OrderItem{{BookID: 1, Title: "Go", UnitPrice: dec("50"), Quantity: 2}},
		}},
		Total: 1, Page: 1, Limit: 20,
	}, nil).Once()

	orders, total, err := ListRemoteOrders(ctx, api, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(5), orders[0].RemoteID)
	assert.Equal(t, int64(2), orders[0].Items[0].Quantity)
	api.AssertExpectations(t)
}

func TestListRemoteOrders_Unauthorized(t *testing.T) {
	ctx := context.Background()
	api := new(MockOrderAPI)
	api.On("ListOrders", ctx, 1, 20).Return(nil, unauthorizedErr()).Once()

	_, _, err := ListRemoteOrders(ctx, api, 1, 20)
	assert.True(t, IsUnauthorized(err))
}

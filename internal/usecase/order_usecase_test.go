package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expressivart/internal/domain/entity"
	"expressivart/internal/infrastructure/realtime"
	"expressivart/pkg/errors"
)

func TestCheckoutMarksSoldAndPublishes(t *testing.T) {
	artworks, profiles, _ := galleryFixture()
	hub := realtime.NewHub()
	defer hub.Close()
	uc := NewOrderUseCase(newMemOrders(artworks), artworks, profiles, profiles, hub, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []entity.Order
	sub, err := hub.Subscribe(realtime.Filter{Table: OrdersTable, Event: realtime.EventInsert, Column: "seller_id", Value: "s1"},
		func(c realtime.Change) {
			var o entity.Order
			if c.Decode(&o) == nil {
				mu.Lock()
				seen = append(seen, o)
				mu.Unlock()
			}
		}, nil)
	require.NoError(t, err)
	defer sub.Release()

	order, err := uc.Checkout(ctx, "b1", CheckoutInput{ArtworkID: "a1", ShippingAddress: "1 Main St", ShippingCity: "Lyon", ShippingCountry: "FR"})
	require.NoError(t, err)
	assert.Equal(t, 300.0, order.TotalAmount)
	assert.Equal(t, entity.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, entity.OrderPending, order.Status)
	assert.True(t, artworks.get("a1").IsSold)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0].ID == order.ID
	}, time.Second, 5*time.Millisecond)

	_, err = uc.Checkout(ctx, "b1", CheckoutInput{ArtworkID: "a1"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
	_, err = uc.Checkout(ctx, "s1", CheckoutInput{ArtworkID: "a2"})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	_, err = uc.Checkout(ctx, "b1", CheckoutInput{ArtworkID: "a4"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestOrderListsAndStatusTransitions(t *testing.T) {
	artworks, profiles, _ := galleryFixture()
	uc := NewOrderUseCase(newMemOrders(artworks), artworks, profiles, profiles, nil, nil)
	ctx := context.Background()

	order, err := uc.Checkout(ctx, "b1", CheckoutInput{ArtworkID: "a2"})
	require.NoError(t, err)

	bought, err := uc.ListForBuyer(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, bought, 1)
	assert.Equal(t, "Red Field", bought[0].Artwork.Title)
	assert.Nil(t, bought[0].Buyer)

	sold, err := uc.ListForSeller(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "Bea", sold[0].Buyer.FullName)

	_, err = uc.ListForSeller(ctx, "b1")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = uc.UpdateStatus(ctx, "b1", order.ID, entity.OrderProcessing)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
	_, err = uc.UpdateStatus(ctx, "s1", order.ID, entity.OrderDelivered)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	for _, next := range []entity.OrderStatus{entity.OrderProcessing, entity.OrderShipped, entity.OrderDelivered} {
		updated, err := uc.UpdateStatus(ctx, "s1", order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	got, err := uc.GetOrder(ctx, "b1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, got.Status)
	_, err = uc.GetOrder(ctx, "stranger", order.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestConcurrentStatusUpdatesApplyOneTransition(t *testing.T) {
	artworks, profiles, _ := galleryFixture()
	orders := newMemOrders(artworks)
	uc := NewOrderUseCase(orders, artworks, profiles, profiles, nil, nil)
	ctx := context.Background()

	order, err := uc.Checkout(ctx, "b1", CheckoutInput{ArtworkID: "a2"})
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, "s1", order.ID, entity.OrderProcessing)
	require.NoError(t, err)

	// From processing, shipping and cancelling each close the other path.
	nexts := []entity.OrderStatus{entity.OrderShipped, entity.OrderCancelled, entity.OrderShipped, entity.OrderCancelled}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok []entity.OrderStatus
	)
	for _, next := range nexts {
		wg.Add(1)
		go func(next entity.OrderStatus) {
			defer wg.Done()
			if _, err := uc.UpdateStatus(ctx, "s1", order.ID, next); err == nil {
				mu.Lock()
				ok = append(ok, next)
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, errors.CodeBadRequest))
			}
		}(next)
	}
	wg.Wait()

	require.Len(t, ok, 1)
	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ok[0], got.Status)
}

func TestCheckoutRateLimited(t *testing.T) {
	artworks, profiles, _ := galleryFixture()
	uc := NewOrderUseCase(newMemOrders(artworks), artworks, profiles, profiles, nil, fixedLimiter{allow: false})

	_, err := uc.Checkout(context.Background(), "b1", CheckoutInput{ArtworkID: "a1"})
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	assert.False(t, artworks.get("a1").IsSold)
}

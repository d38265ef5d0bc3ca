package repository

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const ordersCollection = "orders"

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{client: client}
}

func (r *firestoreOrderRepository) Checkout(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	artworkRef := r.client.Collection(artworksCollection).Doc(order.ArtworkID)
	orderRef := r.client.Collection(ordersCollection).Doc(order.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(artworkRef)
		if err != nil {
			return mapFirestoreError(err, "Artwork", "get")
		}

		var artwork entity.Artwork
		if err := snap.DataTo(&artwork); err != nil {
			return errors.Internal("Failed to parse artwork data", err)
		}
		if !artwork.Purchasable() {
			return errors.Conflict("Artwork is no longer available", nil)
		}

		if err := tx.Create(orderRef, order); err != nil {
			return err
		}
		return tx.Update(artworkRef, []firestore.Update{
			{Path: "isSold", Value: true},
			{Path: "updatedAt", Value: now},
		})
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		logger.Error("Checkout transaction for artwork %s failed: %v", order.ArtworkID, err)
		return errors.Internal("Failed to place order", err)
	}
	return nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	snap, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err, "Order", "get")
	}

	var o entity.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	return &o, nil
}

func (r *firestoreOrderRepository) listBy(ctx context.Context, field, userID string) ([]*entity.Order, error) {
	iter := r.client.Collection(ordersCollection).Where(field, "==", userID).Documents(ctx)
	orders, err := collect[entity.Order](iter, "orders")
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *firestoreOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*entity.Order, error) {
	return r.listBy(ctx, "buyerId", buyerID)
}

func (r *firestoreOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]*entity.Order, error) {
	return r.listBy(ctx, "sellerId", sellerID)
}

func (r *firestoreOrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, check func(*entity.Order) error) (*entity.Order, error) {
	ref := r.client.Collection(ordersCollection).Doc(id)

	var updated entity.Order
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreError(err, "Order", "get")
		}
		if err := snap.DataTo(&updated); err != nil {
			return errors.Internal("Failed to parse order data", err)
		}
		if err := check(&updated); err != nil {
			return err
		}

		now := time.Now().UTC()
		updated.Status = status
		updated.UpdatedAt = now
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(status)},
			{Path: "updatedAt", Value: now},
		})
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Status transaction for order %s failed: %v", id, err)
		return nil, errors.Internal("Failed to update order", err)
	}
	return &updated, nil
}

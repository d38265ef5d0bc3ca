package repository

import (
	"context"

	"expressivart/internal/domain/entity"
)

type OrderRepository interface {
	// Checkout stores the order and marks its artwork sold atomically. It returns
	// a CONFLICT AppError when the artwork is no longer purchasable.
	Checkout(ctx context.Context, order *entity.Order) error

	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]*entity.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*entity.Order, error)

	// UpdateStatus sets the order's status after check accepts the current
	// row. The read, check and write happen atomically; check's error is
	// returned unchanged.
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, check func(*entity.Order) error) (*entity.Order, error)
}

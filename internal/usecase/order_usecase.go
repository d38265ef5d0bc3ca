package usecase

import (
	"context"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/internal/infrastructure/ratelimit"
	"expressivart/internal/infrastructure/realtime"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

// OrdersTable names order changes on the realtime hub.
const OrdersTable = "orders"

type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	artworkRepo repository.ArtworkRepository
	profileRepo repository.ProfileRepository
	profiles    ProfileLookup
	publisher   realtime.Publisher
	rateLimiter RateLimiter
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	artworkRepo repository.ArtworkRepository,
	profileRepo repository.ProfileRepository,
	profiles ProfileLookup,
	publisher realtime.Publisher,
	rateLimiter RateLimiter,
) *OrderUseCase {
	if rateLimiter == nil {
		rateLimiter = noLimit{}
	}
	return &OrderUseCase{
		orderRepo:   orderRepo,
		artworkRepo: artworkRepo,
		profileRepo: profileRepo,
		profiles:    profiles,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

type CheckoutInput struct {
	ArtworkID          string
	ShippingAddress    string
	ShippingCity       string
	ShippingState      string
	ShippingCountry    string
	ShippingPostalCode string
}

// Checkout places a cash-on-delivery order and marks the artwork sold.
func (uc *OrderUseCase) Checkout(ctx context.Context, buyerID string, input CheckoutInput) (*entity.Order, error) {
	if allowed, wait := uc.rateLimiter.Allow(buyerID, ratelimit.ActionCheckout); !allowed {
		return nil, errors.TooManyRequests("Too many checkout attempts. Please wait", wait)
	}

	artwork, err := uc.artworkRepo.GetByID(ctx, input.ArtworkID)
	if err != nil {
		return nil, err
	}
	if artwork.ArtistID == buyerID {
		return nil, errors.BadRequest("You cannot buy your own artwork", nil)
	}
	if !artwork.Purchasable() {
		return nil, errors.Conflict("Artwork is not available for purchase", nil)
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ArtworkID:          artwork.ID,
		BuyerID:            buyerID,
		SellerID:           artwork.ArtistID,
		TotalAmount:        artwork.Price,
		PaymentMethod:      entity.PaymentCashOnDelivery,
		ShippingAddress:    input.ShippingAddress,
		ShippingCity:       input.ShippingCity,
		ShippingState:      input.ShippingState,
		ShippingCountry:    input.ShippingCountry,
		ShippingPostalCode: input.ShippingPostalCode,
		Status:             entity.OrderPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.orderRepo.Checkout(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Order %s placed for artwork %s by %s", order.ID, order.ArtworkID, buyerID)
	uc.publish(ctx, realtime.EventInsert, order)
	return order, nil
}

func (uc *OrderUseCase) ListForBuyer(ctx context.Context, buyerID string) ([]*entity.OrderWithArtwork, error) {
	orders, err := uc.orderRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return uc.decorate(ctx, orders, false), nil
}

func (uc *OrderUseCase) ListForSeller(ctx context.Context, sellerID string) ([]*entity.OrderWithArtwork, error) {
	profile, err := uc.profileRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsSeller() {
		return nil, errors.Forbidden("Only sellers can view sales", nil)
	}

	orders, err := uc.orderRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return uc.decorate(ctx, orders, true), nil
}

// GetOrder returns an order to its buyer or seller.
func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, errors.Forbidden("You do not have access to this order", nil)
	}
	return order, nil
}

// UpdateStatus moves an order along its fulfilment path. Only the seller may do so.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, sellerID, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	updated, err := uc.orderRepo.UpdateStatus(ctx, orderID, status, func(order *entity.Order) error {
		if order.SellerID != sellerID {
			return errors.Forbidden("Only the seller can update this order", nil)
		}
		if !order.Status.CanTransition(status) {
			return errors.BadRequest("Cannot move order from "+string(order.Status)+" to "+string(status), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, realtime.EventUpdate, updated)
	return updated, nil
}

func (uc *OrderUseCase) decorate(ctx context.Context, orders []*entity.Order, withBuyer bool) []*entity.OrderWithArtwork {
	result := make([]*entity.OrderWithArtwork, 0, len(orders))
	for _, o := range orders {
		item := &entity.OrderWithArtwork{Order: o}
		if artwork, err := uc.artworkRepo.GetByID(ctx, o.ArtworkID); err == nil {
			item.Artwork = artwork.Summary()
		}
		if withBuyer && uc.profiles != nil {
			if buyer, err := uc.profiles.Summary(ctx, o.BuyerID); err == nil {
				item.Buyer = buyer
			}
		}
		result = append(result, item)
	}
	return result
}

func (uc *OrderUseCase) publish(ctx context.Context, event realtime.EventType, order *entity.Order) {
	if uc.publisher == nil {
		return
	}
	change, err := realtime.NewChange(OrdersTable, event, map[string]string{
		"buyer_id":  order.BuyerID,
		"seller_id": order.SellerID,
	}, order)
	if err == nil {
		err = uc.publisher.Publish(ctx, change)
	}
	if err != nil {
		logger.Error("Order %s: publish %s failed: %v", order.ID, event, err)
	}
}

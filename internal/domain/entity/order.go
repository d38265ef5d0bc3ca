package entity

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

const PaymentCashOnDelivery = "Cash on Delivery"

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransition reports whether a seller may move an order from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID                 string      `json:"id" firestore:"id"`
	ArtworkID          string      `json:"artwork_id" firestore:"artworkId"`
	BuyerID            string      `json:"buyer_id" firestore:"buyerId"`
	SellerID           string      `json:"seller_id" firestore:"sellerId"`
	TotalAmount        float64     `json:"total_amount" firestore:"totalAmount"`
	PaymentMethod      string      `json:"payment_method" firestore:"paymentMethod"`
	ShippingAddress    string      `json:"shipping_address" firestore:"shippingAddress"`
	ShippingCity       string      `json:"shipping_city" firestore:"shippingCity"`
	ShippingState      string      `json:"shipping_state" firestore:"shippingState"`
	ShippingCountry    string      `json:"shipping_country" firestore:"shippingCountry"`
	ShippingPostalCode string      `json:"shipping_postal_code" firestore:"shippingPostalCode"`
	Status             OrderStatus `json:"status" firestore:"status"`
	CreatedAt          time.Time   `json:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time   `json:"updated_at" firestore:"updatedAt"`
}

type OrderWithArtwork struct {
	*Order
	Artwork *ArtworkSummary `json:"artwork,omitempty"`
	Buyer   *ProfileSummary `json:"buyer,omitempty"`
}

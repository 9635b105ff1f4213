package handlers

import (
	"time"

	"github.com/shopspring/decimal"
)

type orderItemDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SizeKg    decimal.Decimal `json:"size_kg"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type addressDTO struct {
	Text string  `json:"text"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type proofDTO struct {
	Type       string     `json:"type"`
	Payload    string     `json:"payload,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

type orderDTO struct {
	ID              string           `json:"id"`
	Reference       string           `json:"reference"`
	CustomerID      string           `json:"customer_id"`
	Channel         string           `json:"channel"`
	Status          string           `json:"status"`
	Items           []orderItemDTO   `json:"items"`
	DeliveryAddress *addressDTO      `json:"delivery_address,omitempty"`
	DeliveryFee     decimal.Decimal  `json:"delivery_fee"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	PaymentMethod   string           `json:"payment_method"`
	PaymentStatus   string           `json:"payment_status"`
	DriverID        *string          `json:"driver_id,omitempty"`
	PodID           *string          `json:"pod_id,omitempty"`
	Proof           *proofDTO        `json:"proof,omitempty"`
	CashCollected   *decimal.Decimal `json:"cash_collected,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	Rating          *int             `json:"rating,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type createOrderRequest struct {
	CustomerID      string           `json:"customer_id"`
	Channel         string           `json:"channel"`
	Items           []orderItemDTO   `json:"items"`
	DeliveryAddress *addressDTO      `json:"delivery_address,omitempty"`
	DeliveryFee     *decimal.Decimal `json:"delivery_fee,omitempty"`
	PaymentMethod   string           `json:"payment_method"`
	PodID           *string          `json:"pod_id,omitempty"`
}

type assignOrderRequest struct {
	DriverID *string `json:"driver_id,omitempty"`
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

type completeDeliveryRequest struct {
	Proof           proofDTO         `json:"proof"`
	DeliveredSerial string           `json:"delivered_serial,omitempty"`
	ReturnedSerial  string           `json:"returned_serial,omitempty"`
	CashCollected   *decimal.Decimal `json:"cash_collected,omitempty"`
}

type rateOrderRequest struct {
	Rating int `json:"rating"`
}

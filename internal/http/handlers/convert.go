package handlers

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
)

func (req createOrderRequest) toParams() (fulfillment.CreateOrderParams, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return fulfillment.CreateOrderParams{}, errors.New("invalid customer_id")
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return fulfillment.CreateOrderParams{}, errors.New("invalid product_id")
		}
		items = append(items, domain.OrderItem{
			ProductID: productID,
			Name:      it.Name,
			SizeKg:    it.SizeKg,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	p := fulfillment.CreateOrderParams{
		CustomerID:    customerID,
		Channel:       domain.OrderChannel(req.Channel),
		Items:         items,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	if req.DeliveryFee != nil {
		p.DeliveryFee = *req.DeliveryFee
	}
	if req.DeliveryAddress != nil {
		p.DeliveryAddress = &domain.Address{
			Text:     req.DeliveryAddress.Text,
			Location: domain.Point{Lat: req.DeliveryAddress.Lat, Lng: req.DeliveryAddress.Lng},
		}
	}
	if req.PodID != nil {
		podID, err := uuid.Parse(*req.PodID)
		if err != nil {
			return fulfillment.CreateOrderParams{}, errors.New("invalid pod_id")
		}
		p.PodID = &podID
	}
	return p, nil
}

func orderToResponse(o *domain.Order) orderDTO {
	dto := orderDTO{
		ID:            o.ID.String(),
		Reference:     o.Reference,
		CustomerID:    o.CustomerID.String(),
		Channel:       string(o.Channel),
		Status:        string(o.Status),
		Items:         make([]orderItemDTO, 0, len(o.Items)),
		DeliveryFee:   o.DeliveryFee,
		TotalAmount:   o.TotalAmount(),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		CashCollected: o.CashCollected,
		CancelReason:  o.CancelReason,
		Rating:        o.Rating,
		CreatedAt:     o.CreatedAt,
		ConfirmedAt:   o.ConfirmedAt,
		AssignedAt:    o.AssignedAt,
		PickedUpAt:    o.PickedUpAt,
		DeliveredAt:   o.DeliveredAt,
		CompletedAt:   o.CompletedAt,
		CancelledAt:   o.CancelledAt,
	}
	for _, it := range o.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			SizeKg:    it.SizeKg,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	if o.DeliveryAddress != nil {
		dto.DeliveryAddress = &addressDTO{
			Text: o.DeliveryAddress.Text,
			Lat:  o.DeliveryAddress.Location.Lat,
			Lng:  o.DeliveryAddress.Location.Lng,
		}
	}
	if o.DriverID != nil {
		s := o.DriverID.String()
		dto.DriverID = &s
	}
	if o.PodID != nil {
		s := o.PodID.String()
		dto.PodID = &s
	}
	if o.Proof != nil {
		// proof payload stays internal; only the kind and time are exposed
		t := o.Proof.CapturedAt
		dto.Proof = &proofDTO{Type: string(o.Proof.Type), CapturedAt: &t}
	}
	return dto
}

func ordersToResponse(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for i := range list {
		out = append(out, orderToResponse(&list[i]))
	}
	return out
}

func (req completeDeliveryRequest) toParams() fulfillment.CompleteDeliveryParams {
	p := fulfillment.CompleteDeliveryParams{
		Proof: domain.DeliveryProof{
			Type:    domain.ProofType(req.Proof.Type),
			Payload: req.Proof.Payload,
		},
		DeliveredSerial: req.DeliveredSerial,
		ReturnedSerial:  req.ReturnedSerial,
		CashCollected:   req.CashCollected,
	}
	if req.Proof.CapturedAt != nil {
		p.Proof.CapturedAt = *req.Proof.CapturedAt
	}
	return p
}

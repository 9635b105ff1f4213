package domain

type (
	// OrderStatus represents the lifecycle status of an order.
	OrderStatus string
	// OrderChannel represents the channel an order was placed through.
	OrderChannel string
	// PaymentMethod represents how an order is paid.
	PaymentMethod string
	// PaymentStatus represents the settlement state of an order.
	PaymentStatus string
	// DriverStatus represents the availability of a driver.
	DriverStatus string
	// CylinderStatus represents the physical state of a cylinder.
	CylinderStatus string
	// LocationType represents the kind of place a cylinder can be at.
	LocationType string
	// ProofType represents the kind of delivery proof captured.
	ProofType string
	// TransactionType represents the kind of wallet transaction.
	TransactionType string
	// OfferState represents the state of a dispatch offer.
	OfferState string
)

// List of possible order statuses
const (
	OrderCreated   OrderStatus = "created"
	OrderConfirmed OrderStatus = "confirmed"
	OrderAssigned  OrderStatus = "assigned"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// transitions is the full order lifecycle graph. Terminal statuses map to
// an empty set; anything absent from a set is rejected, never coerced.
var transitions = map[OrderStatus][]OrderStatus{
	OrderCreated:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderAssigned, OrderCancelled},
	OrderAssigned:  {OrderInTransit, OrderCancelled},
	OrderInTransit: {OrderDelivered, OrderCancelled},
	OrderDelivered: {OrderCompleted},
	OrderCompleted: {},
	OrderCancelled: {},
}

// CanTransition reports whether from -> to is a legal order status change.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Valid checks if the OrderStatus is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// List of possible order channels
const (
	ChannelApp      OrderChannel = "app"
	ChannelUSSD     OrderChannel = "ussd"
	ChannelWhatsApp OrderChannel = "whatsapp"
	ChannelPOS      OrderChannel = "pos"
	ChannelPhone    OrderChannel = "phone"
)

// List of possible payment methods
const (
	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayWallet PaymentMethod = "wallet"
)

// List of possible payment statuses
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// List of possible driver statuses
const (
	DriverOnline     DriverStatus = "online"
	DriverOffline    DriverStatus = "offline"
	DriverOnDelivery DriverStatus = "on_delivery"
	DriverOnBreak    DriverStatus = "on_break"
)

// List of possible cylinder statuses
const (
	CylinderNew          CylinderStatus = "new"
	CylinderFilled       CylinderStatus = "filled"
	CylinderInTransit    CylinderStatus = "in_transit"
	CylinderWithCustomer CylinderStatus = "with_customer"
	CylinderEmpty        CylinderStatus = "empty"
	CylinderReturned     CylinderStatus = "returned"
	CylinderCondemned    CylinderStatus = "condemned"
)

// List of possible cylinder location types
const (
	LocationDepot    LocationType = "depot"
	LocationPod      LocationType = "pod"
	LocationVehicle  LocationType = "vehicle"
	LocationCustomer LocationType = "customer"
)

// List of possible delivery proof types
const (
	ProofPhoto     ProofType = "photo"
	ProofSignature ProofType = "signature"
	ProofOTP       ProofType = "otp"
)

// List of possible wallet transaction types
const (
	TxTopUp          TransactionType = "top_up"
	TxDebit          TransactionType = "debit"
	TxRefund         TransactionType = "refund"
	TxReferralCredit TransactionType = "referral_credit"
	TxPromoCredit    TransactionType = "promo_credit"
)

// List of possible dispatch offer states
const (
	OfferPending   OfferState = "pending"
	OfferAccepted  OfferState = "accepted"
	OfferRejected  OfferState = "rejected"
	OfferExpired   OfferState = "expired"
	OfferWithdrawn OfferState = "withdrawn"
)

var allowedChannels = [...]OrderChannel{
	ChannelApp, ChannelUSSD, ChannelWhatsApp, ChannelPOS, ChannelPhone,
}

var allowedPaymentMethods = [...]PaymentMethod{
	PayCash, PayCard, PayWallet,
}

var allowedDriverStatuses = [...]DriverStatus{
	DriverOnline, DriverOffline, DriverOnDelivery, DriverOnBreak,
}

var allowedLocationTypes = [...]LocationType{
	LocationDepot, LocationPod, LocationVehicle, LocationCustomer,
}

var allowedProofTypes = [...]ProofType{
	ProofPhoto, ProofSignature, ProofOTP,
}

var allowedCylinderStatuses = [...]CylinderStatus{
	CylinderNew, CylinderFilled, CylinderInTransit, CylinderWithCustomer,
	CylinderEmpty, CylinderReturned, CylinderCondemned,
}

// Valid checks if the OrderChannel is valid
func (c OrderChannel) Valid() bool {
	for _, v := range allowedChannels {
		if c == v {
			return true
		}
	}
	return false
}

// Valid checks if the PaymentMethod is valid
func (m PaymentMethod) Valid() bool {
	for _, v := range allowedPaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// Valid checks if the DriverStatus is valid
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the LocationType is valid
func (t LocationType) Valid() bool {
	for _, v := range allowedLocationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Valid checks if the ProofType is valid
func (t ProofType) Valid() bool {
	for _, v := range allowedProofTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Valid checks if the CylinderStatus is valid
func (s CylinderStatus) Valid() bool {
	for _, v := range allowedCylinderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

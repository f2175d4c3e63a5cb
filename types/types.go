package types

import "time"

// OrderStatus is the lifecycle state of an order as reported by the backend.
// The backend is the sole authority for transitions; the client only refuses
// to request a transition that can never be legal.
type OrderStatus string

const (
	OrderPendingPharmacy  OrderStatus = "pending_pharmacy_confirmation"
	OrderPharmacyAccepted OrderStatus = "pharmacy_accepted"
	OrderPharmacyRejected OrderStatus = "pharmacy_rejected"
	OrderOutForDelivery   OrderStatus = "out_for_delivery"
	OrderDelivered        OrderStatus = "delivered"
	OrderCancelled        OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingPharmacy:  {OrderPharmacyAccepted, OrderPharmacyRejected, OrderCancelled},
	OrderPharmacyAccepted: {OrderOutForDelivery, OrderDelivered, OrderCancelled},
	OrderOutForDelivery:   {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingPharmacy, OrderPharmacyAccepted, OrderPharmacyRejected,
		OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions exist for s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderPharmacyRejected || s == OrderCancelled
}

// CanTransition reports whether the backend could ever accept a move from s
// to target. It is a pre-flight check, not an authority.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// DeliveryStatus is the state of the physical fulfilment leg, tracked
// separately from the order status.
type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "pending"
	DeliveryAssigned       DeliveryStatus = "assigned"
	DeliveryAtPickup       DeliveryStatus = "at_pickup"
	DeliveryInTransit      DeliveryStatus = "in_transit"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
	DeliveryCancelled      DeliveryStatus = "cancelled"
)

var deliveryOrder = map[DeliveryStatus]int{
	DeliveryPending:        0,
	DeliveryAssigned:       1,
	DeliveryAtPickup:       2,
	DeliveryInTransit:      3,
	DeliveryOutForDelivery: 4,
	DeliveryDelivered:      5,
}

func (s DeliveryStatus) Valid() bool {
	if s == DeliveryCancelled {
		return true
	}
	_, ok := deliveryOrder[s]
	return ok
}

func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryCancelled
}

// CanTransition allows forward movement along the delivery chain, plus a
// jump to cancelled from any non-terminal state.
func (s DeliveryStatus) CanTransition(target DeliveryStatus) bool {
	if s.Terminal() {
		return false
	}
	if target == DeliveryCancelled {
		return true
	}
	from, okFrom := deliveryOrder[s]
	to, okTo := deliveryOrder[target]
	return okFrom && okTo && to == from+1
}

// AtLeast reports whether s has progressed to target or beyond.
func (s DeliveryStatus) AtLeast(target DeliveryStatus) bool {
	from, okFrom := deliveryOrder[s]
	to, okTo := deliveryOrder[target]
	return okFrom && okTo && from >= to
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type RefundStatus string

const (
	RefundNone       RefundStatus = "no_refund"
	RefundPending    RefundStatus = "pending"
	RefundInitiated  RefundStatus = "initiated"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
)

// InFlight reports whether a refund has been requested and is not yet
// settled. Any in-flight refund disables re-requesting.
func (s RefundStatus) InFlight() bool {
	switch s {
	case RefundPending, RefundInitiated, RefundProcessing:
		return true
	}
	return false
}

type NotificationType string

const (
	NotifyDeliveryOTP       NotificationType = "delivery_otp"
	NotifyOrderStatus       NotificationType = "order_status"
	NotifyDeliveryCompleted NotificationType = "delivery_completed"
	NotifyNewDeliveryOrder  NotificationType = "new_delivery_order"
	NotifyOrderAccepted     NotificationType = "order_accepted"
	NotifyOrderRejected     NotificationType = "order_rejected"
	NotifyDeliveryAssigned  NotificationType = "delivery_assigned"
)

// ValidOTP reports whether code is exactly six ASCII digits. Anything else
// is refused before a verification request is ever sent.
func ValidOTP(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

type Medicine struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	GenericName string `json:"generic_name"`
	Dosage      string `json:"dosage"`
	Unit        string `json:"unit"`
}

type Pharmacy struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	IsVerified bool   `json:"is_verified"`
}

type PharmacyMedicine struct {
	ID       int      `json:"id"`
	Medicine Medicine `json:"medicine"`
	Stock    int      `json:"stock"`
	Price    string   `json:"price"`
	Status   string   `json:"status"`
}

type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Order is one line item as stored by the backend. A cart checkout produces
// several rows sharing one human-readable OrderID.
type Order struct {
	ID                  int           `json:"id"`
	OrderID             string        `json:"order_id"`
	MedicineName        string        `json:"medicine_name"`
	PharmacyName        string        `json:"pharmacy_name"`
	DeliveryPartnerName string        `json:"delivery_partner_name,omitempty"`
	Quantity            int           `json:"quantity"`
	TotalPrice          string        `json:"total_price"`
	DeliveryRequired    bool          `json:"delivery_required"`
	DeliveryAddress     string        `json:"delivery_address"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	OrderStatus         OrderStatus   `json:"order_status"`
	Payment             *Payment      `json:"payment,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type Delivery struct {
	ID              int            `json:"id"`
	Order           Order          `json:"order"`
	Driver          *int           `json:"driver"`
	DriverName      string         `json:"driver_name,omitempty"`
	Status          DeliveryStatus `json:"status"`
	PickupAddress   string         `json:"pickup_address"`
	DeliveryAddress string         `json:"delivery_address"`
	DistanceKM      float64        `json:"distance_km"`
	EstimatedTime   int            `json:"estimated_time"`
	ActualTime      *int           `json:"actual_time"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Payment struct {
	ID                int           `json:"id"`
	OrderID           string        `json:"order_id"`
	Amount            string        `json:"amount"`
	PaymentMethod     string        `json:"payment_method"`
	TransactionID     string        `json:"transaction_id"`
	Status            PaymentStatus `json:"status"`
	RefundStatus      RefundStatus  `json:"refund_status,omitempty"`
	RefundAmount      string        `json:"refund_amount,omitempty"`
	RefundReason      string        `json:"refund_reason,omitempty"`
	RefundInitiatedAt *time.Time    `json:"refund_initiated_at,omitempty"`
	RefundCompletedAt *time.Time    `json:"refund_completed_at,omitempty"`
}

type Notification struct {
	ID        int              `json:"id"`
	OrderID   string           `json:"order_id"`
	Type      NotificationType `json:"notification_type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	OTP       string           `json:"otp,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type RestockRequest struct {
	ID          int       `json:"id"`
	Pharmacy    int       `json:"pharmacy"`
	Medicine    Medicine  `json:"medicine"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	RequestedBy string    `json:"requested_by"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

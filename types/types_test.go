package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to accepted", OrderPendingPharmacy, OrderPharmacyAccepted, true},
		{"pending to rejected", OrderPendingPharmacy, OrderPharmacyRejected, true},
		{"pending to cancelled", OrderPendingPharmacy, OrderCancelled, true},
		{"pending straight to delivered", OrderPendingPharmacy, OrderDelivered, false},
		{"accepted to out for delivery", OrderPharmacyAccepted, OrderOutForDelivery, true},
		{"accepted to delivered", OrderPharmacyAccepted, OrderDelivered, true},
		{"out for delivery to delivered", OrderOutForDelivery, OrderDelivered, true},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"rejected is terminal", OrderPharmacyRejected, OrderPharmacyAccepted, false},
		{"cancelled is terminal", OrderCancelled, OrderPendingPharmacy, false},
		{"no going backwards", OrderOutForDelivery, OrderPendingPharmacy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderPharmacyRejected.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderPendingPharmacy.Terminal())
	assert.False(t, OrderOutForDelivery.Terminal())
}

func TestDeliveryStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from DeliveryStatus
		to   DeliveryStatus
		want bool
	}{
		{"pending to assigned", DeliveryPending, DeliveryAssigned, true},
		{"assigned to at pickup", DeliveryAssigned, DeliveryAtPickup, true},
		{"at pickup to in transit", DeliveryAtPickup, DeliveryInTransit, true},
		{"in transit to out for delivery", DeliveryInTransit, DeliveryOutForDelivery, true},
		{"out for delivery to delivered", DeliveryOutForDelivery, DeliveryDelivered, true},
		{"skipping a step", DeliveryPending, DeliveryAtPickup, false},
		{"backwards", DeliveryInTransit, DeliveryAssigned, false},
		{"cancel from anywhere", DeliveryInTransit, DeliveryCancelled, true},
		{"cancel after delivered", DeliveryDelivered, DeliveryCancelled, false},
		{"resurrect cancelled", DeliveryCancelled, DeliveryPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestDeliveryStatusAtLeast(t *testing.T) {
	assert.True(t, DeliveryInTransit.AtLeast(DeliveryAssigned))
	assert.True(t, DeliveryDelivered.AtLeast(DeliveryDelivered))
	assert.False(t, DeliveryAssigned.AtLeast(DeliveryInTransit))
	assert.False(t, DeliveryCancelled.AtLeast(DeliveryPending))
}

func TestRefundStatusInFlight(t *testing.T) {
	assert.True(t, RefundPending.InFlight())
	assert.True(t, RefundInitiated.InFlight())
	assert.True(t, RefundProcessing.InFlight())
	assert.False(t, RefundNone.InFlight())
	assert.False(t, RefundCompleted.InFlight())
	assert.False(t, RefundFailed.InFlight())
	assert.False(t, RefundStatus("").InFlight())
}

func TestValidOTP(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"six digits", "123456", true},
		{"all zeros", "000000", true},
		{"too short", "12345", false},
		{"too long", "1234567", false},
		{"empty", "", false},
		{"letters", "12a456", false},
		{"space padded", " 12345", false},
		{"unicode digits", "１２３４５６", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidOTP(tt.code))
		})
	}
}

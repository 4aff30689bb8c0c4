package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the pickup lifecycle state.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAssigned  RequestStatus = "assigned"
	StatusCompleted RequestStatus = "completed"
)

// PaymentStatus records whether the pickup has been paid for.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Request is a resident's pickup order.
type Request struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ResidentID          primitive.ObjectID  `bson:"resident_id" json:"residentId"`
	Items               []WasteItem         `bson:"items" json:"items"`
	TotalPrice          float64             `bson:"total_price" json:"totalPrice"`
	Status              RequestStatus       `bson:"status" json:"status"`
	AssignedCollectorID *primitive.ObjectID `bson:"assigned_collector_id,omitempty" json:"assignedCollectorId,omitempty"`
	PaymentStatus       PaymentStatus       `bson:"payment_status" json:"paymentStatus"`
	PaymentReference    string              `bson:"payment_reference,omitempty" json:"paymentReference,omitempty"`
	CreatedAt           time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updated_at" json:"updatedAt"`
	CompletedAt         *time.Time          `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Transition describes a conditional status change: it applies only while the
// request is in one of From and, when OnlyCollector is set, still assigned to
// that collector.
type Transition struct {
	From                []RequestStatus
	To                  RequestStatus
	OnlyCollector       *primitive.ObjectID
	AssignedCollectorID *primitive.ObjectID
	At                  time.Time
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceLine is the billed total for one waste type.
type InvoiceLine struct {
	WasteType   WasteType `bson:"waste_type" json:"wasteType"`
	TotalWeight float64   `bson:"total_weight" json:"totalWeight"`
	RatePerKg   float64   `bson:"rate_per_kg" json:"ratePerKg"`
	Amount      float64   `bson:"amount" json:"amount"`
}

// Invoice is a billing statement over a resident's most recent collections.
// (resident_id, period_start, period_end) is unique.
type Invoice struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number      string             `bson:"number" json:"number"`
	ResidentID  primitive.ObjectID `bson:"resident_id" json:"residentId"`
	PeriodStart time.Time          `bson:"period_start" json:"periodStart"`
	PeriodEnd   time.Time          `bson:"period_end" json:"periodEnd"`
	LineItems   []InvoiceLine      `bson:"line_items" json:"lineItems"`
	TotalAmount float64            `bson:"total_amount" json:"totalAmount"`
	IsPaid      bool               `bson:"is_paid" json:"isPaid"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionEntry is a ledger record of an actual collection visit. Entries
// written when a request completes carry the request id.
type CollectionEntry struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ResidentID  primitive.ObjectID  `bson:"resident_id" json:"residentId"`
	CollectorID primitive.ObjectID  `bson:"collector_id" json:"collectorId"`
	RequestID   *primitive.ObjectID `bson:"request_id,omitempty" json:"requestId,omitempty"`
	Items       []WasteItem         `bson:"items" json:"items"`
	Date        time.Time           `bson:"date" json:"date"`
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WasteTotal is the total collected weight of one waste type.
type WasteTotal struct {
	WasteType   WasteType `bson:"_id" json:"wasteType"`
	TotalWeight float64   `bson:"total_weight" json:"totalWeight"`
}

// MonthCount is the number of requests created in a calendar month (1-12).
type MonthCount struct {
	Month         int `bson:"_id" json:"month"`
	TotalRequests int `bson:"total_requests" json:"totalRequests"`
}

// CollectorAssignment is the number of residents assigned to a collector.
type CollectorAssignment struct {
	CollectorID   primitive.ObjectID `bson:"_id" json:"collectorId"`
	CollectorName string             `bson:"collector_name" json:"collectorName"`
	AssignedUsers int                `bson:"assigned_users" json:"assignedUsers"`
}

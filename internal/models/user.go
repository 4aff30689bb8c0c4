package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name              string              `bson:"name" json:"name"`
	Email             string              `bson:"email" json:"email"`
	HPassword         string              `bson:"password" json:"-"`
	Role              Role                `bson:"role" json:"role"`
	Address           string              `bson:"address,omitempty" json:"address,omitempty"`
	PhoneNumber       string              `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	AssignedCollector *primitive.ObjectID `bson:"assigned_collector,omitempty" json:"assignedCollector,omitempty"`
	PhotoKey          string              `bson:"photo_key,omitempty" json:"photoKey,omitempty"`
	CreatedAt         time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updatedAt"`
}

// ProfileUpdate carries the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

// UserSummary is the public view of another account.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// ResidentView is a resident as listed for admins, with the collector's name resolved.
type ResidentView struct {
	User
	AssignedCollectorName string `json:"assignedCollectorName,omitempty"`
}

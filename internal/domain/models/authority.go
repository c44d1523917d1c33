// internal/domain/models/authority.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Authority is a municipal body a complaint can be assigned to.
type Authority struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	City string             `bson:"city" json:"city"`
}

// DefaultAuthorities is the directory seeded into an empty database.
var DefaultAuthorities = []Authority{
	{Name: "Pune Municipal Corporation - Water Dept", City: "Pune"},
	{Name: "Pune Municipal Corporation - Sanitation", City: "Pune"},
	{Name: "Mumbai Municipal - Roads", City: "Mumbai"},
	{Name: "Delhi Jal Board", City: "Delhi"},
}

package models

import "time"

// Space is a bookable coworking space listed by a host.
type Space struct {
	ID           string    `bson:"id" json:"id"`
	HostID       string    `bson:"host_id" json:"host_id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	PricePerHour float64   `bson:"price_per_hour" json:"price_per_hour"`
	Currency     string    `bson:"currency" json:"currency"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

package models

import "time"

// User is the profile record for both coworkers and hosts.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	FullName  string    `bson:"full_name,omitempty" json:"full_name,omitempty"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

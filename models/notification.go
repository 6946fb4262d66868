package models

import "time"

// Notification is a user-facing notification row. Write-only and best-effort:
// failures to create one never affect booking or payment state.
type Notification struct {
	ID        string         `bson:"id" json:"id"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Type      string         `bson:"type" json:"type"`
	Title     string         `bson:"title" json:"title"`
	Content   string         `bson:"content" json:"content"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read      bool           `bson:"read" json:"read"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

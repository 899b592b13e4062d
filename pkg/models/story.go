package models

import "time"

// Story is editorial content shown alongside the catalog (artist notes,
// behind-the-scenes pieces). Read-only for the storefront API.
type Story struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Excerpt   string    `json:"excerpt" bson:"excerpt"`
	Body      string    `json:"body" bson:"body"`
	Image     string    `json:"image" bson:"image"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

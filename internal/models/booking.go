package models

import "time"

type Booking struct {
	ID            string `json:"id"`
	ServiceID     string `json:"service_id"`
	ArtistID      string `json:"artist_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Date          string `json:"date"` // YYYY-MM-DD
	Time          string `json:"time"` // HH:MM
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at"` // epoch milliseconds
	Notes         string `json:"notes,omitempty"`
}

// CreatedTime returns CreatedAt as time.Time.
func (b *Booking) CreatedTime() time.Time {
	return time.UnixMilli(b.CreatedAt)
}

package booking

import (
	"sort"
	"strings"

	"glowup/internal/models"
)

// FilterAll matches every status.
const FilterAll = "all"

// Filter narrows a collection by exact status match (or "all") and by a
// search term matched case-insensitively against the customer name or as
// a plain substring of the phone. Both predicates must hold.
func Filter(bookings []models.Booking, status, search string) []models.Booking {
	status = strings.TrimSpace(status)
	search = strings.TrimSpace(search)
	lowered := strings.ToLower(search)

	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if status != "" && status != FilterAll && b.Status != status {
			continue
		}
		if search != "" {
			nameMatch := strings.Contains(strings.ToLower(b.CustomerName), lowered)
			phoneMatch := strings.Contains(b.CustomerPhone, search)
			if !nameMatch && !phoneMatch {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// SortByCreatedAtDesc orders newest first. Display order is always this,
// regardless of what order the backend delivered.
func SortByCreatedAtDesc(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt > bookings[j].CreatedAt
	})
}

package models

const (
	// DefaultPollInterval is how often the local backend re-reads the
	// stored collection for subscribers, in milliseconds.
	DefaultPollInterval = 2000

	// DefaultUpdateTimeout bounds a single status update, in seconds.
	// A hung backend call releases the per-booking guard after this.
	DefaultUpdateTimeout = 10

	// DefaultAdviceTimeout bounds one advice request, in seconds.
	DefaultAdviceTimeout = 30

	// LocalBookingsKey is the single entry the local backend stores the
	// serialized collection under.
	LocalBookingsKey = "glowup_bookings"

	// RedisBookingPrefix prefixes per-booking document keys.
	RedisBookingPrefix = "booking:"

	// RedisBookingIndex is the createdAt-sorted index of booking ids.
	RedisBookingIndex = "bookings:index"

	// RedisEventsChannel carries change notifications to subscribers.
	RedisEventsChannel = "bookings:events"
)

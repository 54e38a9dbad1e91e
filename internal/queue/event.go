// Package queue defines the pass.booked message payload, its publisher
// and the background consumer that writes the booking log.
package queue

// PassBookedEvent is published after a booking commits. It carries enough
// for downstream consumers to log or notify without querying the
// database.
type PassBookedEvent struct {
	Reference string `json:"reference"`
	Username  string `json:"username"`
	Room      int    `json:"room"`
	Date      string `json:"date"`
	TimeRange string `json:"time_range"`
	BookedAt  string `json:"booked_at"`
}

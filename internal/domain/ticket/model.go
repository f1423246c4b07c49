package ticket

import (
	"strconv"
	"time"
)

type CheckInType string

const (
	CheckInOnline CheckInType = "online"
	CheckInOnsite CheckInType = "onsite"
)

// Ticket is one occupied seat on a simulated flight.
// PassedSecurityTime is nil unless the flight departed.
type Ticket struct {
	UniqueID           string      `json:"unique_id"`
	TransactionID      string      `json:"transaction_id"`
	SeatNumber         int         `json:"seat_number"`
	PassportNumber     string      `json:"passport_number"`
	CheckInType        CheckInType `json:"check_in_type"`
	CheckinTime        time.Time   `json:"checkin_time"`
	PassedSecurityTime *time.Time  `json:"passed_security_time,omitempty"`
}

// UniqueID derives the upsert key for a seat on a flight.
func UniqueID(transactionID string, seat int) string {
	return transactionID + "-S:" + strconv.Itoa(seat)
}

// Dedup collapses tickets sharing a UniqueID. The last record seen wins and
// keeps the position of the first occurrence.
func Dedup(tickets []Ticket) []Ticket {
	index := make(map[string]int, len(tickets))
	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if i, ok := index[t.UniqueID]; ok {
			out[i] = t
			continue
		}
		index[t.UniqueID] = len(out)
		out = append(out, t)
	}
	return out
}

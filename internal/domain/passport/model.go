package passport

import (
	"errors"
	"fmt"
)

var ErrInvalidPassport = errors.New("invalid passport")

// Passport identifies a traveler. Only the number takes part in simulation.
type Passport struct {
	Number string `json:"passport_number"`
}

// Numbers extracts the identifiers, failing on the first empty one.
func Numbers(list []Passport) ([]string, error) {
	out := make([]string, 0, len(list))
	for i, p := range list {
		if p.Number == "" {
			return nil, fmt.Errorf("%w: empty passport_number at index %d", ErrInvalidPassport, i)
		}
		out = append(out, p.Number)
	}
	return out, nil
}

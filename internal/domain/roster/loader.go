package roster

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cmlabs-hris/hris-policy-engine/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a roster file
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates roster YAML
func Parse(data []byte) (Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("failed to parse roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

// Validate checks member identity, contact addresses and coordinates
func (r Roster) Validate() error {
	if len(r.Members) == 0 {
		return ErrEmptyRoster
	}

	var errs validator.ValidationErrors
	seen := make(map[string]struct{}, len(r.Members))

	for i, m := range r.Members {
		field := "members[" + strconv.Itoa(i) + "]"

		if validator.IsEmpty(m.UserID) {
			errs.Add(field+".user_id", "user_id is required")
		} else if _, dup := seen[m.UserID]; dup {
			errs.Add(field+".user_id", "duplicate user_id "+m.UserID)
		}
		seen[m.UserID] = struct{}{}

		if validator.IsEmpty(m.Name) {
			errs.Add(field+".name", "name is required")
		}
		if m.Email != "" && !validator.IsValidEmail(m.Email) {
			errs.Add(field+".email", "invalid email format")
		}
	}

	for userID, loc := range r.Locations {
		field := "locations." + userID
		if !validator.IsValidLatitude(loc.Latitude) {
			errs.Add(field+".latitude", "latitude must be between -90 and 90")
		}
		if !validator.IsValidLongitude(loc.Longitude) {
			errs.Add(field+".longitude", "longitude must be between -180 and 180")
		}
	}

	if err := errs.Err(); err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}
	return nil
}

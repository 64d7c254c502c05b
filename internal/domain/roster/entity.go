package roster

import (
	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/notification"
)

// Member is a user whose attendance is simulated
type Member struct {
	UserID         string `yaml:"user_id"`
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// Person returns the notification recipient for the member
func (m Member) Person() notification.Person {
	return notification.Person{
		UserID:         m.UserID,
		Name:           m.Name,
		Email:          m.Email,
		TelegramChatID: m.TelegramChatID,
	}
}

// Location is the fixed place a member checks in and out from
type Location struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Address   string  `yaml:"address"`
}

// Roster is the fixed member list with locations keyed by user ID.
// A member without a location is kept; the scheduler skips it with a warning.
type Roster struct {
	Members   []Member            `yaml:"members"`
	Locations map[string]Location `yaml:"locations"`
}

// LocationOf returns the member's location, if any
func (r Roster) LocationOf(userID string) (Location, bool) {
	loc, ok := r.Locations[userID]
	return loc, ok
}

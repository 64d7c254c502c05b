package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceCheckIn  NotificationType = "attendance_check_in"
	TypeAttendanceCheckOut NotificationType = "attendance_check_out"
)

// Person is the recipient of an attendance notification
type Person struct {
	UserID         string
	Name           string
	Email          string
	TelegramChatID int64
}

// Message is a rendered notification handed to delivery channels.
// Payload is CheckInData or CheckOutData, matching Type.
type Message struct {
	ID        string
	Type      NotificationType
	Recipient Person
	Title     string
	Text      string
	Payload   interface{}
	CreatedAt time.Time
}

// CheckInData is the payload of a check-in notification
type CheckInData struct {
	At      time.Time
	Address string
	IsLate  bool
}

// CheckOutData is the payload of a check-out notification
type CheckOutData struct {
	At            time.Time
	TotalHours    float64
	OvertimeHours float64
}

package domain

const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
)

const (
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusPending   = "pending"
)

// Event is a read-mostly projection of the server record. Most of the
// trailing fields are optional and may be absent from any given response.
type Event struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Description      *string         `json:"description"`
	Date             Timestamp       `json:"date"`
	OrganizerID      int64           `json:"organizer_id"`
	Organizer        *EventOrganizer `json:"organizer,omitempty"`
	Comments         []Comment       `json:"comments,omitempty"`
	Location         string          `json:"location,omitempty"`
	Price            *float64        `json:"price,omitempty"`
	MaxAttendees     *int            `json:"max_attendees,omitempty"`
	Category         string          `json:"category,omitempty"`
	Status           string          `json:"status,omitempty"`
	CurrentAttendees *int            `json:"current_attendees,omitempty"`
	Attendees        []User          `json:"attendees,omitempty"`
	Registrations    []Registration  `json:"registrations,omitempty"`
}

// StatusOrDefault treats a missing status as active, as the admin views do.
func (e *Event) StatusOrDefault() string {
	if e.Status == "" {
		return EventStatusActive
	}
	return e.Status
}

type EventOrganizer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	User      *User     `json:"user,omitempty"`
}

type Registration struct {
	ID               int64              `json:"id"`
	UserID           int64              `json:"user_id"`
	EventID          int64              `json:"event_id"`
	RegistrationDate Timestamp          `json:"registration_date"`
	Status           string             `json:"status"`
	Attended         bool               `json:"attended"`
	User             User               `json:"user"`
	Event            *RegistrationEvent `json:"event,omitempty"`
}

type RegistrationEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// EventInput is the create/update form body. Date is checked by the event
// service since struct-typed fields are opaque to the validator.
type EventInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Date        Timestamp `json:"date"`
}

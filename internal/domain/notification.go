package domain

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt Timestamp `json:"created_at"`
	UserID    int64     `json:"user_id"`
	EventID   *int64    `json:"event_id,omitempty"`
}

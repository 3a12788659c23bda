package domain

import "encoding/json"

// Ticket pairs a registration with a scannable code image reference.
type Ticket struct {
	ID             int64  `json:"id"`
	EventID        int64  `json:"event_id,omitempty"`
	RegistrationID int64  `json:"registration_id,omitempty"`
	UserID         int64  `json:"user_id,omitempty"`
	QRCodeURL      string `json:"qr_code_url,omitempty"`
	Event          *Event `json:"event,omitempty"`
}

// UnmarshalJSON also accepts the legacy camel-case qrCodeUrl key.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	var aux struct {
		plain
		LegacyQRCodeURL string `json:"qrCodeUrl"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Ticket(aux.plain)
	if t.QRCodeURL == "" {
		t.QRCodeURL = aux.LegacyQRCodeURL
	}
	return nil
}

package response

type UserServiceValidate struct {
	IsValid   bool   `json:"is_valid"`
	UserID    int64  `json:"user_id"`
	EmailUser string `json:"email_user"`
}

type Availability struct {
	PropertyID int64  `json:"property_id"`
	RoomID     *int64 `json:"room_id,omitempty"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Available  bool   `json:"available"`
}

type CreatedReservation struct {
	ID         string  `json:"id"`
	PropertyID int64   `json:"property_id"`
	RoomID     *int64  `json:"room_id,omitempty"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	TotalPrice float64 `json:"total_price"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
}

type InitiatedPayment struct {
	ReservationID string  `json:"reservation_id"`
	PaymentID     int64   `json:"payment_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	RedirectURL   string  `json:"redirect_url"`
}

type ReservationDetail struct {
	ID            string  `json:"id"`
	PropertyID    int64   `json:"property_id"`
	RoomID        *int64  `json:"room_id,omitempty"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Guests        int     `json:"guests"`
	TotalPrice    float64 `json:"total_price"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// PaymentSessionCreated is the payment provider's answer to a session request.
type PaymentSessionCreated struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

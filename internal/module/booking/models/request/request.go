package request

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type CreateReservation struct {
	PropertyID int64  `json:"property_id" validate:"required"`
	RoomID     *int64 `json:"room_id"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests     int    `json:"guests" validate:"required,min=1"`
}

type CheckAvailability struct {
	PropertyID int64  `json:"property_id" validate:"required"`
	RoomID     *int64 `json:"room_id"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type InitiatePayment struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type PaymentOutcome struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
	Outcome       string `json:"outcome" validate:"required,oneof=success failure"`
	ExternalRef   string `json:"external_ref"`
}

type CancelReservation struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
}

type FinalizeStay struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
}

type PaymentSession struct {
	ReservationID string  `json:"reservation_id" validate:"required"`
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount" validate:"required"`
	Currency      string  `json:"currency" validate:"required"`
	SuccessURL    string  `json:"success_url" validate:"required"`
	FailureURL    string  `json:"failure_url" validate:"required"`
	PendingURL    string  `json:"pending_url" validate:"required"`
}

type PoisonedQueue struct {
	TopicTarget string      `json:"topic_target" validate:"required"`
	ErrorMsg    string      `json:"error_msg" validate:"required"`
	Payload     interface{} `json:"payload" validate:"required"`
}

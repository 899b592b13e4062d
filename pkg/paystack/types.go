package paystack

import "encoding/json"

// Transaction statuses reported by the verify endpoint. Anything else
// is passed through to the order verbatim.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metadata rides along with the transaction and comes back on verify,
// letting reconciliation recover the order without trusting the
// notification body.
type Metadata struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"uid"`
}

type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // kobo
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyData struct {
	Status          string          `json:"status"`
	Reference       string          `json:"reference"`
	Amount          int64           `json:"amount"` // kobo
	Currency        string          `json:"currency"`
	GatewayResponse string          `json:"gateway_response"`
	PaidAt          string          `json:"paid_at"`
	Metadata        Metadata        `json:"metadata"`
	Raw             json.RawMessage `json:"-"`
}

// WebhookEvent is the notification envelope POSTed by Paystack. Only
// the reference is read from it; everything else is re-verified.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

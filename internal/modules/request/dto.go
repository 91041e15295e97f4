package request

import "psymatch/internal/domain"

// CreateRequest is accepted from both authenticated clients and anonymous
// visitors. Anonymous callers must supply a name and a phone or Telegram id;
// authenticated callers inherit contact data from their account.
type CreateRequest struct {
	Kind               string   `json:"kind" validate:"required,oneof=quick session"`
	Name               string   `json:"name" validate:"max=100"`
	Phone              string   `json:"phone" validate:"max=32"`
	TelegramID         *int64   `json:"telegram_id,omitempty"`
	Topic              string   `json:"topic" validate:"max=200"`
	Comment            string   `json:"comment" validate:"max=2000"`
	PreferredGender    string   `json:"preferred_gender" validate:"omitempty,oneof=male female"`
	PreferredMinAge    int      `json:"preferred_min_age" validate:"omitempty,gte=18,lte=100"`
	PreferredMaxAge    int      `json:"preferred_max_age" validate:"omitempty,gte=18,lte=100"`
	PreferredLanguages []string `json:"preferred_languages" validate:"max=10"`
}

// CreateResponse carries the one-time client token for anonymous requests.
// The token is never shown again; it links the request to an account when
// the visitor later logs in through Telegram.
type CreateResponse struct {
	Request     *domain.ConsultationRequest `json:"request"`
	ClientToken string                      `json:"client_token,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=contacted not_contacted completed not_completed"`
}

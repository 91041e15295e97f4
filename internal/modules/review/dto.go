package review

// CreateReviewRequest targets exactly one completed interaction: a session
// or a consultation request.
type CreateReviewRequest struct {
	SessionID *int64 `json:"session_id,omitempty"`
	RequestID *int64 `json:"request_id,omitempty"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Text      string `json:"text"`
}

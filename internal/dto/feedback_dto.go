package dto

type FeedbackRequest struct {
	Type        string `json:"type" validate:"required,oneof=positive negative"`
	MessageId   string `json:"messageId" validate:"required"`
	Suggestions string `json:"suggestions"`
}

type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

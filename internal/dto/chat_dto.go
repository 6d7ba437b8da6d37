package dto

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"session_id" validate:"required"`
	Mode      string `json:"mode"` // "add_resolution" opens the guided resolution form
}

type SourceDTO struct {
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	RelevanceScore float32        `json:"relevance_score"`
	MatchReasons   []string       `json:"match_reasons"`
}

type ActionDTO struct {
	Type   string `json:"type"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

type ChatResponse struct {
	Success   bool        `json:"success"`
	Response  string      `json:"response"`
	Sources   []SourceDTO `json:"sources"`
	SessionId string      `json:"session_id"`
	Actions   []ActionDTO `json:"actions"`
}

type ClearChatRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

package dto

import "support-assistant-be/pkg/store"

type FileUploadResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	FileInfo  store.FileInfo `json:"file_info"`
	SessionId string         `json:"session_id"`
}

type AddResolutionRequest struct {
	ErrorCode   string `json:"error_code"`
	Module      string `json:"module"`
	TicketLevel string `json:"ticket_level"`
	Description string `json:"description" validate:"required"`
	Resolution  string `json:"resolution" validate:"required"`
}

type AddResolutionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DocumentCount int    `json:"document_count"`
}

type HealthResponse struct {
	Status               string `json:"status"`
	Message              string `json:"message"`
	Timestamp            string `json:"timestamp"`
	DefaultSessionLoaded bool   `json:"default_session_loaded"`
}

type DefaultSessionResponse struct {
	Available   bool            `json:"available"`
	Message     string          `json:"message,omitempty"`
	SessionId   string          `json:"session_id,omitempty"`
	FileInfo    *store.FileInfo `json:"file_info,omitempty"`
	LoadedAt    string          `json:"loaded_at,omitempty"`
	TicketCount int             `json:"ticket_count,omitempty"`
}

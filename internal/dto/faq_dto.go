package dto

type FaqGenerationResponse struct {
	SessionId string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

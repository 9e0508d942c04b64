package dto

// IngestResponse acknowledges an accepted ingestion request. The actual
// processing happens on the worker, so callers poll the status endpoint.
type IngestResponse struct {
	SessionId string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// StatusResponse is the lightweight progress view of a session.
type StatusResponse struct {
	SessionId string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

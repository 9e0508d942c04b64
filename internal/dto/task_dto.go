package dto

// IngestionTaskMessage is the payload published to the ingestion topic.
// PDF bytes travel base64-encoded inside the message so the worker does not
// depend on shared disk with the API process.
type IngestionTaskMessage struct {
	UserSessionId     string `json:"user_session_id"`
	InputType         string `json:"input_type"`
	InputValue        string `json:"input_value"`
	PdfFileContentB64 string `json:"pdf_file_content_b64,omitempty"`
}

// FaqTaskMessage is the payload published to the FAQ generation topic.
type FaqTaskMessage struct {
	UserSessionId string `json:"user_session_id"`
}

package types

// Channel event payloads. Field names mirror the wire contract the web
// client speaks.

type SendMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type SendFilePayload struct {
	Username string `json:"username"`
	Filename string `json:"filename"`
	// FileData is the base64-encoded attachment bytes.
	FileData string `json:"file_data"`
}

type MarkSeenPayload struct {
	MessageID int64 `json:"message_id"`
}

type UserTypingPayload struct {
	Username string `json:"username"`
}

type MessageSeenPayload struct {
	MessageID int64 `json:"message_id"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

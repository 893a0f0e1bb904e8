package models

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Notice is a user-visible message attached to a view model when something
// degraded, e.g. the remote sheet was unreachable
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notice levels
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// NewWarning builds a warning notice
func NewWarning(msg string) Notice {
	return Notice{Level: NoticeWarning, Message: msg}
}

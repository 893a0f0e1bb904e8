package models

// User is the signed-in principal held in the echo store
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateProfileRequest represents a request to update user profile
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=2"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

package dto

import "time"

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminCreateRequest payload for creating additional admins.
type AdminCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminResponse is the external representation of an admin account.
type AdminResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is returned from a successful login.
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	Admin       AdminResponse `json:"admin"`
}

// PasswordResetRequest asks for a reset token for the address.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm redeems a reset token.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

package auth

// LoginRequest is the token login payload. Email is the login key.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// TokenResponse is returned on successful login or refresh. AuthToken is
// the short-lived access token clients send as "Bearer {token}".
type TokenResponse struct {
	AuthToken    string `json:"auth_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshTokenRequest asks for a fresh access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

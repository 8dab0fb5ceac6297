package auth

import "time"

// SessionCookieName is the cookie that carries the session token between
// the browser and the server. The session gate and the auth handlers must
// agree on this name, so it lives here.
const SessionCookieName = "authToken"

// Account is a registered user. Each account is its own tenant: the
// account id is the scoping key for every shop, customer and order row.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest is the payload for credential verification.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

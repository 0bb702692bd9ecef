package models

// Role represents the two authenticated identities in the system.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

// Claims represents the identity carried by a bearer token. Identity is
// the admin username or the normalized vehicle number depending on Role.
type Claims struct {
	SessionID string `json:"session_id"`
	Identity  string `json:"identity"`
	Role      Role   `json:"role"`
	Exp       int64  `json:"exp"`
}

// VehicleStats is driver-declared telemetry for the current session.
// It is overwritten wholesale on every submission and never persisted:
// telemetry is ephemeral operational input, not historical fleet data.
type VehicleStats struct {
	Temp    float64 `json:"temp"`
	Load    float64 `json:"load"`
	Battery float64 `json:"battery"`
}

// LoginRequest represents a login request for either role. Password is
// required for admins only; drivers authenticate by vehicle number alone.
type LoginRequest struct {
	UserType string `json:"user_type"`
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login or registration response.
type LoginResponse struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
}

// StatsRequest carries a telemetry submission. Fields arrive as strings
// (form-shaped input) and are validated as numeric before use.
type StatsRequest struct {
	Temp    string `json:"temp"`
	Load    string `json:"load"`
	Battery string `json:"battery"`
}

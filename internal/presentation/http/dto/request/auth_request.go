package request

// LoginRequest is the body of POST /auth/login. Terminals log in once and
// keep the token as TERMINAL_API_TOKEN.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

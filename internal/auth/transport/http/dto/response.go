package dto

// RegisterResponse is the safe registration summary: never the password,
// never the verification token.
type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// AuthenticationResponse carries the issued token pair.
type AuthenticationResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIntrospectionResponse is always returned with status 200; active=false
// is the only failure signal.
type TokenIntrospectionResponse struct {
	Active bool   `json:"active"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

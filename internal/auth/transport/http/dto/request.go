package dto

// RegisterRequest carries the data needed to register a new user. Profile
// fields are optional.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username_format"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`

	FirstName    string  `json:"firstName" validate:"max=100"`
	LastName     string  `json:"lastName" validate:"max=100"`
	Gender       string  `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	BirthDate    string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Height       float64 `json:"height" validate:"gte=0"`
	Weight       float64 `json:"weight" validate:"gte=0"`
	FitnessLevel string  `json:"fitnessLevel" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

// AuthenticationRequest carries login credentials.
type AuthenticationRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type TokenRefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenIntrospectionRequest struct {
	Token string `json:"token"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type PasswordResetRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

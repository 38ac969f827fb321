package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateUserRequest struct {
	FirstName    string  `json:"firstName"    validate:"required,min=2,max=100"`
	LastName     string  `json:"lastName"     validate:"required,min=2,max=100"`
	Email        string  `json:"email"        validate:"required,email"`
	Phone        *string `json:"phone"`
	Password     string  `json:"password"     validate:"required,min=8"`
	Role         string  `json:"role"         validate:"required,oneof=admin teacher student"`
	CurrentGrade *string `json:"currentGrade"` // students only, validated against the grade enum
}

type UpdateUserRequest struct {
	FirstName    string  `json:"firstName"    validate:"omitempty,min=2,max=100"`
	LastName     string  `json:"lastName"     validate:"omitempty,min=2,max=100"`
	Phone        *string `json:"phone"`
	Password     string  `json:"password"     validate:"omitempty,min=8"`
	CurrentGrade *string `json:"currentGrade"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone"`
	Role         string  `json:"role"`
	CurrentGrade *string `json:"currentGrade"`
	IsActive     bool    `json:"isActive"`
}

type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int          `json:"expiresIn"` // seconds
	User         UserResponse `json:"user"`
}

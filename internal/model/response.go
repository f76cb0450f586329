package model

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     string   `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type LoginResponse struct {
	Message      string     `json:"message"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         PublicUser `json:"user"`
}

type RefreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ClaimsResponse struct {
	Message string        `json:"message"`
	User    *AccessClaims `json:"user"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
}

type UserResponse struct {
	User UserSummary `json:"user"`
}

type UserUpdatedResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

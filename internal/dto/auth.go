package dto

// AuthenticationRequest is the payload of POST /auth/authenticate.
type AuthenticationRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthenticationResponse returns the issued token.
type AuthenticationResponse struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Token     string `json:"token"`
}

package domain

type AuthData struct {
	UserId string
	Tier   string
}

type AuthenticateResponse struct {
	Authenticated bool
	ErrorReason   string
	AuthData      *AuthData
}

package models

// Principal is the reviewing administrator role. Passwords are stored only
// as bcrypt hashes; the hash never leaves the service in responses.
type Principal struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

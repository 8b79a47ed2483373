package users

import "time"

// User is an authenticated account. Provisioning happens outside this
// service; only lookup is needed to issue sessions.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

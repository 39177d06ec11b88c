package domain

import "time"

// Customer is a storefront account. Its id is the subject of issued tokens
// and the owner key of its cart.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

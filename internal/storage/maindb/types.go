package maindb

import (
	"time"

	"github.com/google/uuid"
)

// StartingCoins is the balance granted to every new account
const StartingCoins = 500

// User is an account row. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Coins     int       `json:"coins"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreItem is a purchasable cosmetic from the storefront catalog
type StoreItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Purchase records one item bought by one user
type Purchase struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

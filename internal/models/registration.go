package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is one visitor's attendance confirmation and preferences.
// CookieID is the natural key: at most one row exists per identity token.
type Registration struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Drinks           []string  `json:"drinks"`
	IndividualWishes *string   `json:"individual_wishes"`
	CookieID         string    `json:"cookie_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DrinkOptions is the drink vocabulary shown by the registration form.
// The store treats drink labels as opaque strings; this list is for the UI only.
var DrinkOptions = []string{"Шампанское", "Вино", "Виски", "Текила"}

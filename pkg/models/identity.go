package models

import "time"

type IdentityMetadata struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

type Identity struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	Metadata         IdentityMetadata `json:"metadata"`
	EmailConfirmedAt *time.Time       `json:"emailConfirmedAt"`
	CreatedAt        time.Time        `json:"createdAt"`
}

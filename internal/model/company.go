package model

import (
	"fmt"
	"time"
)

// Company groups projects on the public site.
type Company struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description"`
	Website     string    `json:"website" bson:"website"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// NewCompany is the input for company creation.
type NewCompany struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// Validate checks required fields.
func (n *NewCompany) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

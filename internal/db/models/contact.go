package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Contact represents a person at a client company. Contacts flagged CanLogin
// receive generated credentials by email and may authenticate against the API
// with the "client" role.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:ct"`

	ID           string    `bun:"id,pk" json:"id"`
	ClientID     string    `bun:"client_id,notnull,type:uuid" json:"client" form:"required"`
	Client       *Client   `bun:"rel:belongs-to,join:client_id=id" json:"clientDoc,omitempty"`
	FirstName    string    `bun:"first_name,notnull" json:"firstName" form:"required"`
	LastName     string    `bun:"last_name,notnull" json:"lastName" form:"required"`
	Email        string    `bun:"email,notnull,unique" json:"email" form:"required"`
	Phone        string    `bun:"phone" json:"phone"`
	Designation  string    `bun:"designation" json:"designation"`
	CanLogin     bool      `bun:"can_login,notnull,default:false" json:"canLogin"`
	Password     string    `bun:"-" json:"password,omitempty"` // plaintext in transit only
	PasswordHash string    `bun:"password_hash" json:"-"`
	Role         string    `bun:"role,notnull,default:'client'" json:"role"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (c *Contact) GetID() string   { return c.ID }
func (c *Contact) SetID(id string) { c.ID = id }

// FullName joins first and last name for email salutations.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Client represents a rated company.
type Client struct {
	bun.BaseModel `bun:"table:clients,alias:cl"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull,unique" json:"name" form:"required"`
	Email      string    `bun:"email,notnull" json:"email" form:"required"`
	Phone      string    `bun:"phone" json:"phone"`
	Address    string    `bun:"address" json:"address"`
	Website    string    `bun:"website" json:"website"`
	Password   string    `bun:"-" json:"password,omitempty"` // only used by formObject decoration, never stored
	IndustryID string    `bun:"industry_id,type:uuid" json:"industry" form:"required"`
	Industry   *Industry `bun:"rel:belongs-to,join:industry_id=id" json:"industryDoc,omitempty"`
	Contacts   []Contact `bun:"rel:has-many,join:id=client_id" json:"contacts,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (c *Client) GetID() string   { return c.ID }
func (c *Client) SetID(id string) { c.ID = id }

// Industry categorizes clients by sector.
type Industry struct {
	bun.BaseModel `bun:"table:industries,alias:ind"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name" form:"required"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (i *Industry) GetID() string   { return i.ID }
func (i *Industry) SetID(id string) { i.ID = id }

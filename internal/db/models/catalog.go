package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Methodology is a rating methodology document set.
type Methodology struct {
	bun.BaseModel `bun:"table:methodologies,alias:mt"`

	ID          string     `bun:"id,pk" json:"id"`
	Name        string     `bun:"name,notnull,unique" json:"name" form:"required"`
	Description string     `bun:"description" json:"description"`
	Documents   StringList `bun:"documents,type:text" json:"documents"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (m *Methodology) GetID() string   { return m.ID }
func (m *Methodology) SetID(id string) { m.ID = id }

// Questionnaire is a set of questionnaire documents sent to clients.
type Questionnaire struct {
	bun.BaseModel `bun:"table:questionnaires,alias:qn"`

	ID        string     `bun:"id,pk" json:"id"`
	Name      string     `bun:"name,notnull,unique" json:"name" form:"required"`
	Sector    string     `bun:"sector" json:"sector"`
	Documents StringList `bun:"documents,type:text" json:"documents"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (q *Questionnaire) GetID() string   { return q.ID }
func (q *Questionnaire) SetID(id string) { q.ID = id }

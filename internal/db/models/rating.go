package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RatingStatus is the explicit rating lifecycle state.
type RatingStatus string

const (
	RatingStatusPending   RatingStatus = "pending"
	RatingStatusOngoing   RatingStatus = "ongoing"
	RatingStatusConcluded RatingStatus = "concluded"
	RatingStatusCancelled RatingStatus = "cancelled"
)

// CanTransitionTo reports whether the lifecycle allows moving to next.
// The graph is pending → ongoing → {concluded, cancelled}; concluded and
// cancelled are terminal. A pending rating may also be cancelled directly.
func (s RatingStatus) CanTransitionTo(next RatingStatus) bool {
	switch s {
	case RatingStatusPending:
		return next == RatingStatusOngoing || next == RatingStatusCancelled
	case RatingStatusOngoing:
		return next == RatingStatusConcluded || next == RatingStatusCancelled
	default:
		return false
	}
}

// Rating represents one rating engagement for a client in a given year.
// At most one rating exists per (year, client) pair.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:rt"`

	ID              string         `bun:"id,pk" json:"id"`
	Year            int            `bun:"year,notnull" json:"year" form:"required"`
	ClientID        string         `bun:"client_id,notnull,type:uuid" json:"client" form:"required"`
	Client          *Client        `bun:"rel:belongs-to,join:client_id=id" json:"clientDoc,omitempty"`
	MethodologyID   string         `bun:"methodology_id,type:uuid" json:"methodology"`
	Methodology     *Methodology   `bun:"rel:belongs-to,join:methodology_id=id" json:"methodologyDoc,omitempty"`
	QuestionnaireID string         `bun:"questionnaire_id,type:uuid" json:"questionnaire"`
	Questionnaire   *Questionnaire `bun:"rel:belongs-to,join:questionnaire_id=id" json:"questionnaireDoc,omitempty"`
	Status          RatingStatus   `bun:"status,notnull,default:'pending'" json:"status"`
	RatingClass     string         `bun:"rating_class" json:"ratingClass"`
	RatingScore     string         `bun:"rating_score" json:"ratingScore"`
	IssueDate       *time.Time     `bun:"issue_date" json:"issueDate,omitempty"`
	ExpiryDate      *time.Time     `bun:"expiry_date" json:"expiryDate,omitempty"`
	Reports         StringList     `bun:"reports,type:text" json:"reports"`
	CreatedAt       time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (r *Rating) GetID() string   { return r.ID }
func (r *Rating) SetID(id string) { r.ID = id }

// ReadyToConclude reports whether the rating carries everything a concluded
// rating must have: issue and expiry dates, a rating class, and at least one
// final report file.
func (r *Rating) ReadyToConclude() bool {
	return r.IssueDate != nil && r.ExpiryDate != nil && r.RatingClass != "" && len(r.Reports) > 0
}

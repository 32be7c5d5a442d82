package models

import (
	"time"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in-progress"
	Resolved   IssueStatus = "resolved"
)

// Statuses lists every status in dashboard order.
var Statuses = []IssueStatus{Pending, InProgress, Resolved}

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved:
		return true
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "low"
	Medium IssuePriority = "medium"
	High   IssuePriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p IssuePriority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

// Issue represents a civic issue reported by a citizen.
// ContactInfo is always stored as submitted; redaction happens per viewer.
type Issue struct {
	ID          string        `bson:"_id" json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string        `bson:"title" json:"title" gorm:"not null"`
	Description string        `bson:"description" json:"description" gorm:"type:text;not null"`
	Location    string        `bson:"location" json:"location" gorm:"not null"`
	Category    string        `bson:"category" json:"category" gorm:"not null;index"`
	Status      IssueStatus   `bson:"status" json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Priority    IssuePriority `bson:"priority" json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	ContactInfo *string       `bson:"contact_info" json:"contact_info" gorm:"type:text"`
	UserID      string        `bson:"user_id" json:"user_id" gorm:"type:varchar(36);not null;index"`
	AssignedTo  *string       `bson:"assigned_to" json:"assigned_to" gorm:"type:varchar(36)"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// IssueUpdate is a partial update applied by an authority.
// Nil fields are left untouched; AssignedTo is always written.
type IssueUpdate struct {
	Status     *IssueStatus
	Priority   *IssuePriority
	AssignedTo string
}

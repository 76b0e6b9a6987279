package models

import (
	"time"

	"gorm.io/datatypes"
)

type QueryStatus string

const (
	QueryStatusOpen       QueryStatus = "open"
	QueryStatusInProgress QueryStatus = "in_progress"
	QueryStatusClosed     QueryStatus = "closed"
)

func (s QueryStatus) Valid() bool {
	switch s {
	case QueryStatusOpen, QueryStatusInProgress, QueryStatusClosed:
		return true
	}
	return false
}

// Query is a support ticket raised by a student
type Query struct {
	ID                string                      `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	RollNo            string                      `json:"roll_no" gorm:"not null;size:16;index" bson:"roll_no"`
	Name              string                      `json:"name" gorm:"size:200" bson:"name"`
	Email             string                      `json:"email" gorm:"size:255" bson:"email"`
	Courses           datatypes.JSONSlice[string] `json:"courses" gorm:"type:jsonb" bson:"courses"`
	Subject           string                      `json:"subject" gorm:"not null;size:200" bson:"subject"`
	Message           string                      `json:"message" gorm:"type:text;not null" bson:"message"`
	Status            QueryStatus                 `json:"status" gorm:"size:20;default:open;index" bson:"status"`
	AdminResponse     *string                     `json:"admin_response" gorm:"type:text" bson:"admin_response"`
	AdminComment      *string                     `json:"admin_comment" gorm:"type:text" bson:"admin_comment"`
	HasUnreadResponse bool                        `json:"has_unread_response" gorm:"default:false" bson:"has_unread_response"`
	ResponseReadAt    *time.Time                  `json:"response_read_at" bson:"response_read_at"`
	CreatedAt         time.Time                   `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at" bson:"updated_at"`
}

func (Query) TableName() string {
	return "queries"
}

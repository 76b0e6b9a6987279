package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student is the registration record of one student. It is created once by
// bulk registration and never modified or deleted afterwards.
type Student struct {
	RollNo          string                      `json:"roll_no" gorm:"primaryKey;size:16" bson:"_id"`
	Name            string                      `json:"name" gorm:"not null;size:200" bson:"name"`
	Email           string                      `json:"email" gorm:"uniqueIndex;not null;size:255" bson:"email"`
	AccountID       string                      `json:"account_id" gorm:"size:255;index" bson:"account_id"`
	Courses         datatypes.JSONSlice[string] `json:"courses" gorm:"type:jsonb" bson:"courses"`
	InitialPassword string                      `json:"-" gorm:"size:64" bson:"initial_password"`
	RegisteredBy    string                      `json:"registered_by" gorm:"size:64" bson:"registered_by"`
	CreatedAt       time.Time                   `json:"created_at" bson:"created_at"`
}

func (Student) TableName() string {
	return "students"
}

// RosterEntry is one unique student merged across gradesheets
type RosterEntry struct {
	RollNo  string   `json:"roll_no"`
	Name    string   `json:"name"`
	Courses []string `json:"courses"`
}

package models

import "time"

type ActivityType string

const (
	ActivityLogin          ActivityType = "login"
	ActivityLogout         ActivityType = "logout"
	ActivityPasswordChange ActivityType = "password_change"
	ActivityPasswordReset  ActivityType = "password_reset"
	ActivityQuerySubmit    ActivityType = "query_submit"
	ActivityQueryResponse  ActivityType = "query_response"
)

// ActivityLog is an append-only audit entry
type ActivityLog struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	RollNo       string       `json:"roll_no" gorm:"size:255;index" bson:"roll_no"`
	Name         string       `json:"name" gorm:"size:200" bson:"name"`
	Email        string       `json:"email" gorm:"size:255" bson:"email"`
	ActivityType ActivityType `json:"activity_type" gorm:"size:32;index" bson:"activity_type"`
	Timestamp    time.Time    `json:"timestamp" gorm:"index" bson:"timestamp"`
	UserAgent    string       `json:"user_agent" gorm:"size:500" bson:"user_agent"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is a persisted authentication or authorization event.
type SecurityLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"type:varchar(64);index"`
	UserID    uint   `json:"user_id" gorm:"index"`
	Email     string `json:"email" gorm:"type:varchar(191);index"`
	IP        string `json:"ip" gorm:"type:varchar(45)"`
	// Location is "City/Country" when the GeoIP lookup succeeds.
	Location  string         `json:"location" gorm:"type:varchar(255)"`
	UserAgent string         `json:"user_agent" gorm:"type:varchar(512)"`
	RequestID string         `json:"request_id" gorm:"type:varchar(64);index"`
	Message   string         `json:"message" gorm:"type:text"`
	Details   datatypes.JSON `json:"details" gorm:"type:json"`
}

package models

import "gorm.io/datatypes"

// CustomerRequestModel stores timestamps as unix milliseconds. Timestamps are
// always written by the application, so gorm's automatic tracking is off.
type CustomerRequestModel struct {
	ID               string         `gorm:"primaryKey;size:36"`
	Content          string         `gorm:"type:text;not null"`
	Type             string         `gorm:"size:20;not null"`
	Status           string         `gorm:"size:20;not null;index"`
	ExternalUserID   string         `gorm:"size:191;not null;index"`
	UserName         *string        `gorm:"size:255"`
	ProjectID        string         `gorm:"size:191;not null"`
	ExternalTicketID *string        `gorm:"size:64;index"`
	Response         *string        `gorm:"type:text"`
	Source           *string        `gorm:"size:100"`
	Metadata         datatypes.JSON `gorm:"type:json"`
	Version          int            `gorm:"not null;default:1"`
	CreatedAt        int64          `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        int64          `gorm:"not null;autoUpdateTime:false"`
	DeletedAt        *int64         `gorm:"index"`
}

func (CustomerRequestModel) TableName() string {
	return "customer_requests"
}

// All lists every persisted model, in creation order.
func All() []any {
	return []any{&CustomerRequestModel{}}
}

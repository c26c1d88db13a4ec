package model

import "time"

// Event shelter calendar event, table events
type Event struct {
	EventID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Title   string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Content string    `gorm:"type:text;not null"                             json:"content"`
	StartAt time.Time `gorm:"not null;index"                                 json:"start_at"`
	EndAt   time.Time `gorm:"not null"                                       json:"end_at"`
	SoftDeleteModel
}

// TableName table name
func (Event) TableName() string { return "events" }

package models

import "time"

type News struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Headline  string    `gorm:"size:255;not null" json:"headline"`
	Content   string    `gorm:"type:text" json:"content"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

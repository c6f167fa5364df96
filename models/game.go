package models

import "time"

type Game struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null;index" json:"title"`
	Genre       []string     `gorm:"serializer:json" json:"genre"`
	Platform    []string     `gorm:"serializer:json" json:"platform"`
	Developer   string       `gorm:"size:255;index" json:"developer"`
	Publisher   string       `gorm:"size:255;index" json:"publisher"`
	Detail      string       `gorm:"type:text" json:"detail"`
	Rating      float64      `json:"rating"`
	Picture     *string      `json:"picture"`
	ReleaseDate *time.Time   `json:"release_date"`
	Reviews     []GameReview `gorm:"foreignKey:GameID" json:"reviews,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type GameReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    uint      `gorm:"not null;index" json:"game_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	User      *Author   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

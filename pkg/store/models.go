package store

import "time"

// GORM models used for persistence.
type TextbookModel struct {
	ID          string    `gorm:"primaryKey"`
	Filename    string    `gorm:"not null"`
	UploadedAt  time.Time `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	PageCount   int       `gorm:"not null"`
	PDFPath     string
	UserID      *string `gorm:"index"`
	IngestState string  `gorm:"not null"`
}

type ConversationModel struct {
	ID             string  `gorm:"primaryKey"`
	TextbookID     string  `gorm:"not null;index"`
	UserID         *string `gorm:"index"`
	Kind           string  `gorm:"not null"`
	Question       string  `gorm:"type:text"`
	Answer         string  `gorm:"type:text"`
	PageNumber     *int
	Topic          string
	Chapter        *string
	LectureContent string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

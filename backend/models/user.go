package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Type         string `gorm:"default:ind"` // ind, stu, org, admin
	Name         string
	Displayname  string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Expiry       *time.Time // subscription expiry for ind/stu accounts

	// Aggregate answer counters. Only ever updated with relative
	// increments so concurrent submissions cannot lose updates.
	QuestionsTotal     int `gorm:"default:0"`
	QuestionsCorrect   int `gorm:"default:0"`
	QuestionsIncorrect int `gorm:"default:0"`
	ProgressTotal      int `gorm:"default:0"`
	ProgressGrade1     int `gorm:"default:0"`
	ProgressGrade2     int `gorm:"default:0"`
	ProgressGrade3     int `gorm:"default:0"`
	ProgressGrade4     int `gorm:"default:0"`
	ProgressGrade5     int `gorm:"default:0"`
	TestsCount         int `gorm:"default:0"`
	SuccessfulLogins   int `gorm:"default:0"`

	LegacyID *uint `gorm:"uniqueIndex"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

type PasswordResetToken struct {
	gorm.Model
	UserID    uint
	Token     string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
	Consumed  bool `gorm:"default:false"`
}

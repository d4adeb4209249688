package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is a test template an org account hands out to students. Each
// student gets a UserAssignment which turns into a Test the first time they
// start it.
type Assignment struct {
	gorm.Model
	UserID             uint `gorm:"not null;index"` // creating org user
	Savename           string
	Deadline           *time.Time
	Topics             string // comma-separated study area IDs
	Questions          string // requested question count, stored as string for legacy compatibility
	MinDifficulty      *int
	MaxDifficulty      *int
	TimeLimitRequested bool
}

type UserAssignment struct {
	gorm.Model
	UserID       uint `gorm:"not null;index"`
	AssignmentID uint `gorm:"not null;index"`
	Assignment   Assignment
	TestID       *uint
	Test         *Test
}

package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TestTypeCustom     = "custom"
	TestTypeAssignment = "assignment"
)

// Test is one exam or practice-test attempt for one user. The question list
// is fixed at generation time; only the cursor, answers, marks and progress
// mutate while the session is running.
type Test struct {
	gorm.Model
	UserID       uint   `gorm:"not null;index"`
	AssignmentID *uint  `gorm:"index"`
	Type         string `gorm:"default:custom"`

	// Generation criteria, kept for the results view.
	Topics                   string // comma-separated study area IDs
	Difficulty               string // easy, intermediate, hard; empty = all levels
	IncludePreviousCorrect   bool
	IncludePreviousIncorrect bool

	NumQuestions       int
	TimeLimitRequested bool
	TimeLimit          *int // seconds

	Questions       string // comma-separated question IDs, immutable once set
	Answers         string // comma-separated selected answers by position
	CurrentQuestion int    `gorm:"default:0"`
	StartTime       time.Time
	EndTime         *time.Time
	Marks           int
	MarksAvailable  int
	Progress        int
	Complete        bool `gorm:"default:false;index"`
}

func (t *Test) QuestionIDs() []uint {
	return ParseIDList(t.Questions)
}

// UserQuestion records one answer. At most one row exists per
// (user, question, test) triple; practice answers carry a nil TestID and are
// appended per attempt.
type UserQuestion struct {
	gorm.Model
	UserID         uint  `gorm:"not null;uniqueIndex:idx_user_question_test"`
	QuestionID     uint  `gorm:"not null;uniqueIndex:idx_user_question_test"`
	TestID         *uint `gorm:"uniqueIndex:idx_user_question_test"`
	SelectedAnswer int
	Correct        bool
	Type           string
}

func ParseIDList(s string) []uint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

func JoinIDList(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeTMCQ = "tmcq" // text multiple choice
	QuestionTypeGMCQ = "gmcq" // graphical multiple choice
	QuestionTypeDDI  = "ddi"  // drag-and-drop
)

type StudyArea struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Position    int
	Description string
	Questions   []Question
	LegacyID    *uint `gorm:"uniqueIndex"`
}

// Extract is an audio clip attached to listening-comprehension questions.
type Extract struct {
	gorm.Model
	Name     string
	AudioURL string
	LegacyID *uint `gorm:"uniqueIndex"`
}

// QuestionOption is one multiple-choice option. Either field may be empty;
// GMCQ options are usually image-only.
type QuestionOption struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type Question struct {
	gorm.Model
	StudyAreaID uint `gorm:"not null;index"`
	StudyArea   StudyArea
	Type        string `gorm:"not null"`
	Difficulty  int    `gorm:"not null;check:difficulty>=1 AND difficulty<=5"`
	Text        string `gorm:"type:text"`
	Options     datatypes.JSON // up to five QuestionOption entries
	// CorrectAnswer indexes into Options.
	CorrectAnswer int
	ExtractID     *uint `gorm:"index"`
	Extract       *Extract
	Notes         string `gorm:"type:text"`
	LegacyID      *uint  `gorm:"uniqueIndex"`
}

func (q *Question) OptionList() []QuestionOption {
	var options []QuestionOption
	if len(q.Options) > 0 {
		json.Unmarshal(q.Options, &options)
	}
	return options
}

func (q *Question) SetOptions(options []QuestionOption) error {
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = raw
	return nil
}

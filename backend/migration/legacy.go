package migration

import "database/sql"

// Row shapes for the legacy MySQL schema. Only the columns the new platform
// keeps are read; S3 image copying is handled out of band.

type legacyStudyArea struct {
	ID          uint           `gorm:"column:id"`
	Position    int            `gorm:"column:position"`
	Name        string         `gorm:"column:name"`
	Description sql.NullString `gorm:"column:description"`
}

type legacyExtract struct {
	ID       uint           `gorm:"column:id"`
	Name     sql.NullString `gorm:"column:name"`
	Filename sql.NullString `gorm:"column:filename"`
}

type legacyQuestion struct {
	ID          uint `gorm:"column:id"`
	StudyAreaID uint `gorm:"column:study_area_id"`
	// -1 and 0 are sentinel values meaning "no extract".
	ExtractID    sql.NullInt64  `gorm:"column:extract_id"`
	Type         string         `gorm:"column:type"`
	Difficulty   int            `gorm:"column:difficulty"`
	QuestionText sql.NullString `gorm:"column:question_text"`
	StudyNotes   sql.NullString `gorm:"column:study_notes"`

	MCQOption1Text sql.NullString `gorm:"column:mcq_option_1_text"`
	MCQOption2Text sql.NullString `gorm:"column:mcq_option_2_text"`
	MCQOption3Text sql.NullString `gorm:"column:mcq_option_3_text"`
	MCQOption4Text sql.NullString `gorm:"column:mcq_option_4_text"`
	MCQOption5Text sql.NullString `gorm:"column:mcq_option_5_text"`
	MCQOption1Img  sql.NullString `gorm:"column:mcq_option_1_img"`
	MCQOption2Img  sql.NullString `gorm:"column:mcq_option_2_img"`
	MCQOption3Img  sql.NullString `gorm:"column:mcq_option_3_img"`
	MCQOption4Img  sql.NullString `gorm:"column:mcq_option_4_img"`
	MCQOption5Img  sql.NullString `gorm:"column:mcq_option_5_img"`

	MCQCorrectAnswer sql.NullInt64 `gorm:"column:mcq_correct_answer"`
}

type legacyUser struct {
	ID          uint           `gorm:"column:id"`
	Type        sql.NullString `gorm:"column:type"`
	Name        sql.NullString `gorm:"column:name"`
	Displayname string         `gorm:"column:displayname"`
	Email       string         `gorm:"column:email"`
	Password    string         `gorm:"column:password"`
}

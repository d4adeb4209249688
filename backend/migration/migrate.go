package migration

import (
	"fmt"
	"log"

	"clements/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrator copies the legacy MySQL schema into the new Postgres one.
// Re-running is safe: rows are upserted on their legacy ID.
type Migrator struct {
	Legacy *gorm.DB
	Target *gorm.DB
	Logger *log.Logger
}

// Run copies every table in dependency order and logs per-table counts.
func (m *Migrator) Run() error {
	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"study_areas", m.migrateStudyAreas},
		{"extracts", m.migrateExtracts},
		{"questions", m.migrateQuestions},
		{"users", m.migrateUsers},
	}

	for _, step := range steps {
		count, err := step.fn()
		if err != nil {
			return fmt.Errorf("migrating %s: %w", step.name, err)
		}
		m.Logger.Printf("migrated %d %s", count, step.name)
	}
	return nil
}

func (m *Migrator) migrateStudyAreas() (int, error) {
	var rows []legacyStudyArea
	if err := m.Legacy.Table("study_areas").Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	for _, row := range rows {
		legacyID := row.ID
		area := models.StudyArea{
			Name:        row.Name,
			Position:    row.Position,
			Description: row.Description.String,
			LegacyID:    &legacyID,
		}
		err := m.Target.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "legacy_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "position", "description", "updated_at"}),
		}).Create(&area).Error
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (m *Migrator) migrateExtracts() (int, error) {
	var rows []legacyExtract
	if err := m.Legacy.Table("extracts").Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	for _, row := range rows {
		legacyID := row.ID
		extract := models.Extract{
			Name:     row.Name.String,
			AudioURL: row.Filename.String,
			LegacyID: &legacyID,
		}
		err := m.Target.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "legacy_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "audio_url", "updated_at"}),
		}).Create(&extract).Error
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (m *Migrator) migrateQuestions() (int, error) {
	var rows []legacyQuestion
	if err := m.Legacy.Table("questions").Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	migrated := 0
	for _, row := range rows {
		studyAreaID, err := m.lookupByLegacyID(&models.StudyArea{}, row.StudyAreaID)
		if err != nil {
			m.Logger.Printf("skipping question %d: unknown study area %d", row.ID, row.StudyAreaID)
			continue
		}

		legacyID := row.ID
		question := models.Question{
			StudyAreaID: studyAreaID,
			Type:        row.Type,
			Difficulty:  row.Difficulty,
			Text:        row.QuestionText.String,
			Notes:       row.StudyNotes.String,
			LegacyID:    &legacyID,
		}
		if row.MCQCorrectAnswer.Valid {
			question.CorrectAnswer = int(row.MCQCorrectAnswer.Int64)
		}
		if row.ExtractID.Valid && row.ExtractID.Int64 > 0 {
			extractID, err := m.lookupByLegacyID(&models.Extract{}, uint(row.ExtractID.Int64))
			if err == nil {
				question.ExtractID = &extractID
			}
		}
		if err := question.SetOptions(collectOptions(row)); err != nil {
			return 0, err
		}

		err = m.Target.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "legacy_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"study_area_id", "type", "difficulty", "text", "notes",
				"options", "correct_answer", "extract_id", "updated_at",
			}),
		}).Create(&question).Error
		if err != nil {
			return 0, err
		}
		migrated++
	}
	return migrated, nil
}

func (m *Migrator) migrateUsers() (int, error) {
	var rows []legacyUser
	if err := m.Legacy.Table("users").Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	for _, row := range rows {
		legacyID := row.ID
		userType := row.Type.String
		if userType == "" {
			userType = "ind"
		}
		user := models.User{
			Type:         userType,
			Name:         row.Name.String,
			Displayname:  row.Displayname,
			Email:        row.Email,
			PasswordHash: row.Password, // already bcrypt in the legacy schema
			LegacyID:     &legacyID,
		}
		err := m.Target.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "legacy_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "name", "displayname", "email", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// lookupByLegacyID resolves a legacy foreign key to the new row's ID.
func (m *Migrator) lookupByLegacyID(model interface{}, legacyID uint) (uint, error) {
	var id uint
	err := m.Target.Model(model).Where("legacy_id = ?", legacyID).
		Pluck("id", &id).Error
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return id, nil
}

func collectOptions(row legacyQuestion) []models.QuestionOption {
	texts := []string{
		row.MCQOption1Text.String, row.MCQOption2Text.String, row.MCQOption3Text.String,
		row.MCQOption4Text.String, row.MCQOption5Text.String,
	}
	images := []string{
		row.MCQOption1Img.String, row.MCQOption2Img.String, row.MCQOption3Img.String,
		row.MCQOption4Img.String, row.MCQOption5Img.String,
	}

	var options []models.QuestionOption
	for i := range texts {
		if texts[i] == "" && images[i] == "" {
			continue
		}
		options = append(options, models.QuestionOption{
			Text:     texts[i],
			ImageURL: images[i],
		})
	}
	return options
}

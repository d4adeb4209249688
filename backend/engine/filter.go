package engine

import "gorm.io/gorm"

// QuestionFilter narrows the question pool for test generation.
// Zero-valued bounds are open; an empty ExcludeIDs excludes nothing.
type QuestionFilter struct {
	TopicIDs      []uint
	MinDifficulty int
	MaxDifficulty int
	ExcludeIDs    []uint
}

func (f QuestionFilter) apply(query *gorm.DB) *gorm.DB {
	query = query.Where("study_area_id IN ?", f.TopicIDs)
	if f.MinDifficulty > 0 {
		query = query.Where("difficulty >= ?", f.MinDifficulty)
	}
	if f.MaxDifficulty > 0 {
		query = query.Where("difficulty <= ?", f.MaxDifficulty)
	}
	if len(f.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", f.ExcludeIDs)
	}
	return query
}

// DifficultyRange maps the named difficulty bands from the setup form to
// difficulty bounds. Unknown or empty bands mean all levels.
func DifficultyRange(band string) (min, max int) {
	switch band {
	case "easy":
		return 0, 2
	case "intermediate":
		return 3, 4
	case "hard":
		return 4, 0
	}
	return 0, 0
}

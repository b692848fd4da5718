package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindByTest(testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("test_id = ?", testID).Order("id").Find(&questions).Error
	return questions, err
}

// UpdateFields applies only the supplied fields; a nil choices slice leaves
// the stored choices untouched, an empty one makes the question open-ended.
func (r *QuestionRepository) UpdateFields(id uint, text, correctAnswer *string, choices []string) (*model.Question, error) {
	question, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if text != nil {
		updates["text"] = *text
	}
	if correctAnswer != nil {
		updates["correct_answer"] = *correctAnswer
	}
	if choices != nil {
		q := model.Question{}
		if err := q.SetChoices(choices); err != nil {
			return nil, err
		}
		updates["choices"] = q.Choices
	}

	if len(updates) == 0 {
		return question, nil
	}

	if err := r.DB.Model(question).Updates(updates).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Question{}, id).Error
}

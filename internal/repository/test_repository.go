package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.Preload("Questions").First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) FindByCourse(courseID uint) ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Where("course_id = ?", courseID).Order("id").Find(&tests).Error
	return tests, err
}

func (r *TestRepository) UpdateFields(id uint, title *string) (*model.Test, error) {
	test, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	if title == nil {
		return test, nil
	}

	if err := r.DB.Model(test).Update("title", *title).Error; err != nil {
		return nil, err
	}
	return test, nil
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Test{}, id).Error
}

// AddTaker registers the user as a taker; duplicates are a no-op.
func (r *TestRepository) AddTaker(testID, userID uint) error {
	var count int64
	err := r.DB.Table("user_test_links").
		Where("test_id = ? AND user_id = ?", testID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.DB.Exec(
		"INSERT INTO user_test_links (test_id, user_id) VALUES (?, ?)",
		testID, userID,
	).Error
}

func (r *TestRepository) RemoveTaker(testID, userID uint) error {
	return r.DB.Exec(
		"DELETE FROM user_test_links WHERE test_id = ? AND user_id = ?",
		testID, userID,
	).Error
}

// LinkKeywords marks the topics a test covers; existing links are kept.
func (r *TestRepository) LinkKeywords(testID uint, keywordIDs []uint) error {
	for _, kwID := range keywordIDs {
		var count int64
		err := r.DB.Table("keyword_test_links").
			Where("test_id = ? AND keyword_id = ?", testID, kwID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		err = r.DB.Exec(
			"INSERT INTO keyword_test_links (test_id, keyword_id) VALUES (?, ?)",
			testID, kwID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies only the supplied fields; nil pointers leave the
// current value untouched.
func (r *UserRepository) UpdateFields(id uint, email, password, name, lastname *string) (*model.User, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if email != nil {
		updates["email"] = *email
	}
	if password != nil {
		updates["password"] = *password
	}
	if name != nil {
		updates["name"] = *name
	}
	if lastname != nil {
		updates["lastname"] = *lastname
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := r.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.User{}, id).Error
}

// AddCourse enrolls the user; adding an existing enrollment is a no-op.
func (r *UserRepository) AddCourse(userID, courseID uint) error {
	var count int64
	err := r.DB.Table("user_course_links").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.DB.Exec(
		"INSERT INTO user_course_links (user_id, course_id) VALUES (?, ?)",
		userID, courseID,
	).Error
}

// RemoveCourse drops the enrollment; removing a missing one is a no-op.
func (r *UserRepository) RemoveCourse(userID, courseID uint) error {
	return r.DB.Exec(
		"DELETE FROM user_course_links WHERE user_id = ? AND course_id = ?",
		userID, courseID,
	).Error
}

func (r *UserRepository) FindCourses(userID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Joins("JOIN user_course_links ucl ON ucl.course_id = courses.id").
		Where("ucl.user_id = ?", userID).
		Find(&courses).Error
	return courses, err
}

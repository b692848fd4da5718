package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("id").Find(&courses).Error
	return courses, err
}

// UpdateFields applies only the supplied fields; nil pointers leave the
// current value untouched.
func (r *CourseRepository) UpdateFields(id uint, name *string, hierarchyID *uint) (*model.Course, error) {
	course, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if hierarchyID != nil {
		updates["keyword_hierarchy_id"] = *hierarchyID
	}

	if len(updates) == 0 {
		return course, nil
	}

	if err := r.DB.Model(course).Updates(updates).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindStudents(courseID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.
		Joins("JOIN user_course_links ucl ON ucl.user_id = users.id").
		Where("ucl.course_id = ?", courseID).
		Find(&users).Error
	return users, err
}

// --- CourseMaterial ---

func (r *CourseRepository) CreateMaterial(material *model.CourseMaterial) error {
	return r.DB.Create(material).Error
}

func (r *CourseRepository) FindMaterialByID(id uint) (*model.CourseMaterial, error) {
	var material model.CourseMaterial
	err := r.DB.First(&material, id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *CourseRepository) FindMaterialsForCourse(courseID uint) ([]model.CourseMaterial, error) {
	var materials []model.CourseMaterial
	err := r.DB.Where("course_id = ?", courseID).Order("id").Find(&materials).Error
	return materials, err
}

func (r *CourseRepository) UpdateMaterialFields(id uint, title *string) (*model.CourseMaterial, error) {
	material, err := r.FindMaterialByID(id)
	if err != nil {
		return nil, err
	}

	if title == nil {
		return material, nil
	}

	if err := r.DB.Model(material).Update("title", *title).Error; err != nil {
		return nil, err
	}
	return material, nil
}

func (r *CourseRepository) DeleteMaterial(id uint) error {
	return r.DB.Unscoped().Delete(&model.CourseMaterial{}, id).Error
}

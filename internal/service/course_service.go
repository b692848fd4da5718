package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	UserRepo   *repository.UserRepository
	Storage    *StorageService
	Pipeline   *PipelineService
}

func NewCourseService(courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, storage *StorageService, pipeline *PipelineService) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		Storage:    storage,
		Pipeline:   pipeline,
	}
}

// CreateCourse creates the course and links the creating professor to it.
func (s *CourseService) CreateCourse(name, creatorEmail string) (*model.Course, error) {
	user, err := s.UserRepo.FindByEmail(creatorEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	course := &model.Course{Name: name}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	if err := s.UserRepo.AddCourse(user.ID, course.ID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) ListCourses() ([]model.Course, error) {
	return s.CourseRepo.FindAll()
}

func (s *CourseService) ListCoursesForUser(email string) ([]model.Course, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.UserRepo.FindCourses(user.ID)
}

// Signup enrolls the student; enrolling twice is a silent no-op.
func (s *CourseService) Signup(email string, courseID uint) error {
	user, err := s.UserRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.GetCourse(courseID); err != nil {
		return err
	}

	return s.UserRepo.AddCourse(user.ID, courseID)
}

// Remove drops the enrollment; dropping a non-enrollment is a silent no-op.
func (s *CourseService) Remove(email string, courseID uint) error {
	user, err := s.UserRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.GetCourse(courseID); err != nil {
		return err
	}

	return s.UserRepo.RemoveCourse(user.ID, courseID)
}

func (s *CourseService) GetMaterial(id uint) (*model.CourseMaterial, error) {
	material, err := s.CourseRepo.FindMaterialByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMaterialNotFound
	}
	if err != nil {
		return nil, err
	}
	return material, nil
}

func (s *CourseService) ListMaterials(courseID uint) ([]model.CourseMaterial, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}
	return s.CourseRepo.FindMaterialsForCourse(courseID)
}

// UploadResult reports what a material upload produced.
type UploadResult struct {
	Material *model.CourseMaterial `json:"material"`
	Keywords []model.Keyword       `json:"keywords"`
}

// UploadMaterial stores the document, records the material row, and runs
// the keyword pipeline. The material row survives a pipeline failure so the
// document can be re-parsed later; hierarchy and keyword rows are only
// committed when the pipeline succeeds.
func (s *CourseService) UploadMaterial(ctx context.Context, courseID uint, title, filename, contentType string, doc io.Reader, size int64) (*UploadResult, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = filename
	}

	objectKey := "materials/" + uuid.New().String() + filepath.Ext(filename)
	if _, err := s.Storage.Provider.Upload(ctx, objectKey, doc, size, contentType); err != nil {
		return nil, err
	}

	material := &model.CourseMaterial{
		Title:     title,
		CourseID:  course.ID,
		ObjectKey: objectKey,
	}
	if err := s.CourseRepo.CreateMaterial(material); err != nil {
		return nil, err
	}

	return s.runPipeline(ctx, course, material)
}

// ParseStoredMaterial runs the pipeline on a document already present in
// storage, referenced by its object key.
func (s *CourseService) ParseStoredMaterial(ctx context.Context, courseID uint, title, objectKey string) (*UploadResult, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = filepath.Base(objectKey)
	}

	material := &model.CourseMaterial{
		Title:     title,
		CourseID:  course.ID,
		ObjectKey: objectKey,
	}
	if err := s.CourseRepo.CreateMaterial(material); err != nil {
		return nil, err
	}

	return s.runPipeline(ctx, course, material)
}

func (s *CourseService) runPipeline(ctx context.Context, course *model.Course, material *model.CourseMaterial) (*UploadResult, error) {
	stored, err := s.Storage.Provider.Open(ctx, material.ObjectKey)
	if err != nil {
		return nil, err
	}
	defer stored.Close()

	keywords, err := s.Pipeline.Run(ctx, course, material, stored)
	if err != nil {
		return nil, err
	}

	return &UploadResult{Material: material, Keywords: keywords}, nil
}

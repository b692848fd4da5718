package service

import (
	"errors"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"

	"gorm.io/gorm"
)

type TestService struct {
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	CourseRepo   *repository.CourseRepository
	UserRepo     *repository.UserRepository
}

func NewTestService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository) *TestService {
	return &TestService{
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		CourseRepo:   courseRepo,
		UserRepo:     userRepo,
	}
}

// CreateTest creates a test on a course, optionally linked to the keywords
// it covers.
func (s *TestService) CreateTest(courseID uint, creatorEmail, title string, keywordIDs []uint) (*model.Test, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	creator, err := s.UserRepo.FindByEmail(creatorEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	test := &model.Test{
		Title:     title,
		CreatorID: creator.ID,
		CourseID:  courseID,
	}
	if err := s.TestRepo.Create(test); err != nil {
		return nil, err
	}

	if len(keywordIDs) > 0 {
		if err := s.TestRepo.LinkKeywords(test.ID, keywordIDs); err != nil {
			return nil, err
		}
	}
	return test, nil
}

func (s *TestService) GetTest(id uint) (*model.Test, error) {
	test, err := s.TestRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) ListTestsForCourse(courseID uint) ([]model.Test, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return s.TestRepo.FindByCourse(courseID)
}

// AddQuestion appends a question to a test. An empty choices list makes it
// open-ended.
func (s *TestService) AddQuestion(testID uint, text, correctAnswer string, choices []string) (*model.Question, error) {
	if _, err := s.GetTest(testID); err != nil {
		return nil, err
	}

	question := &model.Question{
		Text:          text,
		CorrectAnswer: correctAnswer,
		TestID:        testID,
	}
	if err := question.SetChoices(choices); err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *TestService) DeleteQuestion(id uint) error {
	if _, err := s.QuestionRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	return s.QuestionRepo.Delete(id)
}

// TakeTest registers the student as a taker; repeated calls are no-ops.
func (s *TestService) TakeTest(testID uint, email string) error {
	if _, err := s.GetTest(testID); err != nil {
		return err
	}

	user, err := s.UserRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return s.TestRepo.AddTaker(testID, user.ID)
}

package service

import (
	"testing"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCourseFixture(t *testing.T) (*CourseService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCourseService(repository.NewCourseRepository(db), repository.NewUserRepository(db), nil, nil)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "x", Name: "Test", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateCourseLinksCreator(t *testing.T) {
	svc, db := newCourseFixture(t)
	seedUser(t, db, "prof@uni.edu", model.Professor)

	course, err := svc.CreateCourse("Biology", "prof@uni.edu")
	require.NoError(t, err)
	require.NotZero(t, course.ID)

	mine, err := svc.ListCoursesForUser("prof@uni.edu")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Biology", mine[0].Name)

	_, err = svc.CreateCourse("Orphan", "ghost@uni.edu")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestSignupIsIdempotent(t *testing.T) {
	svc, db := newCourseFixture(t)
	seedUser(t, db, "prof@uni.edu", model.Professor)
	seedUser(t, db, "kid@uni.edu", model.Student)

	course, err := svc.CreateCourse("Biology", "prof@uni.edu")
	require.NoError(t, err)

	require.NoError(t, svc.Signup("kid@uni.edu", course.ID))
	require.NoError(t, svc.Signup("kid@uni.edu", course.ID))

	var links int64
	require.NoError(t, db.Table("user_course_links").Where("course_id = ?", course.ID).Count(&links).Error)
	assert.Equal(t, int64(2), links) // creator + one enrollment

	students, err := svc.CourseRepo.FindStudents(course.ID)
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, db := newCourseFixture(t)
	seedUser(t, db, "prof@uni.edu", model.Professor)
	seedUser(t, db, "kid@uni.edu", model.Student)

	course, err := svc.CreateCourse("Biology", "prof@uni.edu")
	require.NoError(t, err)

	require.NoError(t, svc.Signup("kid@uni.edu", course.ID))
	require.NoError(t, svc.Remove("kid@uni.edu", course.ID))

	mine, err := svc.ListCoursesForUser("kid@uni.edu")
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Dropping again, or without ever enrolling, is not an error.
	require.NoError(t, svc.Remove("kid@uni.edu", course.ID))
}

func TestSignupUnknownCourse(t *testing.T) {
	svc, db := newCourseFixture(t)
	seedUser(t, db, "kid@uni.edu", model.Student)

	assert.ErrorIs(t, svc.Signup("kid@uni.edu", 99), util.ErrCourseNotFound)
	assert.ErrorIs(t, svc.Remove("kid@uni.edu", 99), util.ErrCourseNotFound)
	assert.ErrorIs(t, svc.Signup("ghost@uni.edu", 99), util.ErrUserNotFound)
}

func TestGetCourseAndMaterials(t *testing.T) {
	svc, db := newCourseFixture(t)
	seedUser(t, db, "prof@uni.edu", model.Professor)

	course, err := svc.CreateCourse("Biology", "prof@uni.edu")
	require.NoError(t, err)

	material := &model.CourseMaterial{Title: "intro.pdf", CourseID: course.ID, ObjectKey: "materials/abc.pdf"}
	require.NoError(t, svc.CourseRepo.CreateMaterial(material))

	got, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, "intro.pdf", got.Title)

	list, err := svc.ListMaterials(course.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetCourse(99)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = svc.GetMaterial(99)
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)
	_, err = svc.ListMaterials(99)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

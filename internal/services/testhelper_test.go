package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okovalenko/coursereview-backend/internal/database"
	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	loggerOnce sync.Once
	dbCounter  atomic.Int64
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loggerOnce.Do(logger.Init)

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, fullName string) *models.Course {
	t.Helper()
	category := &models.Category{Name: "General"}
	require.NoError(t, db.Create(category).Error)
	course := &models.Course{
		CategoryID: category.ID,
		FullName:   fullName,
		ShortName:  fullName,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func enrol(t *testing.T, db *gorm.DB, userID, courseID uint, role string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Enrolment{
		UserID:   userID,
		CourseID: courseID,
		Role:     role,
	}).Error)
}

func createActivity(t *testing.T, db *gorm.DB, courseID uint) *models.Review {
	t.Helper()
	review, err := NewReviewService(db).Create(CreateReviewRequest{CourseID: courseID})
	require.NoError(t, err)
	return review
}

func newEngine(db *gorm.DB) *UserReviewService {
	return NewUserReviewService(db, NewCompletionService(db), NewEventService(db), nil)
}

func studentActor(t *testing.T, db *gorm.DB, courseID uint) (*models.User, Actor) {
	t.Helper()
	user := createUser(t, db, fmt.Sprintf("student%d@example.com", dbCounter.Add(1)), models.RoleStudent)
	enrol(t, db, user.ID, courseID, models.CourseRoleStudent)
	actor, err := LoadActor(db, user.ID)
	require.NoError(t, err)
	return user, actor
}

func teacherActor(t *testing.T, db *gorm.DB, courseID uint) (*models.User, Actor) {
	t.Helper()
	user := createUser(t, db, fmt.Sprintf("teacher%d@example.com", dbCounter.Add(1)), models.RoleTeacher)
	enrol(t, db, user.ID, courseID, models.CourseRoleTeacher)
	actor, err := LoadActor(db, user.ID)
	require.NoError(t, err)
	return user, actor
}

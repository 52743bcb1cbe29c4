package services

import (
	"testing"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func completionReview(t *testing.T, db *gorm.DB, courseID uint, byRate, byReview bool) *models.Review {
	t.Helper()
	review, err := NewReviewService(db).Create(CreateReviewRequest{
		CourseID:         courseID,
		CompletionRate:   byRate,
		CompletionReview: byReview,
	})
	require.NoError(t, err)
	return review
}

func TestCompletionByRate(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := completionReview(t, db, course.ID, true, false)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	complete, err := engine.completion.State(review, actor.UserID)
	require.NoError(t, err)
	assert.False(t, complete)

	_, _, err = engine.SaveRate(actor, review.ID, 4)
	require.NoError(t, err)

	complete, err = engine.completion.State(review, actor.UserID)
	require.NoError(t, err)
	assert.True(t, complete)

	state, tracked, err := engine.completion.TrackedState(review.ID, actor.UserID)
	require.NoError(t, err)
	assert.True(t, tracked)
	assert.Equal(t, models.CompletionComplete, state)
}

func TestCompletionByReviewRequiresAcceptance(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := completionReview(t, db, course.ID, false, true)
	_, student := studentActor(t, db, course.ID)
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(student, review.ID, "Great course")
	require.NoError(t, err)

	complete, err := engine.completion.State(review, student.UserID)
	require.NoError(t, err)
	assert.False(t, complete, "submission alone must not complete the activity")

	_, _, err = engine.SaveStatus(moderator, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)

	complete, err = engine.completion.State(review, student.UserID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestCompletionBothRulesAreConjunctive(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := completionReview(t, db, course.ID, true, true)
	_, student := studentActor(t, db, course.ID)
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	_, _, err := engine.SaveRate(student, review.ID, 5)
	require.NoError(t, err)

	complete, err := engine.completion.State(review, student.UserID)
	require.NoError(t, err)
	assert.False(t, complete, "rate alone must not satisfy both rules")

	submitted, err := engine.SubmitReview(student, review.ID, "Great course")
	require.NoError(t, err)
	_, _, err = engine.SaveStatus(moderator, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)

	complete, err = engine.completion.State(review, student.UserID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestCompletionReturnedReviewRollsBackState(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := completionReview(t, db, course.ID, false, true)
	_, student := studentActor(t, db, course.ID)
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(student, review.ID, "Great course")
	require.NoError(t, err)
	_, _, err = engine.SaveStatus(moderator, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)
	_, _, err = engine.SaveStatus(moderator, submitted.ID, models.StatusReturned)
	require.NoError(t, err)

	state, tracked, err := engine.completion.TrackedState(review.ID, student.UserID)
	require.NoError(t, err)
	assert.True(t, tracked)
	assert.Equal(t, models.CompletionIncomplete, state)
}

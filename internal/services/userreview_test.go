package services

import (
	"strings"
	"testing"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRateCreatesUserReview(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	user, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, stored, err := engine.SaveRate(actor, review.ID, 4)
	require.NoError(t, err)
	require.True(t, stored)

	assert.True(t, userReview.IsStored())
	assert.Equal(t, user.ID, userReview.UserID)
	assert.Equal(t, review.ID, userReview.ReviewID)
	assert.Equal(t, 4, userReview.Rate)
	assert.Equal(t, models.StatusNotChecked, userReview.Status)
}

func TestSaveRateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	first, _, err := engine.SaveRate(actor, review.ID, 5)
	require.NoError(t, err)
	second, _, err := engine.SaveRate(actor, review.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	stats, err := engine.RateStats(review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Amount)
}

func TestSaveRateDropsOutOfRangeRate(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	for _, rate := range []int{0, -1, 6, 100} {
		userReview, stored, err := engine.SaveRate(actor, review.ID, rate)
		require.NoError(t, err)
		require.True(t, stored)
		assert.Equal(t, 0, userReview.Rate, "rate %d must be dropped", rate)
	}
}

func TestSaveRateDropsRateOfUnenrolledUser(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	outsider := createUser(t, db, "outsider@example.com", models.RoleStudent)
	actor, err := LoadActor(db, outsider.ID)
	require.NoError(t, err)
	engine := newEngine(db)

	userReview, stored, err := engine.SaveRate(actor, review.ID, 5)
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, 0, userReview.Rate)
}

func TestSaveRateSoftFailsOnUnknownReview(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, stored, err := engine.SaveRate(actor, 99999, 5)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Nil(t, userReview)
}

func TestSubmitReviewTruncatesLongText(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	text := strings.Repeat("a", 1000)
	userReview, err := engine.SubmitReview(actor, review.ID, text)
	require.NoError(t, err)

	runes := []rune(userReview.Text)
	assert.Len(t, runes, models.MaxReviewLength)
	assert.Equal(t, '…', runes[len(runes)-1])
	assert.Equal(t, strings.Repeat("a", 996), string(runes[:996]))
}

func TestSubmitReviewKeepsShortTextIntact(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, err := engine.SubmitReview(actor, review.ID, "Great course")
	require.NoError(t, err)
	assert.Equal(t, "Great course", userReview.Text)
	assert.Equal(t, models.StatusNotChecked, userReview.Status)
}

func TestSubmitReviewRequiresGiveCapability(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	outsider := createUser(t, db, "outsider@example.com", models.RoleStudent)
	actor, err := LoadActor(db, outsider.ID)
	require.NoError(t, err)
	engine := newEngine(db)

	_, err = engine.SubmitReview(actor, review.ID, "sneaky")
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestSubmitReviewEmitsAddedEvent(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	user, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	_, err := engine.SubmitReview(actor, review.ID, "Great course")
	require.NoError(t, err)

	var events []models.ReviewEvent
	require.NoError(t, db.Where("name = ?", models.EventReviewAdded).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID, events[0].ActorID)
	assert.Equal(t, course.ID, events[0].CourseID)
	assert.Contains(t, events[0].Snapshot, "Great course")
}

func TestSaveStatusByModerator(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, student := studentActor(t, db, course.ID)
	teacher, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(student, review.ID, "Great course")
	require.NoError(t, err)

	decided, stored, err := engine.SaveStatus(moderator, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)
	require.True(t, stored)

	assert.Equal(t, models.StatusAccepted, decided.Status)
	assert.Equal(t, teacher.ID, decided.ModeratorID)
	require.NotNil(t, decided.TimeChecked)

	var events []models.ReviewEvent
	require.NoError(t, db.Where("name = ?", models.EventReviewAssessed).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestSaveStatusDropsDecisionOfNonModerator(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, author := studentActor(t, db, course.ID)
	_, other := studentActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(author, review.ID, "Great course")
	require.NoError(t, err)

	decided, stored, err := engine.SaveStatus(other, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, models.StatusNotChecked, decided.Status)
	assert.Zero(t, decided.ModeratorID)
}

func TestSaveStatusDropsInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, student := studentActor(t, db, course.ID)
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(student, review.ID, "Great course")
	require.NoError(t, err)

	for _, status := range []int{0, 4, -1} {
		decided, _, err := engine.SaveStatus(moderator, submitted.ID, status)
		require.NoError(t, err)
		assert.Equal(t, models.StatusNotChecked, decided.Status, "status %d must be dropped", status)
	}
}

func TestSaveStatusSoftFailsOnUnknownUserReview(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, stored, err := engine.SaveStatus(moderator, 99999, models.StatusAccepted)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Nil(t, userReview)
}

func TestResubmissionResetsAcceptedStatus(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, student := studentActor(t, db, course.ID)
	_, moderator := teacherActor(t, db, course.ID)
	engine := newEngine(db)

	submitted, err := engine.SubmitReview(student, review.ID, "First take")
	require.NoError(t, err)
	_, _, err = engine.SaveStatus(moderator, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)

	resubmitted, err := engine.SubmitReview(student, review.ID, "Second take")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotChecked, resubmitted.Status)
	assert.Equal(t, "Second take", resubmitted.Text)
}

func TestUpdateDropsForbiddenFieldsButKeepsValidOnes(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, student := studentActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, _, err := engine.Materialize(review.ID, student.UserID)
	require.NoError(t, err)

	rate := 5
	status := models.StatusAccepted
	err = engine.Update(student, userReview, UpdateRequest{Rate: &rate, Status: &status})
	require.NoError(t, err)

	// The rate passes, the self-acceptance does not.
	assert.Equal(t, 5, userReview.Rate)
	assert.Equal(t, models.StatusNotChecked, userReview.Status)
}

func TestUpdateInsertsRowForTextWithZeroRate(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, student := studentActor(t, db, course.ID)
	engine := newEngine(db)

	userReview, existing, err := engine.Materialize(review.ID, student.UserID)
	require.NoError(t, err)
	require.False(t, existing)

	text := "Great course"
	rate := 0
	before := time.Now().UTC().Add(-time.Second)
	err = engine.Update(student, userReview, UpdateRequest{Text: &text, Rate: &rate})
	require.NoError(t, err)

	assert.True(t, userReview.IsStored())
	assert.Equal(t, "Great course", userReview.Text)
	assert.Equal(t, 0, userReview.Rate)
	assert.Equal(t, models.StatusNotChecked, userReview.Status)
	assert.True(t, userReview.TimeAdded.After(before))
}

func TestStatusFromOffset(t *testing.T) {
	cases := map[float64]int{
		-40: models.StatusReturned,
		0:   models.StatusReturned,
		9:   models.StatusReturned,
		11:  models.StatusNotChecked,
		20:  models.StatusNotChecked,
		29:  models.StatusNotChecked,
		31:  models.StatusAccepted,
		40:  models.StatusAccepted,
		200: models.StatusAccepted,
	}
	for px, want := range cases {
		assert.Equal(t, want, StatusFromOffset(px), "offset %.0f", px)
	}
}

func TestRateStats(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	engine := newEngine(db)

	// Rates 5, 5, 4 and two text-only rows that carry no rate.
	for _, rate := range []int{5, 5, 4} {
		_, actor := studentActor(t, db, course.ID)
		_, _, err := engine.SaveRate(actor, review.ID, rate)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, actor := studentActor(t, db, course.ID)
		_, err := engine.SubmitReview(actor, review.ID, "text only")
		require.NoError(t, err)
	}

	stats, err := engine.RateStats(review.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Amount)
	assert.Equal(t, 4.7, stats.Avg)
	assert.Equal(t, 67, stats.Rate5)
	assert.Equal(t, 33, stats.Rate4)
	assert.Zero(t, stats.Rate1)
	assert.Zero(t, stats.Rate2)
	assert.Zero(t, stats.Rate3)
}

func TestRateStatsEmptySetYieldsZeros(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	engine := newEngine(db)

	stats, err := engine.RateStats(review.ID)
	require.NoError(t, err)

	assert.Zero(t, stats.Amount)
	assert.Zero(t, stats.Avg)
	assert.Zero(t, stats.Rate1)
	assert.Zero(t, stats.Rate5)
	assert.Zero(t, stats.Share(5))
}

func TestRateStatsSpansMultipleReviews(t *testing.T) {
	db := newTestDB(t)
	courseA := createCourse(t, db, "Algebra")
	courseB := createCourse(t, db, "Biology")
	reviewA := createActivity(t, db, courseA.ID)
	reviewB := createActivity(t, db, courseB.ID)
	engine := newEngine(db)

	_, actorA := studentActor(t, db, courseA.ID)
	_, actorB := studentActor(t, db, courseB.ID)
	_, _, err := engine.SaveRate(actorA, reviewA.ID, 5)
	require.NoError(t, err)
	_, _, err = engine.SaveRate(actorB, reviewB.ID, 3)
	require.NoError(t, err)

	stats, err := engine.RateStats(reviewA.ID, reviewB.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Amount)
	assert.Equal(t, 4.0, stats.Avg)
}

func TestMaterializeReturnsStoredRow(t *testing.T) {
	db := newTestDB(t)
	course := createCourse(t, db, "Algebra")
	review := createActivity(t, db, course.ID)
	_, actor := studentActor(t, db, course.ID)
	engine := newEngine(db)

	fresh, existing, err := engine.Materialize(review.ID, actor.UserID)
	require.NoError(t, err)
	assert.False(t, existing)
	assert.False(t, fresh.IsStored())
	assert.Equal(t, models.StatusNotChecked, fresh.Status)

	_, _, err = engine.SaveRate(actor, review.ID, 3)
	require.NoError(t, err)

	stored, existing, err := engine.Materialize(review.ID, actor.UserID)
	require.NoError(t, err)
	assert.True(t, existing)
	assert.True(t, stored.IsStored())
	assert.Equal(t, 3, stored.Rate)
}

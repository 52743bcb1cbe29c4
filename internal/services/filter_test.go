package services

import (
	"testing"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedListing(t *testing.T, db *gorm.DB) (reviewA, reviewB *models.Review) {
	t.Helper()
	courseA := createCourse(t, db, "Advanced Algebra")
	courseB := createCourse(t, db, "Marine Biology")
	reviewA = createActivity(t, db, courseA.ID)
	reviewB = createActivity(t, db, courseB.ID)
	engine := newEngine(db)
	_, moderatorA := teacherActor(t, db, courseA.ID)

	_, alice := studentActor(t, db, courseA.ID)
	submitted, err := engine.SubmitReview(alice, reviewA.ID, "Loved it")
	require.NoError(t, err)
	_, _, err = engine.SaveRate(alice, reviewA.ID, 5)
	require.NoError(t, err)
	_, _, err = engine.SaveStatus(moderatorA, submitted.ID, models.StatusAccepted)
	require.NoError(t, err)

	_, bob := studentActor(t, db, courseA.ID)
	_, _, err = engine.SaveRate(bob, reviewA.ID, 2)
	require.NoError(t, err)

	_, carol := studentActor(t, db, courseB.ID)
	_, err = engine.SubmitReview(carol, reviewB.ID, "Too much homework")
	require.NoError(t, err)
	return reviewA, reviewB
}

func TestFindFiltersByReviewAndStatus(t *testing.T) {
	db := newTestDB(t)
	reviewA, _ := seedListing(t, db)
	engine := newEngine(db)

	rows, err := engine.Find(Filter{
		ReviewIDs: []uint{reviewA.ID},
		Statuses:  []int{models.StatusAccepted},
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Loved it", rows[0].Text)
	assert.Equal(t, "Advanced Algebra", rows[0].CourseName)
}

func TestFindFiltersByCourseNameSubstring(t *testing.T) {
	db := newTestDB(t)
	_, reviewB := seedListing(t, db)
	engine := newEngine(db)

	rows, err := engine.Find(Filter{CourseName: "biology"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, reviewB.ID, rows[0].ReviewID)
}

func TestFindNotEmptyOnlySkipsRateOnlyRows(t *testing.T) {
	db := newTestDB(t)
	reviewA, _ := seedListing(t, db)
	engine := newEngine(db)

	rows, err := engine.Find(Filter{ReviewIDs: []uint{reviewA.ID}, NotEmptyOnly: true}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].Text)
}

func TestFindFiltersByRate(t *testing.T) {
	db := newTestDB(t)
	reviewA, _ := seedListing(t, db)
	engine := newEngine(db)

	rows, err := engine.Find(Filter{ReviewIDs: []uint{reviewA.ID}, Rate: 2}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Rate)
}

func TestCountMatchesFind(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db)
	engine := newEngine(db)

	count, err := engine.Count(Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestFindPagination(t *testing.T) {
	db := newTestDB(t)
	seedListing(t, db)
	engine := newEngine(db)

	page1, err := engine.Find(Filter{}, 0, 2)
	require.NoError(t, err)
	page2, err := engine.Find(Filter{}, 2, 2)
	require.NoError(t, err)

	assert.Len(t, page1, 2)
	assert.Len(t, page2, 1)
}

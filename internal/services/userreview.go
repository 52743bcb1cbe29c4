package services

import (
	"errors"
	"math"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUserReviewNotFound = errors.New("user review not found")
	ErrNoPermission       = errors.New("no permission for this operation")
)

// UserReviewService is the rating/review engine: it applies validated,
// permission-gated updates to user reviews, keeps the moderation workflow
// and computes the rating statistics.
type UserReviewService struct {
	db         *gorm.DB
	completion *CompletionService
	events     *EventService
	notifier   *EmailService // nil disables moderation decision emails
}

func NewUserReviewService(db *gorm.DB, completion *CompletionService, events *EventService, notifier *EmailService) *UserReviewService {
	return &UserReviewService{
		db:         db,
		completion: completion,
		events:     events,
		notifier:   notifier,
	}
}

// UpdateRequest is a partial update of one user review. Absent fields are
// left untouched; present fields go through per-field validation and
// permission checks and are silently dropped when either fails.
type UpdateRequest struct {
	Rate    *int
	Status  *int
	Text    *string
	Comment *string
}

// Materialize returns the stored user review for (review, user) or, when
// none exists yet, an unpersisted placeholder. The second result reports
// which of the two it is.
func (s *UserReviewService) Materialize(reviewID, userID uint) (*models.UserReview, bool, error) {
	var userReview models.UserReview
	err := s.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&userReview).Error
	if err == nil {
		return &userReview, true, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	return &models.UserReview{
		ReviewID:  reviewID,
		UserID:    userID,
		Rate:      0,
		Text:      "",
		Status:    models.StatusNotChecked,
		TimeAdded: time.Now().UTC(),
	}, false, nil
}

// Update applies the request to the user review and persists it. Invalid or
// forbidden fields are dropped without error; only a persistence failure
// makes the call fail. A text submission always resets the moderation
// status to not-checked and stamps the submission time. An explicit status
// change in the same request wins over the reset.
func (s *UserReviewService) Update(actor Actor, userReview *models.UserReview, changes UpdateRequest) error {
	var review models.Review
	if err := s.db.First(&review, userReview.ReviewID).Error; err != nil {
		return err
	}

	var completionState *int

	if changes.Rate != nil {
		rate := *changes.Rate
		switch {
		case !models.ValidRate(rate):
			logger.Debug("Dropping out-of-range rate ", rate)
		case !actor.CanGive(review.CourseID):
			logger.Debug("Dropping rate: user ", actor.UserID, " may not rate course ", review.CourseID)
		default:
			userReview.Rate = rate
			if review.CompletionRate {
				state := models.CompletionComplete
				completionState = &state
			}
		}
	}

	if changes.Text != nil {
		userReview.Text = models.TruncateText(*changes.Text)
		userReview.TimeAdded = time.Now().UTC()
		userReview.Status = models.StatusNotChecked
	}

	if changes.Status != nil {
		status := *changes.Status
		switch {
		case !models.ValidStatus(status):
			logger.Debug("Dropping invalid status ", status)
		case status != models.StatusNotChecked && !actor.CanModerate(review.CourseID) && !actor.CanModerateAll():
			logger.Debug("Dropping status: user ", actor.UserID, " may not moderate course ", review.CourseID)
		default:
			userReview.Status = status
			userReview.ModeratorID = actor.UserID
			now := time.Now().UTC()
			userReview.TimeChecked = &now
			if changes.Comment != nil {
				userReview.Comment = *changes.Comment
			}
			if review.CompletionReview {
				state := models.CompletionIncomplete
				if status == models.StatusAccepted {
					state = models.CompletionComplete
				}
				completionState = &state
			}
		}
	}

	if !userReview.IsStored() {
		if err := s.db.Create(userReview).Error; err != nil {
			return err
		}
	} else {
		if err := s.db.Save(userReview).Error; err != nil {
			return err
		}
	}

	if completionState != nil && review.AutoCompletion {
		if err := s.completion.UpdateState(review.ID, userReview.UserID, *completionState); err != nil {
			logger.Error("Failed to update completion state: ", err)
		}
	}
	return nil
}

// SaveRate handles a star click. Unknown review ids fail soft: the second
// result is false and no error is raised.
func (s *UserReviewService) SaveRate(actor Actor, reviewID uint, rate int) (*models.UserReview, bool, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	userReview, _, err := s.Materialize(reviewID, actor.UserID)
	if err != nil {
		return nil, false, err
	}
	if err := s.Update(actor, userReview, UpdateRequest{Rate: &rate}); err != nil {
		return nil, false, err
	}
	return userReview, true, nil
}

// SubmitReview handles the review form: stores the text for the acting user
// and emits the review-added event. Requires the give capability.
func (s *UserReviewService) SubmitReview(actor Actor, reviewID uint, text string) (*models.UserReview, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if !actor.CanGive(review.CourseID) {
		return nil, ErrNoPermission
	}

	userReview, _, err := s.Materialize(reviewID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.Update(actor, userReview, UpdateRequest{Text: &text}); err != nil {
		return nil, err
	}

	s.events.Record(models.EventReviewAdded, userReview, actor.UserID, review.CourseID)
	return userReview, nil
}

// SaveStatus handles a moderation decision coming from the status switcher.
// Unknown user review ids fail soft. Every successful call emits the
// assessed event; accepted and returned decisions notify the author.
func (s *UserReviewService) SaveStatus(actor Actor, userReviewID uint, status int) (*models.UserReview, bool, error) {
	var userReview models.UserReview
	if err := s.db.First(&userReview, userReviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var review models.Review
	if err := s.db.First(&review, userReview.ReviewID).Error; err != nil {
		return nil, false, err
	}

	previous := userReview.Status
	if err := s.Update(actor, &userReview, UpdateRequest{Status: &status}); err != nil {
		return nil, false, err
	}

	s.events.Record(models.EventReviewAssessed, &userReview, actor.UserID, review.CourseID)

	if s.notifier != nil && userReview.Status != previous &&
		(userReview.Status == models.StatusAccepted || userReview.Status == models.StatusReturned) {
		s.notifyAuthor(&userReview, review.CourseID)
	}
	return &userReview, true, nil
}

func (s *UserReviewService) notifyAuthor(userReview *models.UserReview, courseID uint) {
	var author models.User
	if err := s.db.First(&author, userReview.UserID).Error; err != nil {
		logger.Error("Failed to load review author for notification: ", err)
		return
	}
	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		logger.Error("Failed to load course for notification: ", err)
		return
	}
	if err := s.notifier.SendReviewDecision(author.Email, course.FullName, userReview.Status); err != nil {
		logger.Error("Failed to send review decision email: ", err)
	}
}

// statusGridUnit is the pixel width of one stop of the draggable track.
const statusGridUnit = 20

// StatusFromOffset maps the drag position of the switcher handle onto a
// status, clamped to the three stops of the track.
func StatusFromOffset(px float64) int {
	status := int(math.Round(px/statusGridUnit)) + 1
	if status < models.StatusReturned {
		return models.StatusReturned
	}
	if status > models.StatusAccepted {
		return models.StatusAccepted
	}
	return status
}

// RateStats is the aggregate rating picture of one or many reviews: the
// number of given rates, their average rounded to one decimal and the
// integer percentage share of each star value.
type RateStats struct {
	Amount int     `json:"amount"`
	Avg    float64 `json:"avg"`
	Rate1  int     `json:"rate1"`
	Rate2  int     `json:"rate2"`
	Rate3  int     `json:"rate3"`
	Rate4  int     `json:"rate4"`
	Rate5  int     `json:"rate5"`
}

// Share returns the percentage for one star value.
func (st *RateStats) Share(star int) int {
	switch star {
	case 1:
		return st.Rate1
	case 2:
		return st.Rate2
	case 3:
		return st.Rate3
	case 4:
		return st.Rate4
	case 5:
		return st.Rate5
	}
	return 0
}

// RateStats aggregates the non-zero rates of the given reviews. An empty
// set yields zeros everywhere, never NaN or null.
func (s *UserReviewService) RateStats(reviewIDs ...uint) (*RateStats, error) {
	type rateCount struct {
		Rate  int
		Count int
	}
	var counts []rateCount
	err := s.db.Model(&models.UserReview{}).
		Select("rate, COUNT(id) AS count").
		Where("rate <> 0 AND review_id IN ?", reviewIDs).
		Group("rate").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := &RateStats{}
	sum := 0
	for _, rc := range counts {
		stats.Amount += rc.Count
		sum += rc.Rate * rc.Count
	}
	if stats.Amount == 0 {
		return stats, nil
	}

	stats.Avg = math.Round(float64(sum)/float64(stats.Amount)*10) / 10
	for _, rc := range counts {
		share := int(math.Round(float64(rc.Count) * 100 / float64(stats.Amount)))
		switch rc.Rate {
		case 1:
			stats.Rate1 = share
		case 2:
			stats.Rate2 = share
		case 3:
			stats.Rate3 = share
		case 4:
			stats.Rate4 = share
		case 5:
			stats.Rate5 = share
		}
	}
	return stats, nil
}

package services

import (
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"gorm.io/gorm"
)

// CompletionService is the completion-tracking collaborator. The review
// engine notifies it when a rate or moderation decision changes the
// completion state of the activity for a user.
type CompletionService struct {
	db *gorm.DB
}

func NewCompletionService(db *gorm.DB) *CompletionService {
	return &CompletionService{db: db}
}

// UpdateState upserts the tracked state for (review, user).
func (s *CompletionService) UpdateState(reviewID, userID uint, state int) error {
	var completion models.Completion
	err := s.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&completion).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		completion = models.Completion{
			ReviewID: reviewID,
			UserID:   userID,
			State:    state,
			Updated:  time.Now().UTC(),
		}
		return s.db.Create(&completion).Error
	}

	completion.State = state
	completion.Updated = time.Now().UTC()
	return s.db.Save(&completion).Error
}

// State evaluates the completion rules of the review for the user from the
// stored user review rows. All enabled rules must hold; with no rules
// enabled the activity can never be auto-completed.
func (s *CompletionService) State(review *models.Review, userID uint) (bool, error) {
	if !review.CompletionRate && !review.CompletionReview {
		return false, nil
	}

	if review.CompletionRate {
		var count int64
		err := s.db.Model(&models.UserReview{}).
			Where("review_id = ? AND user_id = ? AND rate > 0", review.ID, userID).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, nil
		}
	}

	if review.CompletionReview {
		var count int64
		err := s.db.Model(&models.UserReview{}).
			Where("review_id = ? AND user_id = ? AND text <> '' AND status = ?",
				review.ID, userID, models.StatusAccepted).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, nil
		}
	}

	return true, nil
}

// TrackedState returns the last state pushed to the tracker, if any.
func (s *CompletionService) TrackedState(reviewID, userID uint) (int, bool, error) {
	var completion models.Completion
	err := s.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&completion).Error
	if err == gorm.ErrRecordNotFound {
		return models.CompletionIncomplete, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return completion.State, true, nil
}

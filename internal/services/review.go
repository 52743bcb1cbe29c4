package services

import (
	"errors"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review activity not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrReviewExists   = errors.New("course already has a review activity")
)

// ReviewService manages the per-course review activity instances.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type CreateReviewRequest struct {
	CourseID          uint   `json:"course_id" binding:"required"`
	Intro             string `json:"intro"`
	CoursePageDisplay bool   `json:"coursepage_display"`
	CompletionRate    bool   `json:"completion_rate"`
	CompletionReview  bool   `json:"completion_review"`
	AutoCompletion    *bool  `json:"auto_completion"`
}

type UpdateReviewRequest struct {
	Intro             *string `json:"intro"`
	CoursePageDisplay *bool   `json:"coursepage_display"`
	CompletionRate    *bool   `json:"completion_rate"`
	CompletionReview  *bool   `json:"completion_review"`
	AutoCompletion    *bool   `json:"auto_completion"`
}

// Create adds the review activity to a course. A course carries at most one
// instance; a second create attempt fails.
func (s *ReviewService) Create(req CreateReviewRequest) (*models.Review, error) {
	var course models.Course
	if err := s.db.First(&course, req.CourseID).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	var existing models.Review
	if err := s.db.Where("course_id = ?", req.CourseID).First(&existing).Error; err == nil {
		return nil, ErrReviewExists
	}

	review := models.Review{
		CourseID:          req.CourseID,
		Intro:             utils.SanitizeString(req.Intro),
		CoursePageDisplay: req.CoursePageDisplay,
		CompletionRate:    req.CompletionRate,
		CompletionReview:  req.CompletionReview,
		AutoCompletion:    true,
		TimeModified:      time.Now().UTC(),
	}
	if req.AutoCompletion != nil {
		review.AutoCompletion = *req.AutoCompletion
	}

	if err := s.db.Create(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Get(id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) GetByCourse(courseID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Where("course_id = ?", courseID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Update(id uint, req UpdateReviewRequest) (*models.Review, error) {
	review, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Intro != nil {
		review.Intro = utils.SanitizeString(*req.Intro)
	}
	if req.CoursePageDisplay != nil {
		review.CoursePageDisplay = *req.CoursePageDisplay
	}
	if req.CompletionRate != nil {
		review.CompletionRate = *req.CompletionRate
	}
	if req.CompletionReview != nil {
		review.CompletionReview = *req.CompletionReview
	}
	if req.AutoCompletion != nil {
		review.AutoCompletion = *req.AutoCompletion
	}
	review.TimeModified = time.Now().UTC()

	if err := s.db.Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes the activity instance together with its user reviews and
// tracked completion states.
func (s *ReviewService) Delete(id uint) error {
	review, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.UserReview{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.Completion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, review.ID).Error
	})
}

package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"gorm.io/gorm"
)

// backupFormatVersion guards against restoring archives written by a newer build.
const backupFormatVersion = 1

// BackupService exports a review activity with its user reviews to a JSON
// archive and restores such archives into a course. The storage is optional;
// without it archives are only returned to the caller.
type BackupService struct {
	db      *gorm.DB
	storage *S3Service
}

func NewBackupService(db *gorm.DB, storage *S3Service) *BackupService {
	return &BackupService{db: db, storage: storage}
}

type ReviewBackup struct {
	FormatVersion int                `json:"format_version"`
	ExportedAt    time.Time          `json:"exported_at"`
	Review        ReviewExport       `json:"review"`
	UserReviews   []UserReviewExport `json:"user_reviews,omitempty"`
}

type ReviewExport struct {
	Intro             string `json:"intro"`
	CoursePageDisplay bool   `json:"coursepage_display"`
	CompletionRate    bool   `json:"completion_rate"`
	CompletionReview  bool   `json:"completion_review"`
	AutoCompletion    bool   `json:"auto_completion"`
}

type UserReviewExport struct {
	UserID      uint       `json:"user_id"`
	Rate        int        `json:"rate"`
	Text        string     `json:"text"`
	Status      int        `json:"status"`
	TimeAdded   time.Time  `json:"time_added"`
	ModeratorID uint       `json:"moderator_id,omitempty"`
	TimeChecked *time.Time `json:"time_checked,omitempty"`
	Comment     string     `json:"comment,omitempty"`
}

// Export serializes the activity. withUserInfo controls whether the user
// review rows are included or only the activity settings.
func (s *BackupService) Export(reviewID uint, withUserInfo bool) (*ReviewBackup, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	backup := &ReviewBackup{
		FormatVersion: backupFormatVersion,
		ExportedAt:    time.Now().UTC(),
		Review: ReviewExport{
			Intro:             review.Intro,
			CoursePageDisplay: review.CoursePageDisplay,
			CompletionRate:    review.CompletionRate,
			CompletionReview:  review.CompletionReview,
			AutoCompletion:    review.AutoCompletion,
		},
	}

	if withUserInfo {
		var userReviews []models.UserReview
		if err := s.db.Where("review_id = ?", reviewID).Order("id").Find(&userReviews).Error; err != nil {
			return nil, err
		}
		backup.UserReviews = make([]UserReviewExport, 0, len(userReviews))
		for _, ur := range userReviews {
			backup.UserReviews = append(backup.UserReviews, UserReviewExport{
				UserID:      ur.UserID,
				Rate:        ur.Rate,
				Text:        ur.Text,
				Status:      ur.Status,
				TimeAdded:   ur.TimeAdded,
				ModeratorID: ur.ModeratorID,
				TimeChecked: ur.TimeChecked,
				Comment:     ur.Comment,
			})
		}
	}
	return backup, nil
}

// Restore creates the activity in the target course from the archive.
// The target course must not already carry a review activity. User review
// rows referencing users unknown to this site are skipped.
func (s *BackupService) Restore(backup *ReviewBackup, courseID uint, withUserInfo bool) (*models.Review, error) {
	if backup.FormatVersion > backupFormatVersion {
		return nil, fmt.Errorf("unsupported backup format version %d", backup.FormatVersion)
	}

	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		return nil, ErrCourseNotFound
	}
	var existing models.Review
	if err := s.db.Where("course_id = ?", courseID).First(&existing).Error; err == nil {
		return nil, ErrReviewExists
	}

	review := models.Review{
		CourseID:          courseID,
		Intro:             backup.Review.Intro,
		CoursePageDisplay: backup.Review.CoursePageDisplay,
		CompletionRate:    backup.Review.CompletionRate,
		CompletionReview:  backup.Review.CompletionReview,
		AutoCompletion:    backup.Review.AutoCompletion,
		TimeModified:      time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if !withUserInfo {
			return nil
		}
		for _, ur := range backup.UserReviews {
			var user models.User
			if err := tx.First(&user, ur.UserID).Error; err != nil {
				logger.Warn("Skipping user review of unknown user ", ur.UserID)
				continue
			}
			row := models.UserReview{
				ReviewID:    review.ID,
				UserID:      ur.UserID,
				Rate:        ur.Rate,
				Text:        ur.Text,
				Status:      ur.Status,
				TimeAdded:   ur.TimeAdded,
				ModeratorID: ur.ModeratorID,
				TimeChecked: ur.TimeChecked,
				Comment:     ur.Comment,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Upload serializes the backup and stores it, returning the archive key and URL.
func (s *BackupService) Upload(backup *ReviewBackup, reviewID uint) (string, string, error) {
	if s.storage == nil {
		return "", "", fmt.Errorf("backup storage is not configured")
	}

	data, err := json.Marshal(backup)
	if err != nil {
		return "", "", err
	}

	suffix, err := utils.GenerateRandomString(8)
	if err != nil {
		return "", "", err
	}
	key := fmt.Sprintf("backups/review-%d-%s-%s.json",
		reviewID, backup.ExportedAt.Format("20060102T150405"), suffix)

	url, err := s.storage.UploadArchive(key, data)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

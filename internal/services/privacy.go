package services

import (
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"gorm.io/gorm"
)

// PrivacyService answers data-subject requests: export of everything a user
// has rated or reviewed, and erasure of that data.
type PrivacyService struct {
	db *gorm.DB
}

func NewPrivacyService(db *gorm.DB) *PrivacyService {
	return &PrivacyService{db: db}
}

type PrivacyReviewExport struct {
	CourseName  string     `json:"course_name"`
	Rate        int        `json:"rate"`
	Text        string     `json:"text"`
	Status      int        `json:"status"`
	TimeAdded   time.Time  `json:"time_added"`
	TimeChecked *time.Time `json:"time_checked,omitempty"`
}

type UserDataExport struct {
	UserID      uint                  `json:"user_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Reviews     []PrivacyReviewExport `json:"reviews"`
}

// Export collects the user's review data joined with the course names.
func (s *PrivacyService) Export(userID uint) (*UserDataExport, error) {
	type row struct {
		FullName    string
		Rate        int
		Text        string
		Status      int
		TimeAdded   time.Time
		TimeChecked *time.Time
	}
	var rows []row
	err := s.db.Model(&models.UserReview{}).
		Select("courses.full_name, user_reviews.rate, user_reviews.text, user_reviews.status, "+
			"user_reviews.time_added, user_reviews.time_checked").
		Joins("JOIN reviews ON reviews.id = user_reviews.review_id").
		Joins("JOIN courses ON courses.id = reviews.course_id").
		Where("user_reviews.user_id = ?", userID).
		Order("user_reviews.time_added DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	export := &UserDataExport{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
		Reviews:     make([]PrivacyReviewExport, 0, len(rows)),
	}
	for _, r := range rows {
		export.Reviews = append(export.Reviews, PrivacyReviewExport{
			CourseName:  r.FullName,
			Rate:        r.Rate,
			Text:        r.Text,
			Status:      r.Status,
			TimeAdded:   r.TimeAdded,
			TimeChecked: r.TimeChecked,
		})
	}
	return export, nil
}

// EraseUser removes all review data of the user across the site.
func (s *PrivacyService) EraseUser(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserReview{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Completion{}).Error
	})
}

// EraseUserInReview removes the user's data for one activity only.
func (s *PrivacyService) EraseUserInReview(userID, reviewID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).Delete(&models.UserReview{}).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND review_id = ?", userID, reviewID).Delete(&models.Completion{}).Error
	})
}

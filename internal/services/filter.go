package services

import (
	"github.com/okovalenko/coursereview-backend/internal/models"
	"gorm.io/gorm"
)

// Filter selects user reviews for the listing and moderation views. All
// clauses are combined with AND: slice fields mean IN, numeric fields mean
// exact match, string fields mean case-insensitive substring match.
type Filter struct {
	IDs          []uint `form:"id"`
	ReviewIDs    []uint `form:"review_id"`
	Statuses     []int  `form:"status"`
	UserID       uint   `form:"user_id"`
	Rate         int    `form:"rate"`
	CourseName   string `form:"course"`
	CategoryName string `form:"category"`
	NotEmptyOnly bool   `form:"notempty"`
}

// UserReviewRow is a user review joined with the display attributes of its
// author, course and category.
type UserReviewRow struct {
	models.UserReview
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	CourseID     uint   `json:"course_id"`
	CourseName   string `json:"course_name"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// FullName is the author display name.
func (r *UserReviewRow) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.LastName + " " + r.FirstName
}

func (s *UserReviewService) filtered(filter Filter) *gorm.DB {
	query := s.db.Model(&models.UserReview{}).
		Joins("JOIN reviews ON reviews.id = user_reviews.review_id").
		Joins("JOIN users ON users.id = user_reviews.user_id").
		Joins("JOIN courses ON courses.id = reviews.course_id").
		Joins("JOIN categories ON categories.id = courses.category_id")

	if len(filter.IDs) > 0 {
		query = query.Where("user_reviews.id IN ?", filter.IDs)
	}
	if len(filter.ReviewIDs) > 0 {
		query = query.Where("user_reviews.review_id IN ?", filter.ReviewIDs)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("user_reviews.status IN ?", filter.Statuses)
	}
	if filter.UserID != 0 {
		query = query.Where("user_reviews.user_id = ?", filter.UserID)
	}
	if filter.Rate != 0 {
		query = query.Where("user_reviews.rate = ?", filter.Rate)
	}
	if filter.CourseName != "" {
		query = query.Where("LOWER(courses.full_name) LIKE LOWER(?)", "%"+filter.CourseName+"%")
	}
	if filter.CategoryName != "" {
		query = query.Where("LOWER(categories.name) LIKE LOWER(?)", "%"+filter.CategoryName+"%")
	}
	if filter.NotEmptyOnly {
		query = query.Where("user_reviews.text <> ''")
	}
	return query
}

// Find returns matching rows ordered by submission time, newest first.
func (s *UserReviewService) Find(filter Filter, offset, limit int) ([]UserReviewRow, error) {
	query := s.filtered(filter).
		Select("user_reviews.*, users.first_name, users.last_name, " +
			"courses.id AS course_id, courses.full_name AS course_name, " +
			"categories.id AS category_id, categories.name AS category_name").
		Order("user_reviews.time_added DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []UserReviewRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of rows the filter matches.
func (s *UserReviewService) Count(filter Filter) (int64, error) {
	var count int64
	err := s.filtered(filter).Count(&count).Error
	return count, err
}

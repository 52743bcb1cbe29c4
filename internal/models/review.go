package models

import (
	"time"
)

// Review statuses. Stored as small ints so the moderation widget can map
// them onto fixed positions of the draggable track.
const (
	StatusReturned   = 1
	StatusNotChecked = 2
	StatusAccepted   = 3
)

// MaxReviewLength is the maximum stored length of a review text, in runes.
// Longer texts are cut to 996 runes plus an ellipsis marker.
const MaxReviewLength = 997

// Review is the per-course activity instance. A course carries at most one.
type Review struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	CourseID          uint      `json:"course_id" gorm:"not null;uniqueIndex"`
	Intro             string    `json:"intro"`
	CoursePageDisplay bool      `json:"coursepage_display" gorm:"default:false"`
	CompletionRate    bool      `json:"completion_rate" gorm:"default:false"`
	CompletionReview  bool      `json:"completion_review" gorm:"default:false"`
	AutoCompletion    bool      `json:"auto_completion" gorm:"default:true"`
	TimeModified      time.Time `json:"time_modified"`

	Course      Course       `json:"course,omitempty"`
	UserReviews []UserReview `json:"user_reviews,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}

// UserReview is one student's rating, review text and moderation state for a Review.
// Exactly one row exists per (user, review) pair; it is created lazily on the
// first successful update.
type UserReview struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_userreview_review_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_userreview_review_user"`
	Rate      int       `json:"rate" gorm:"default:0"`
	Text      string    `json:"text"`
	Status    int       `json:"status" gorm:"default:2"`
	TimeAdded time.Time `json:"time_added"`

	// Moderation audit trail.
	ModeratorID uint       `json:"moderator_id" gorm:"default:0"`
	TimeChecked *time.Time `json:"time_checked"`
	Comment     string     `json:"comment"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID"`
	User   User   `json:"-" gorm:"foreignKey:UserID"`
}

// IsStored reports whether the user review has been persisted yet.
func (ur *UserReview) IsStored() bool {
	return ur.ID != 0
}

// ValidStatus reports whether s is one of the three moderation states.
func ValidStatus(s int) bool {
	return s == StatusReturned || s == StatusNotChecked || s == StatusAccepted
}

// ValidRate reports whether r is a real star rating.
func ValidRate(r int) bool {
	return r >= 1 && r <= 5
}

// TruncateText enforces MaxReviewLength: texts over the limit keep their
// first MaxReviewLength-1 runes and gain an ellipsis marker.
func TruncateText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxReviewLength {
		return text
	}
	return string(runes[:MaxReviewLength-1]) + "…"
}

// Completion states mirrored to the completion tracker.
const (
	CompletionIncomplete = 0
	CompletionComplete   = 1
)

// Completion records the tracked completion state of a review activity for a user.
type Completion struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ReviewID uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_completion_review_user"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_completion_review_user"`
	State    int       `json:"state" gorm:"default:0"`
	Updated  time.Time `json:"updated"`
}

// Event names recorded in the review event log.
const (
	EventReviewAdded    = "review_added"
	EventReviewAssessed = "review_assessed"
)

// ReviewEvent is an append-only log entry carrying a snapshot of the
// user review at the time of the action.
type ReviewEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	ObjectID  uint      `json:"object_id" gorm:"not null"`
	ActorID   uint      `json:"actor_id"`
	CourseID  uint      `json:"course_id"`
	Snapshot  string    `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting is a site-wide configuration value.
type Setting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"unique;not null"`
	Value string `json:"value"`
}

// Setting names and defaults.
const (
	SettingColorTheme      = "color_theme"
	SettingPerPageReview   = "perpage_review"
	SettingPerPageModerate = "perpage_moderate"

	DefaultColorTheme      = "#1f7fd3"
	DefaultPerPageReview   = 5
	DefaultPerPageModerate = 20
)

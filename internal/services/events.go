package services

import (
	"encoding/json"
	"time"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"gorm.io/gorm"
)

// EventService appends entries to the review event log. Recording failures
// are logged and swallowed: an event must never fail the operation it describes.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Record(name string, userReview *models.UserReview, actorID, courseID uint) {
	snapshot, err := json.Marshal(userReview)
	if err != nil {
		logger.Error("Failed to snapshot user review for event log: ", err)
		snapshot = []byte("{}")
	}

	event := models.ReviewEvent{
		Name:      name,
		ObjectID:  userReview.ID,
		ActorID:   actorID,
		CourseID:  courseID,
		Snapshot:  string(snapshot),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		logger.Error("Failed to record review event: ", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"event":     name,
		"object_id": userReview.ID,
		"actor_id":  actorID,
		"course_id": courseID,
	}).Info("review event")
}

// Recent returns the newest log entries, used by the admin dashboard.
func (s *EventService) Recent(limit int) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	err := s.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

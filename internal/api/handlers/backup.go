package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
)

// BackupHandler exports and restores review activities. Both operations
// are admin only.
type BackupHandler struct {
	backup *services.BackupService
}

func NewBackupHandler(backup *services.BackupService) *BackupHandler {
	return &BackupHandler{backup: backup}
}

// Export serializes the activity and its user reviews. With ?upload=true
// the archive is also stored to the configured bucket. ?anonymize=true
// drops the user data from the archive.
func (h *BackupHandler) Export(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}

	withUserInfo := c.Query("anonymize") != "true"
	backup, err := h.backup.Export(uint(reviewID), withUserInfo)
	if err != nil {
		if err == services.ErrReviewNotFound {
			utils.SendNotFound(c, "Review activity not found")
			return
		}
		utils.SendInternalError(c, "Failed to export backup", err)
		return
	}

	if c.Query("upload") == "true" {
		key, url, err := h.backup.Upload(backup, uint(reviewID))
		if err != nil {
			utils.SendInternalError(c, "Failed to upload backup archive", err)
			return
		}
		utils.SendSuccess(c, "Backup uploaded successfully", gin.H{
			"backup": backup,
			"key":    key,
			"url":    url,
		})
		return
	}

	utils.SendSuccess(c, "Backup exported successfully", backup)
}

type restoreRequest struct {
	CourseID     uint                   `json:"course_id" binding:"required"`
	WithUserInfo bool                   `json:"with_user_info"`
	Backup       *services.ReviewBackup `json:"backup" binding:"required"`
}

// Restore re-creates the archived activity in the target course.
func (h *BackupHandler) Restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	review, err := h.backup.Restore(req.Backup, req.CourseID, req.WithUserInfo)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			utils.SendNotFound(c, "Course not found")
		case services.ErrReviewExists:
			utils.SendError(c, http.StatusConflict, "Course already has a review activity", err)
		default:
			utils.SendError(c, http.StatusBadRequest, "Failed to restore backup", err)
		}
		return
	}

	utils.SendSuccess(c, "Backup restored successfully", review)
}

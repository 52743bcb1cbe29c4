package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
)

// PrivacyHandler exposes the personal data export and erasure operations.
type PrivacyHandler struct {
	privacy *services.PrivacyService
}

func NewPrivacyHandler(privacy *services.PrivacyService) *PrivacyHandler {
	return &PrivacyHandler{privacy: privacy}
}

// Export returns every review and rate the requesting user has stored.
func (h *PrivacyHandler) Export(c *gin.Context) {
	export, err := h.privacy.Export(c.GetUint("user_id"))
	if err != nil {
		utils.SendInternalError(c, "Failed to export user data", err)
		return
	}

	utils.SendSuccess(c, "User data exported successfully", export)
}

// EraseOwn removes the requesting user's review rows and completion states.
func (h *PrivacyHandler) EraseOwn(c *gin.Context) {
	if err := h.privacy.EraseUser(c.GetUint("user_id")); err != nil {
		utils.SendInternalError(c, "Failed to erase user data", err)
		return
	}

	utils.SendSuccess(c, "User data erased successfully", nil)
}

// EraseUser is the admin variant: erase a named user's rows, optionally
// scoped to one review activity.
func (h *PrivacyHandler) EraseUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid user id")
		return
	}

	if reviewParam := c.Query("review_id"); reviewParam != "" {
		reviewID, err := strconv.ParseUint(reviewParam, 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid review id")
			return
		}
		if err := h.privacy.EraseUserInReview(uint(userID), uint(reviewID)); err != nil {
			utils.SendInternalError(c, "Failed to erase user data", err)
			return
		}
		utils.SendSuccess(c, "User data erased successfully", nil)
		return
	}

	if err := h.privacy.EraseUser(uint(userID)); err != nil {
		utils.SendInternalError(c, "Failed to erase user data", err)
		return
	}

	utils.SendSuccess(c, "User data erased successfully", nil)
}

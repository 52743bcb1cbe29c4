package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/render"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"gorm.io/gorm"
)

// ReviewHandler manages the review activity instances and the course page
// widget.
type ReviewHandler struct {
	reviews     *services.ReviewService
	userReviews *services.UserReviewService
	renderer    *render.Renderer
	db          *gorm.DB
}

func NewReviewHandler(reviews *services.ReviewService, userReviews *services.UserReviewService, renderer *render.Renderer, db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{
		reviews:     reviews,
		userReviews: userReviews,
		renderer:    renderer,
		db:          db,
	}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	actor, err := services.LoadActor(h.db, c.GetUint("user_id"))
	if err != nil {
		utils.SendInternalError(c, "Failed to load user context", err)
		return
	}
	if !actor.CanModerate(req.CourseID) && !actor.CanModerateAll() {
		utils.SendForbidden(c, "You cannot manage activities in this course")
		return
	}

	review, err := h.reviews.Create(req)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound:
			utils.SendNotFound(c, "Course not found")
		case services.ErrReviewExists:
			utils.SendError(c, http.StatusConflict, "Course already has a review activity", err)
		default:
			utils.SendInternalError(c, "Failed to create review activity", err)
		}
		return
	}

	utils.SendSuccess(c, "Review activity created successfully", review)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}

	review, err := h.reviews.Get(uint(reviewID))
	if err != nil {
		utils.SendNotFound(c, "Review activity not found")
		return
	}

	utils.SendSuccess(c, "Review activity retrieved successfully", review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}

	review, err := h.reviews.Get(uint(reviewID))
	if err != nil {
		utils.SendNotFound(c, "Review activity not found")
		return
	}

	actor, err := services.LoadActor(h.db, c.GetUint("user_id"))
	if err != nil {
		utils.SendInternalError(c, "Failed to load user context", err)
		return
	}
	if !actor.CanModerate(review.CourseID) && !actor.CanModerateAll() {
		utils.SendForbidden(c, "You cannot manage activities in this course")
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	updated, err := h.reviews.Update(uint(reviewID), req)
	if err != nil {
		utils.SendInternalError(c, "Failed to update review activity", err)
		return
	}

	utils.SendSuccess(c, "Review activity updated successfully", updated)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}

	review, err := h.reviews.Get(uint(reviewID))
	if err != nil {
		utils.SendNotFound(c, "Review activity not found")
		return
	}

	actor, err := services.LoadActor(h.db, c.GetUint("user_id"))
	if err != nil {
		utils.SendInternalError(c, "Failed to load user context", err)
		return
	}
	if !actor.CanModerate(review.CourseID) && !actor.CanModerateAll() {
		utils.SendForbidden(c, "You cannot manage activities in this course")
		return
	}

	if err := h.reviews.Delete(uint(reviewID)); err != nil {
		utils.SendInternalError(c, "Failed to delete review activity", err)
		return
	}

	utils.SendSuccess(c, "Review activity deleted successfully", nil)
}

// CourseWidget serves the compact rating widget shown on the course page.
// It is empty when the activity disables the course page display.
func (h *ReviewHandler) CourseWidget(c *gin.Context) {
	courseID, err := strconv.ParseUint(c.Param("course_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid course id")
		return
	}

	review, err := h.reviews.GetByCourse(uint(courseID))
	if err != nil {
		utils.SendNotFound(c, "Course has no review activity")
		return
	}
	if !review.CoursePageDisplay {
		c.Data(http.StatusOK, "text/html; charset=utf-8", nil)
		return
	}

	stat, err := h.userReviews.RateStats(review.ID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load statistics", err)
		return
	}

	widget, err := h.renderer.StatsWidget(stat)
	if err != nil {
		utils.SendInternalError(c, "Failed to render widget", err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(widget))
}

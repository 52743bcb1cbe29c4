package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/render"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"github.com/okovalenko/coursereview-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserReviewHandler serves the interactive review surface: star clicks,
// review submission, moderation decisions and the rendered pages built
// from them.
type UserReviewHandler struct {
	userReviews *services.UserReviewService
	reviews     *services.ReviewService
	settings    *services.SettingsService
	renderer    *render.Renderer
	db          *gorm.DB
	baseURL     string
}

func NewUserReviewHandler(
	userReviews *services.UserReviewService,
	reviews *services.ReviewService,
	settings *services.SettingsService,
	renderer *render.Renderer,
	db *gorm.DB,
	baseURL string,
) *UserReviewHandler {
	return &UserReviewHandler{
		userReviews: userReviews,
		reviews:     reviews,
		settings:    settings,
		renderer:    renderer,
		db:          db,
		baseURL:     baseURL,
	}
}

func (h *UserReviewHandler) actor(c *gin.Context) (services.Actor, bool) {
	actor, err := services.LoadActor(h.db, c.GetUint("user_id"))
	if err != nil {
		utils.SendInternalError(c, "Failed to load user context", err)
		return services.Actor{}, false
	}
	return actor, true
}

type saveRateRequest struct {
	Rate int `json:"rate" binding:"required"`
}

type saveRateResponse struct {
	Result       int    `json:"result"`
	Stat         string `json:"stat"`
	UserReviewID uint   `json:"userreview_id"`
}

// SaveRate applies a star click and returns the refreshed statistics
// fragment. An unknown review id is answered with result 0, not an error.
func (h *UserReviewHandler) SaveRate(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}

	var req saveRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	userReview, stored, err := h.userReviews.SaveRate(actor, uint(reviewID), req.Rate)
	if err != nil {
		logger.Error("save_rate failed: ", err)
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}
	if !stored {
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}

	stat, err := h.userReviews.RateStats(uint(reviewID))
	if err != nil {
		logger.Error("save_rate stats failed: ", err)
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}
	statHTML, err := h.renderer.StatsWidget(stat)
	if err != nil {
		logger.Error("save_rate render failed: ", err)
		c.JSON(http.StatusOK, saveRateResponse{Result: 0})
		return
	}

	c.JSON(http.StatusOK, saveRateResponse{
		Result:       1,
		Stat:         string(statHTML),
		UserReviewID: userReview.ID,
	})
}

type saveStatusRequest struct {
	Status   *int     `json:"status"`
	Position *float64 `json:"position"`
}

type saveStatusResponse struct {
	Result   int    `json:"result"`
	Switcher string `json:"switcher"`
}

// SaveStatus applies a moderation decision sent either as an explicit
// status or as the pixel offset of the dragged switcher handle. Unknown
// user review ids fail soft with result 0.
func (h *UserReviewHandler) SaveStatus(c *gin.Context) {
	userReviewID, err := strconv.ParseUint(c.Param("userreview_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}

	var req saveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}

	var status int
	switch {
	case req.Status != nil:
		status = *req.Status
	case req.Position != nil:
		status = services.StatusFromOffset(*req.Position)
	default:
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	userReview, stored, err := h.userReviews.SaveStatus(actor, uint(userReviewID), status)
	if err != nil {
		logger.Error("save_status failed: ", err)
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}
	if !stored {
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}

	switcherHTML, err := h.renderer.Switcher(userReview, h.baseURL)
	if err != nil {
		logger.Error("save_status render failed: ", err)
		c.JSON(http.StatusOK, saveStatusResponse{Result: 0})
		return
	}

	c.JSON(http.StatusOK, saveStatusResponse{
		Result:   1,
		Switcher: string(switcherHTML),
	})
}

type submitReviewRequest struct {
	Text string `json:"text" binding:"required"`
}

// SubmitReview stores the review text for the acting user.
func (h *UserReviewHandler) SubmitReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Review text is required")
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	userReview, err := h.userReviews.SubmitReview(actor, uint(reviewID), req.Text)
	if err != nil {
		switch err {
		case services.ErrReviewNotFound:
			utils.SendNotFound(c, "Review activity not found")
		case services.ErrNoPermission:
			utils.SendForbidden(c, "You cannot review this course")
		default:
			utils.SendInternalError(c, "Failed to save review", err)
		}
		return
	}

	utils.SendSuccess(c, "Review saved successfully", userReview)
}

// ViewPage builds the view page of one review activity. The query
// parameters rate, newstatus and userreviewid are the no-script fallback
// of the star form and the status switcher; they are applied before the
// page is rendered.
func (h *UserReviewHandler) ViewPage(c *gin.Context) {
	reviewID64, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}
	reviewID := uint(reviewID64)

	review, err := h.reviews.Get(reviewID)
	if err != nil {
		utils.SendNotFound(c, "Review activity not found")
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	// No-script star form fallback.
	if rateParam := c.Query("rate"); rateParam != "" {
		if rate, err := strconv.Atoi(rateParam); err == nil {
			if _, _, err := h.userReviews.SaveRate(actor, reviewID, rate); err != nil {
				logger.Error("fallback rate failed: ", err)
			}
		}
	}

	// No-script status switcher fallback.
	if statusParam := c.Query("newstatus"); statusParam != "" {
		status, serr := strconv.Atoi(statusParam)
		targetID, terr := strconv.ParseUint(c.Query("userreviewid"), 10, 32)
		if serr == nil && terr == nil {
			if _, _, err := h.userReviews.SaveStatus(actor, uint(targetID), status); err != nil {
				logger.Error("fallback status failed: ", err)
			}
		}
	}

	userReview, _, err := h.userReviews.Materialize(reviewID, actor.UserID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load your review", err)
		return
	}

	rateForm, err := h.renderer.RateForm(reviewID, userReview.Rate, h.baseURL, "")
	if err != nil {
		utils.SendInternalError(c, "Failed to render page", err)
		return
	}

	stat, err := h.userReviews.RateStats(reviewID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load statistics", err)
		return
	}
	statsHTML, err := h.renderer.StatsWidget(stat)
	if err != nil {
		utils.SendInternalError(c, "Failed to render page", err)
		return
	}

	viewAll := actor.CanViewAll(review.CourseID)
	var reviewsHTML template.HTML
	if viewAll {
		rows, err := h.userReviews.Find(services.Filter{
			ReviewIDs:    []uint{reviewID},
			Statuses:     []int{models.StatusAccepted},
			NotEmptyOnly: true,
		}, 0, h.settings.PerPageReview())
		if err != nil {
			utils.SendInternalError(c, "Failed to load reviews", err)
			return
		}
		reviewsHTML, err = h.renderer.ReviewList(rows)
		if err != nil {
			utils.SendInternalError(c, "Failed to render page", err)
			return
		}
	}

	page, err := h.renderer.Page(review, userReview, rateForm, statsHTML, reviewsHTML, viewAll)
	if err != nil {
		utils.SendInternalError(c, "Failed to render page", err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// ModeratePage serves the per-activity moderation table.
func (h *UserReviewHandler) ModeratePage(c *gin.Context) {
	reviewID64, err := strconv.ParseUint(c.Param("review_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid review id")
		return
	}
	reviewID := uint(reviewID64)

	review, err := h.reviews.Get(reviewID)
	if err != nil {
		utils.SendNotFound(c, "Review activity not found")
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.CanModerate(review.CourseID) && !actor.CanModerateAll() {
		utils.SendForbidden(c, "You cannot moderate this activity")
		return
	}

	filter := h.bindFilter(c)
	filter.ReviewIDs = []uint{reviewID}
	h.renderModeration(c, filter, false, h.settings.PerPageModerate())
}

// ModerateAllPage serves the site-wide moderation table for admins.
func (h *UserReviewHandler) ModerateAllPage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.CanModerateAll() {
		utils.SendForbidden(c, "You cannot moderate site-wide")
		return
	}

	h.renderModeration(c, h.bindFilter(c), true, h.settings.PerPageModerate())
}

func (h *UserReviewHandler) bindFilter(c *gin.Context) services.Filter {
	var filter services.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		logger.Debug("Dropping unreadable filter: ", err)
		return services.Filter{}
	}
	return filter
}

func (h *UserReviewHandler) renderModeration(c *gin.Context, filter services.Filter, withCourse bool, perPage int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	rows, err := h.userReviews.Find(filter, (page-1)*perPage, perPage)
	if err != nil {
		utils.SendInternalError(c, "Failed to load reviews", err)
		return
	}

	table, err := h.renderer.ModerationTable(rows, withCourse, h.baseURL)
	if err != nil {
		utils.SendInternalError(c, "Failed to render table", err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(table))
}

// List returns the filtered user reviews as JSON for API consumers.
func (h *UserReviewHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.CanModerateAll() {
		utils.SendForbidden(c, "Admin access required")
		return
	}

	filter := h.bindFilter(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := h.settings.PerPageModerate()

	rows, err := h.userReviews.Find(filter, (page-1)*perPage, perPage)
	if err != nil {
		utils.SendInternalError(c, "Failed to load reviews", err)
		return
	}
	total, err := h.userReviews.Count(filter)
	if err != nil {
		utils.SendInternalError(c, "Failed to count reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", gin.H{
		"reviews":  rows,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

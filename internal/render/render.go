package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/services"
)

// Renderer produces the HTML fragments used by the rating and moderation
// widgets. The fragments keep the css class names the client script binds to.
type Renderer struct {
	settings  *services.SettingsService
	templates *template.Template
}

func New(settings *services.SettingsService) (*Renderer, error) {
	templates := template.New("review").Funcs(template.FuncMap{
		"seq":    seq,
		"rseq":   rseq,
		"until":  func(rate, star int) bool { return rate >= star },
		"filled": func(avg float64, star int) bool { return avg >= float64(star) },
	})
	var err error
	for name, text := range fragmentTemplates {
		templates, err = templates.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %v", name, err)
		}
	}
	return &Renderer{settings: settings, templates: templates}, nil
}

func seq(from, to int) []int {
	var values []int
	for i := from; i <= to; i++ {
		values = append(values, i)
	}
	return values
}

func rseq(from, to int) []int {
	var values []int
	for i := from; i >= to; i-- {
		values = append(values, i)
	}
	return values
}

func (r *Renderer) execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type statsData struct {
	Stat   *services.RateStats
	Color  string
	Scales []scaleData
}

type scaleData struct {
	Star    int
	Percent int
	Offset  int
}

// StatsWidget renders the aggregate rating block: amount, average stars and
// the per-star percentage scales.
func (r *Renderer) StatsWidget(stat *services.RateStats) (template.HTML, error) {
	data := statsData{Stat: stat, Color: r.settings.ColorTheme()}
	for star := 1; star <= 5; star++ {
		percent := stat.Share(star)
		data.Scales = append(data.Scales, scaleData{Star: star, Percent: percent, Offset: percent * 2})
	}
	return r.execute("stats", data)
}

type switcherData struct {
	UserReview *models.UserReview
	BaseURL    string
	Statuses   []int
}

// Switcher renders the drag-or-click moderation widget for one user review.
// Each stop carries a no-script fallback link applying the status via query
// parameters.
func (r *Renderer) Switcher(userReview *models.UserReview, baseURL string) (template.HTML, error) {
	return r.execute("switcher", switcherData{
		UserReview: userReview,
		BaseURL:    baseURL,
		Statuses:   []int{models.StatusReturned, models.StatusNotChecked, models.StatusAccepted},
	})
}

type rateFormData struct {
	ReviewID uint
	Rate     int
	BaseURL  string
	AuxClass string
}

// RateForm renders the clickable star row for the acting user's own rate.
func (r *Renderer) RateForm(reviewID uint, rate int, baseURL, auxClass string) (template.HTML, error) {
	return r.execute("rateform", rateFormData{
		ReviewID: reviewID,
		Rate:     rate,
		BaseURL:  baseURL,
		AuxClass: auxClass,
	})
}

type reviewListData struct {
	Rows []services.UserReviewRow
}

// ReviewList renders accepted reviews for the activity page.
func (r *Renderer) ReviewList(rows []services.UserReviewRow) (template.HTML, error) {
	return r.execute("reviewlist", reviewListData{Rows: rows})
}

type moderationTableData struct {
	Rows        []moderationRowData
	WithCourse  bool
	ColumnCount int
}

type moderationRowData struct {
	Row      services.UserReviewRow
	Switcher template.HTML
}

// ModerationTable renders the moderator view: author, text, rate and the
// status switcher per row; site-wide tables add category and course columns.
func (r *Renderer) ModerationTable(rows []services.UserReviewRow, withCourse bool, baseURL string) (template.HTML, error) {
	data := moderationTableData{WithCourse: withCourse, ColumnCount: 4}
	if withCourse {
		data.ColumnCount = 6
	}
	for _, row := range rows {
		switcher, err := r.Switcher(&row.UserReview, baseURL)
		if err != nil {
			return "", err
		}
		data.Rows = append(data.Rows, moderationRowData{Row: row, Switcher: switcher})
	}
	return r.execute("moderationtable", data)
}

type pageData struct {
	Review   *models.Review
	RateForm template.HTML
	Status   int
	HasText  bool
	Text     string
	Stats    template.HTML
	Reviews  template.HTML
	ViewAll  bool
}

// Page renders the activity view page: intro, the user's rate and review
// form and, for privileged viewers, the stats block with accepted reviews.
func (r *Renderer) Page(review *models.Review, userReview *models.UserReview, rateForm, stats, reviews template.HTML, viewAll bool) (template.HTML, error) {
	return r.execute("page", pageData{
		Review:   review,
		RateForm: rateForm,
		Status:   userReview.Status,
		HasText:  userReview.Text != "",
		Text:     userReview.Text,
		Stats:    stats,
		Reviews:  reviews,
		ViewAll:  viewAll,
	})
}

// starSVG is the star pixmap; the black fill is replaced by the theme color.
const starSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24"><path fill="#000000" d="M12 1.5l3.09 6.26 6.91 1-5 4.87 1.18 6.88L12 17.27l-6.18 3.24L7 13.63l-5-4.87 6.91-1L12 1.5z"/></svg>`

// StarSVG returns the star asset recolored with the configured theme color.
func (r *Renderer) StarSVG() string {
	return strings.ReplaceAll(starSVG, "#000000", r.settings.ColorTheme())
}

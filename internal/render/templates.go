package render

// The fragments keep the markup of the original widgets: the client script
// selects on these css classes and data attributes.
var fragmentTemplates = map[string]string{
	"stats": `<div class="display_all_rates">
<div class="all_rates_stat_header">Number of rates:&nbsp;{{.Stat.Amount}}</div>
<div class="rate_stars_avg">
{{- $avg := .Stat.Avg}}
{{- range seq 1 5}}
<span class="star{{if filled $avg .}} star_notempty{{end}}">&nbsp;</span>
{{- end}}
<div class="rate_avg_text">Average rating:&nbsp;{{.Stat.Avg}}</div>
</div>
<div class="all_rates_scales">
{{- range .Scales}}
<div class="rate_scale_info">{{.Star}}<div class="rate_scale" style="background-image: linear-gradient(to right,{{$.Color}} 0px,{{$.Color}} {{.Offset}}px,#fff {{.Offset}}px,#fff 100%);">&nbsp;</div>{{.Percent}}%</div>
{{- end}}
</div>
</div>`,

	"switcher": `<div class="status_switcher instatus{{.UserReview.Status}}">
{{- $ur := .UserReview}}{{$base := .BaseURL}}
{{- range .Statuses}}
<a class="status status{{.}}" data-status="{{.}}" data-reviewid="{{$ur.ID}}" href="{{$base}}?userreviewid={{$ur.ID}}&amp;newstatus={{.}}">&nbsp;</a>
{{- end}}
<a class="status handler selected draggable" data-status="{{$ur.Status}}" data-reviewid="{{$ur.ID}}" href="#">&nbsp;</a>
</div>`,

	"rateform": `<div class="rate_container">
<div class="your_rate_stars{{if .AuxClass}} {{.AuxClass}}{{end}}" id="rate{{.ReviewID}}">
{{- $d := .}}
{{- range rseq 5 1}}
<a class="yfdr_{{$d.ReviewID}}_{{.}} star{{if until $d.Rate .}} star_notempty{{end}}" href="{{$d.BaseURL}}?rate={{.}}">&nbsp;</a>
{{- end}}
</div>
</div>`,

	"reviewlist": `{{range .Rows -}}
<div class="display_review">
<div class="review_userfio">{{.FullName}}</div>
<div class="review_rate" id="review_rate{{.ID}}">
{{- $rate := .Rate}}
{{- range seq 1 5}}
<span class="star{{if until $rate .}} star_notempty{{end}}" data-rate="{{.}}">&nbsp;</span>
{{- end}}
</div>
<div class="review_date">{{.TimeAdded.Format "2 January 2006"}}</div>
<div class="review_text">{{.Text}}</div>
</div>
{{end -}}`,

	"moderationtable": `<table class="reviewtable">
<thead><tr>{{if .WithCourse}}<th>Category</th><th>Course</th>{{end}}<th>Author</th><th>Review</th><th>Rating</th><th>Status</th></tr></thead>
<tbody>
{{- if not .Rows}}
<tr><td colspan="{{.ColumnCount}}">No reviews</td></tr>
{{- end}}
{{- range .Rows}}
<tr>
{{- if $.WithCourse}}
<td>{{.Row.CategoryName}}</td>
<td>{{.Row.CourseName}}</td>
{{- end}}
<td>{{.Row.FullName}}<br/><span class="reviewtable_date">{{.Row.TimeAdded.Format "02.01.2006 15:04:05"}}</span></td>
<td>{{.Row.Text}}</td>
<td>{{.Row.Rate}}</td>
<td><div class="status_container" id="status_container{{.Row.ID}}">{{.Switcher}}</div></td>
</tr>
{{- end}}
</tbody>
</table>`,

	"page": `<div class="page_container">
<h2>Course review</h2>
{{- if .Review.Intro}}
<div class="review_intro">{{.Review.Intro}}</div>
{{- end}}
<div class="rate_header"><h4>Your rate of the course:</h4></div>
{{.RateForm}}
<div class="review_container review_form">
<h4>Your review of the course:</h4>
{{- if .HasText}}
<div class="review_status review_status{{.Status}}">
{{- if eq .Status 1}}Your review was returned{{end}}
{{- if eq .Status 2}}Your review is still not checked{{end}}
{{- if eq .Status 3}}Your review was accepted{{end}}
</div>
{{- end}}
<textarea name="text" rows="5" cols="50"{{if eq .Status 3}} disabled{{end}}>{{.Text}}</textarea>
{{- if ne .Status 3}}
<button type="submit">Submit</button>
{{- end}}
</div>
<hr/>
{{- if .ViewAll}}
<details class="display_all_reviews">
<summary id="allreviews">Other reviews and rates</summary>
<div id="rates_stat_container">{{.Stats}}</div>
{{.Reviews}}
</details>
{{- end}}
</div>`,
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Proposal placeholders the batch render fills.
const (
	PlaceholderClient           = "client"
	PlaceholderProjectTagline   = "project_tagline"
	PlaceholderProblemStatement = "problem_statement"
	PlaceholderProposedSolution = "proposed_solution"
	PlaceholderProjectSteps     = "project_steps"
	PlaceholderCases            = "cases"
	PlaceholderTestimonials     = "testimonials"
)

// ProposalPlaceholders returns the fixed placeholder set in validation order.
func ProposalPlaceholders() []string {
	return []string{
		PlaceholderClient,
		PlaceholderProjectTagline,
		PlaceholderProblemStatement,
		PlaceholderProposedSolution,
		PlaceholderProjectSteps,
		PlaceholderCases,
		PlaceholderTestimonials,
	}
}

// Validation statuses.
const (
	ValidationOK      = "✅"
	ValidationWarning = "🟨"
)

// MissingRateNote is recorded when the context carried no hourly rate.
const MissingRateNote = "Hourly rates not found in context, adjust on slide 5"

// ProjectStep is one step of a proposed project plan.
type ProjectStep struct {
	Title       string  `json:"title"`
	StartWeek   int     `json:"start_week"`
	EndWeek     int     `json:"end_week"`
	Description string  `json:"description"`
	TotalHours  float64 `json:"total_hours"`
}

// Time returns the step's schedule, e.g. "Week 1-3".
func (s ProjectStep) Time() string {
	return fmt.Sprintf("Week %d-%d", s.StartWeek, s.EndWeek)
}

// Cost formats the step's cost. Without a rate the amount is left blank for
// the author to fill in.
func (s ProjectStep) Cost(hourlyRate float64) string {
	if hourlyRate > 0 {
		return fmt.Sprintf("%sh X %s€ = %s€",
			formatNumber(s.TotalHours), formatNumber(hourlyRate), formatNumber(s.TotalHours*hourlyRate))
	}
	return fmt.Sprintf("%sh X  €", formatNumber(s.TotalHours))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReferenceCase is a past project retrieved as a reference.
type ReferenceCase struct {
	Title string
	Items []string
}

// NewReferenceCase splits a "- " bulleted description into at most three items.
func NewReferenceCase(title, description string) ReferenceCase {
	parts := strings.Split(description, "- ")
	var items []string
	for _, p := range parts[1:] {
		if len(items) == 3 {
			break
		}
		items = append(items, strings.TrimSpace(p))
	}
	return ReferenceCase{Title: title, Items: items}
}

// Lines renders the case as template text.
func (c ReferenceCase) Lines() []string {
	lines := []string{c.Title}
	for _, item := range c.Items {
		lines = append(lines, "· "+item)
	}
	return lines
}

// Testimonial is a client quote retrieved for the proposal.
type Testimonial struct {
	Quote    string
	Contact  string
	Company  string
	Portrait string
}

// ImagePath returns the portrait image path relative to the data directory.
func (t Testimonial) ImagePath() string {
	if t.Portrait == "" {
		return ""
	}
	return "images/" + t.Portrait + ".png"
}

// ValidationResult is one row of the proposal's data validation slide.
type ValidationResult struct {
	Title  string
	Status string
	Notes  string
}

// Proposal accumulates the content of a batch proposal render. Each pipeline
// stage receives the accumulator and returns an updated copy.
type Proposal struct {
	Keywords         string
	Client           string
	ProjectTagline   string
	ProblemStatement string
	ProposedSolution string
	HourlyRate       float64
	Steps            []ProjectStep
	Cases            []ReferenceCase
	Validation       []ValidationResult
	Testimonials     []Testimonial
}

// Validate builds the data validation rows for the proposal.
func (p Proposal) Validate() []ValidationResult {
	results := make([]ValidationResult, 0, len(ProposalPlaceholders()))
	for _, placeholder := range ProposalPlaceholders() {
		result := ValidationResult{Title: placeholder, Status: ValidationOK}
		if placeholder == PlaceholderProjectSteps {
			if len(p.Steps) == 0 || !strings.Contains(p.Steps[0].Cost(p.HourlyRate), "=") {
				result.Status = ValidationWarning
				result.Notes = MissingRateNote
			}
		}
		results = append(results, result)
	}
	return results
}

// TemplateData returns the template binding for the proposal.
func (p Proposal) TemplateData() map[string]any {
	data := map[string]any{
		"search_keywords":           p.Keywords,
		PlaceholderClient:           p.Client,
		PlaceholderProjectTagline:   p.ProjectTagline,
		PlaceholderProblemStatement: p.ProblemStatement,
		PlaceholderProposedSolution: p.ProposedSolution,
	}

	steps := make([]map[string]any, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, map[string]any{
			"title":       s.Title,
			"time":        s.Time(),
			"description": s.Description,
			"cost":        s.Cost(p.HourlyRate),
		})
	}
	data[PlaceholderProjectSteps] = steps

	for i, c := range p.Cases {
		data[fmt.Sprintf("case_%d", i+1)] = c.Lines()
	}

	for i, t := range p.Testimonials {
		key := fmt.Sprintf("testimonial_%d", i+1)
		data[key] = t.Quote
		data[key+"_sign"] = []string{t.Contact, t.Company}
		data[key+"_img"] = t.ImagePath()
	}

	validation := make([]map[string]any, 0, len(p.Validation))
	for _, v := range p.Validation {
		validation = append(validation, map[string]any{
			"title":  v.Title,
			"status": v.Status,
			"notes":  v.Notes,
		})
	}
	data["data_validation"] = validation
	return data
}

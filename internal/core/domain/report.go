package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportType is a kind of business report with its own template family.
type ReportType string

// Available report types.
const (
	ReportMonthlySales  ReportType = "Monthly Sales Report"
	ReportQuarterlyBR   ReportType = "Quarterly Business Review"
	ReportMarketingPlan ReportType = "Marketing Plan"
)

// DefaultDepartment is the department selected when none is given.
const DefaultDepartment = "Media & Electronics"

const (
	fullTemplateSuffix   = "_full.docx"
	pageTemplateFormat   = "page_%d.docx"
	proposalTemplateName = "proposal_template.pptx"
)

// ReportTypes returns all report types in menu order.
func ReportTypes() []ReportType {
	return []ReportType{ReportMonthlySales, ReportQuarterlyBR, ReportMarketingPlan}
}

// Departments returns the departments offered for retrieval.
func Departments() []string {
	return []string{DefaultDepartment, "Energy"}
}

// ParseReportType matches a report type by name or short alias.
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly", "sales", strings.ToLower(string(ReportMonthlySales)):
		return ReportMonthlySales, nil
	case "qbr", "quarterly", strings.ToLower(string(ReportQuarterlyBR)):
		return ReportQuarterlyBR, nil
	case "mplan", "marketing", strings.ToLower(string(ReportMarketingPlan)):
		return ReportMarketingPlan, nil
	default:
		return "", fmt.Errorf("report type %q: %w", s, ErrInvalidInput)
	}
}

// IsValid returns true if the report type is recognised.
func (r ReportType) IsValid() bool {
	switch r {
	case ReportMonthlySales, ReportQuarterlyBR, ReportMarketingPlan:
		return true
	default:
		return false
	}
}

// TemplatePrefix returns the file prefix of the report's templates.
func (r ReportType) TemplatePrefix() string {
	switch r {
	case ReportQuarterlyBR:
		return "qbr"
	case ReportMarketingPlan:
		return "mplan"
	default:
		return "sales_report"
	}
}

// HasPeriod reports whether the report is scoped to a period.
func (r ReportType) HasPeriod() bool {
	return r != ReportMarketingPlan
}

// IsQuarterly reports whether periods are quarters.
func (r ReportType) IsQuarterly() bool {
	return r == ReportQuarterlyBR
}

// PageTemplateName returns the template name for a page.
func PageTemplateName(pageNumber int) string {
	return fmt.Sprintf(pageTemplateFormat, pageNumber)
}

// FullTemplateName returns the full-document template name of a report type.
func (r ReportType) FullTemplateName() string {
	return r.TemplatePrefix() + fullTemplateSuffix
}

// ProposalTemplateName returns the template used by the batch proposal.
func ProposalTemplateName() string {
	return proposalTemplateName
}

// Period is a reporting period. Month is zero for quarterly periods.
type Period struct {
	Year    int
	Month   int
	Quarter int
}

// ParsePeriod accepts "2024 / 06", "2024-06", "2024/6" or "Q2/2024".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, nil
	}
	if strings.HasPrefix(strings.ToUpper(s), "Q") {
		parts := strings.SplitN(s[1:], "/", 2)
		if len(parts) != 2 {
			return Period{}, fmt.Errorf("period %q: %w", s, ErrInvalidInput)
		}
		q, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		y, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil || q < 1 || q > 4 {
			return Period{}, fmt.Errorf("period %q: %w", s, ErrInvalidInput)
		}
		return Period{Year: y, Quarter: q}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("period %q: %w", s, ErrInvalidInput)
	}
	y, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || m < 1 || m > 12 {
		return Period{}, fmt.Errorf("period %q: %w", s, ErrInvalidInput)
	}
	return Period{Year: y, Month: m}, nil
}

// IsZero reports whether no period is set.
func (p Period) IsZero() bool {
	return p.Year == 0
}

// String formats the period the way the menus show it.
func (p Period) String() string {
	switch {
	case p.IsZero():
		return ""
	case p.Quarter > 0:
		return fmt.Sprintf("Q%d/%d", p.Quarter, p.Year)
	default:
		return fmt.Sprintf("%d / %02d", p.Year, p.Month)
	}
}

// ReportRequest identifies the contents to retrieve.
type ReportRequest struct {
	Type       ReportType
	Period     Period
	Department string
}

// Validate checks the request is complete for its report type.
func (r ReportRequest) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("report type %q: %w", r.Type, ErrInvalidInput)
	}
	if r.Department == "" {
		return fmt.Errorf("department is required: %w", ErrInvalidInput)
	}
	if r.Type.HasPeriod() && r.Period.IsZero() {
		return fmt.Errorf("%s requires a period: %w", r.Type, ErrInvalidInput)
	}
	if r.Type.IsQuarterly() && r.Period.Quarter == 0 && !r.Period.IsZero() {
		return fmt.Errorf("%s requires a quarter such as Q2/2024: %w", r.Type, ErrInvalidInput)
	}
	return nil
}

// CacheKey identifies the request in the contents cache.
func (r ReportRequest) CacheKey() string {
	return strings.Join([]string{r.Type.TemplatePrefix(), r.Period.String(), r.Department}, "|")
}

// Month returns the month sent to the retrieval backend. Quarters map to
// their first month.
func (r ReportRequest) Month() int {
	if r.Period.Quarter > 0 {
		return (r.Period.Quarter-1)*3 + 1
	}
	return r.Period.Month
}

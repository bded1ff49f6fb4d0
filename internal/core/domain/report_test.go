package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportType(t *testing.T) {
	tests := []struct {
		input string
		want  ReportType
	}{
		{"", ReportMonthlySales},
		{"Monthly Sales Report", ReportMonthlySales},
		{"qbr", ReportQuarterlyBR},
		{"Quarterly Business Review", ReportQuarterlyBR},
		{"marketing", ReportMarketingPlan},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseReportType("weekly")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportType_Templates(t *testing.T) {
	assert.Equal(t, "sales_report_full.docx", ReportMonthlySales.FullTemplateName())
	assert.Equal(t, "qbr_full.docx", ReportQuarterlyBR.FullTemplateName())
	assert.Equal(t, "page_3.docx", PageTemplateName(3))
	assert.Equal(t, "proposal_template.pptx", ProposalTemplateName())
	assert.False(t, ReportMarketingPlan.HasPeriod())
	assert.True(t, ReportQuarterlyBR.IsQuarterly())
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"2024 / 06", Period{Year: 2024, Month: 6}},
		{"2024-6", Period{Year: 2024, Month: 6}},
		{"Q2/2024", Period{Year: 2024, Quarter: 2}},
		{"", Period{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"2024", "2024 / 13", "Q5/2024", "Q2-2024", "abc/def"} {
		_, err := ParsePeriod(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2024 / 06", Period{Year: 2024, Month: 6}.String())
	assert.Equal(t, "Q2/2024", Period{Year: 2024, Quarter: 2}.String())
	assert.Equal(t, "", Period{}.String())
}

func TestReportRequest_Validate(t *testing.T) {
	monthly := ReportRequest{Type: ReportMonthlySales, Period: Period{Year: 2024, Month: 6}, Department: DefaultDepartment}
	assert.NoError(t, monthly.Validate())
	assert.Equal(t, 6, monthly.Month())

	noPeriod := monthly
	noPeriod.Period = Period{}
	assert.ErrorIs(t, noPeriod.Validate(), ErrInvalidInput)

	noDept := monthly
	noDept.Department = ""
	assert.ErrorIs(t, noDept.Validate(), ErrInvalidInput)

	plan := ReportRequest{Type: ReportMarketingPlan, Department: "Energy"}
	assert.NoError(t, plan.Validate())

	qbr := ReportRequest{Type: ReportQuarterlyBR, Period: Period{Year: 2024, Month: 6}, Department: "Energy"}
	assert.ErrorIs(t, qbr.Validate(), ErrInvalidInput)
	qbr.Period = Period{Year: 2024, Quarter: 3}
	assert.NoError(t, qbr.Validate())
	assert.Equal(t, 7, qbr.Month())

	assert.ErrorIs(t, ReportRequest{Type: "weekly", Department: "x"}.Validate(), ErrInvalidInput)
}

func TestReportRequest_CacheKey(t *testing.T) {
	a := ReportRequest{Type: ReportMonthlySales, Period: Period{Year: 2024, Month: 6}, Department: "Energy"}
	b := a
	b.Department = DefaultDepartment

	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "sales_report|2024 / 06|Energy", a.CacheKey())
}

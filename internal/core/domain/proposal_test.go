package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStep_TimeAndCost(t *testing.T) {
	step := ProjectStep{Title: "Discovery", StartWeek: 1, EndWeek: 3, TotalHours: 40}

	assert.Equal(t, "Week 1-3", step.Time())
	assert.Equal(t, "40h X 95€ = 3800€", step.Cost(95))
	assert.Equal(t, "40h X 92.5€ = 3700€", step.Cost(92.5))
	assert.Equal(t, "40h X  €", step.Cost(0))
}

func TestNewReferenceCase(t *testing.T) {
	c := NewReferenceCase("Retail rollout", "Summary - first - second - third - fourth")

	assert.Equal(t, []string{"first", "second", "third"}, c.Items)
	assert.Equal(t, []string{"Retail rollout", "· first", "· second", "· third"}, c.Lines())

	empty := NewReferenceCase("Nothing", "no bullets here")
	assert.Empty(t, empty.Items)
}

func TestProposal_Validate(t *testing.T) {
	withRate := Proposal{HourlyRate: 100, Steps: []ProjectStep{{TotalHours: 10}}}
	results := withRate.Validate()

	require.Len(t, results, len(ProposalPlaceholders()))
	for _, r := range results {
		assert.Equal(t, ValidationOK, r.Status, r.Title)
	}

	withoutRate := Proposal{Steps: []ProjectStep{{TotalHours: 10}}}
	for _, r := range withoutRate.Validate() {
		if r.Title == PlaceholderProjectSteps {
			assert.Equal(t, ValidationWarning, r.Status)
			assert.Equal(t, MissingRateNote, r.Notes)
		} else {
			assert.Equal(t, ValidationOK, r.Status)
		}
	}
}

func TestProposal_TemplateData(t *testing.T) {
	p := Proposal{
		Keywords:   "retail, pricing",
		Client:     "Nexus Retail",
		HourlyRate: 50,
		Steps:      []ProjectStep{{Title: "Build", StartWeek: 2, EndWeek: 4, TotalHours: 8}},
		Cases:      []ReferenceCase{{Title: "Case", Items: []string{"a"}}},
		Testimonials: []Testimonial{
			{Quote: "Great", Contact: "Ann", Company: "Acme", Portrait: "ann"},
		},
	}
	p.Validation = p.Validate()

	data := p.TemplateData()

	assert.Equal(t, "Nexus Retail", data["client"])
	steps, ok := data["project_steps"].([]map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Week 2-4", steps[0]["time"])
	assert.Equal(t, "8h X 50€ = 400€", steps[0]["cost"])
	assert.Equal(t, []string{"Case", "· a"}, data["case_1"])
	assert.Equal(t, "Great", data["testimonial_1"])
	assert.Equal(t, []string{"Ann", "Acme"}, data["testimonial_1_sign"])
	assert.Equal(t, "images/ann.png", data["testimonial_1_img"])
	assert.Len(t, data["data_validation"], len(ProposalPlaceholders()))
}

package pipeline

import (
	"fmt"

	"github.com/advokit/advokit/catalog"
	"github.com/advokit/advokit/dialogue"
)

// Inputs is the structured bundle a completed intake dialogue produces. It is
// everything the pipeline needs; the conversation itself is not consulted
// again.
type Inputs struct {
	CompanyName       string                 `json:"companyName"`
	CompanyDomain     string                 `json:"companyDomain,omitempty"`
	ContactName       string                 `json:"contactName"`
	ContactRole       string                 `json:"contactRole,omitempty"`
	Topic             string                 `json:"topic"`
	Objective         string                 `json:"objective,omitempty"`
	Stakeholders      []dialogue.Stakeholder `json:"stakeholders,omitempty"`
	ResearchDepth     string                 `json:"researchDepth,omitempty"`
	DetailLevel       string                 `json:"detailLevel,omitempty"`
	Framework         string                 `json:"framework,omitempty"`
	Materials         []string               `json:"materials,omitempty"`
	AdditionalContext string                 `json:"additionalContext,omitempty"`

	// ResearchData, when supplied by the caller, replaces the search-backed
	// research phase entirely.
	ResearchData string `json:"researchData,omitempty"`
}

// FromState extracts pipeline inputs from a finished dialogue state.
func FromState(st *dialogue.State) Inputs {
	return Inputs{
		CompanyName:       st.CollectedString(catalog.StepCompanyName),
		CompanyDomain:     st.CollectedString(catalog.StepCompanyDomain),
		ContactName:       st.CollectedString(catalog.StepContactName),
		ContactRole:       st.CollectedString(catalog.StepContactRole),
		Topic:             st.CollectedString(catalog.StepTopic),
		Objective:         st.CollectedString(catalog.StepObjective),
		Stakeholders:      st.Stakeholders,
		ResearchDepth:     st.CollectedString(catalog.StepResearchDepth),
		DetailLevel:       st.CollectedString(catalog.StepDetailLevel),
		Framework:         st.CollectedString(catalog.StepFramework),
		Materials:         st.CollectedStrings(catalog.StepMaterials),
		AdditionalContext: st.CollectedString(catalog.StepAdditionalContext),
	}
}

// Validate checks that the fields no prompt can do without are present.
func (in Inputs) Validate() error {
	if in.CompanyName == "" {
		return fmt.Errorf("companyName is required")
	}
	if in.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// Result is the aggregate output of a completed pipeline run, stored on the
// progress record when the job completes.
type Result struct {
	Research          string            `json:"research,omitempty"`
	Landscape         string            `json:"landscape"`
	Persona           string            `json:"persona"`
	Tactics           string            `json:"tactics"`
	DiscussionPoints  string            `json:"discussionPoints"`
	ObjectionHandling string            `json:"objectionHandling"`
	Materials         map[string]string `json:"materials,omitempty"`

	// MaterialErrors records material kinds that failed to generate. One
	// kind failing never blocks the others or the job.
	MaterialErrors map[string]string `json:"materialErrors,omitempty"`
}

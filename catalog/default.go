package catalog

// Step ids for the campaign intake dialogue. Exported so the dialogue engine
// and tests can reference positions without magic strings.
const (
	StepCompanyName         = "company_name"
	StepCompanyDomain       = "company_domain"
	StepContactName         = "contact_name"
	StepContactRole         = "contact_role"
	StepTopic               = "topic"
	StepObjective           = "objective"
	StepStakeholderEntry    = "stakeholder_entry"
	StepStakeholderName     = "stakeholder_name"
	StepStakeholderLinkedIn = "stakeholder_linkedin"
	StepStakeholderContinue = "stakeholder_continue"
	StepResearchDepth       = "research_depth"
	StepDetailLevel         = "detail_level"
	StepFramework           = "framework"
	StepMaterials           = "materials"
	StepAdditionalContext   = "additional_context"
	StepDone                = "done"
)

// FieldStakeholders is the collected-fields key the stakeholder list is
// frozen into when the loop exits.
const FieldStakeholders = "stakeholders"

// Option sets for choice steps.
var (
	ResearchDepths = []string{"quick", "standard", "deep"}
	DetailLevels   = []string{"brief", "standard", "comprehensive"}
	Frameworks     = []string{"cialdini", "spin", "challenger"}
	MaterialKinds  = []string{"email", "one_pager", "talking_points", "faq"}
)

// Default returns the campaign intake catalog: 13 fixed-position steps plus a
// three-step stakeholder loop (name, linkedin, continue).
func Default() *Catalog {
	steps := []Step{
		{
			ID:          StepCompanyName,
			Prompt:      "Let's get started. What company or organization are you trying to influence?",
			TargetField: StepCompanyName,
			Required:    true,
		},
		{
			ID:          StepCompanyDomain,
			Prompt:      "Do you know the company's website domain? Share it, or say \"no\" to skip.",
			TargetField: StepCompanyDomain,
		},
		{
			ID:          StepContactName,
			Prompt:      "Who is your primary contact there?",
			TargetField: StepContactName,
			Required:    true,
		},
		{
			ID:          StepContactRole,
			Prompt:      "What is their role or title?",
			TargetField: StepContactRole,
			Required:    true,
		},
		{
			ID:          StepTopic,
			Prompt:      "What position or topic are you advocating for?",
			TargetField: StepTopic,
			Required:    true,
		},
		{
			ID:          StepObjective,
			Prompt:      "What outcome would make this campaign a success?",
			TargetField: StepObjective,
			Required:    true,
		},
		{
			ID:       StepStakeholderEntry,
			Prompt:   "Would you like to add specific stakeholders you need to win over? (yes/no)",
			LoopRole: LoopEntry,
		},
		{
			ID:          StepStakeholderName,
			Prompt:      "What is the stakeholder's name?",
			TargetField: "name",
			Required:    true,
			LoopRole:    LoopStep,
		},
		{
			ID:          StepStakeholderLinkedIn,
			Prompt:      "Do you have a LinkedIn URL for them? Share it, or say \"no\".",
			TargetField: "linkedin",
			LoopRole:    LoopStep,
		},
		{
			ID:       StepStakeholderContinue,
			Prompt:   "Add another stakeholder? (yes/no)",
			LoopRole: LoopContinuation,
		},
		{
			ID:          StepResearchDepth,
			Prompt:      "How deep should the background research go? (quick / standard / deep)",
			TargetField: StepResearchDepth,
			Required:    true,
			Options:     ResearchDepths,
		},
		{
			ID:          StepDetailLevel,
			Prompt:      "How detailed should the persona profile be? (brief / standard / comprehensive)",
			TargetField: StepDetailLevel,
			Required:    true,
			Options:     DetailLevels,
		},
		{
			ID:          StepFramework,
			Prompt:      "Which influence framework should the tactics follow? (cialdini / spin / challenger)",
			TargetField: StepFramework,
			Required:    true,
			Options:     Frameworks,
		},
		{
			ID:          StepMaterials,
			Prompt:      "Which supporting materials should I draft? List any of: email, one_pager, talking_points, faq — one per line, or say \"no\" to skip.",
			TargetField: StepMaterials,
			Options:     MaterialKinds,
			MultiSelect: true,
		},
		{
			ID:          StepAdditionalContext,
			Prompt:      "Anything else I should know before I start? Share it, or say \"no\".",
			TargetField: StepAdditionalContext,
		},
		{
			ID:     StepDone,
			Prompt: "That's everything I need. I'm ready to build your influence campaign — kick it off whenever you like.",
		},
	}

	substantive := []string{
		StepCompanyName,
		StepContactName,
		StepContactRole,
		StepTopic,
		StepObjective,
		FieldStakeholders,
		StepResearchDepth,
		StepDetailLevel,
		StepFramework,
	}

	return New(steps, substantive)
}

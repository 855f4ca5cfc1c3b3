package pipeline

import (
	"fmt"
	"strings"
)

// Output budgets per requested detail level. Detail changes the generation
// budget, not the orchestration.
var detailBudgets = map[string]int{
	"brief":         800,
	"standard":      1600,
	"comprehensive": 3000,
}

const defaultBudget = 1600

// budgetFor returns the token budget for the requested detail level.
func budgetFor(detailLevel string) int {
	if b, ok := detailBudgets[strings.ToLower(detailLevel)]; ok {
		return b
	}
	return defaultBudget
}

// Query counts per research depth. Depth expands how many queries run, never
// the research algorithm.
var depthQueryCounts = map[string]int{
	"quick":    2,
	"standard": 4,
	"deep":     6,
}

// researchQueries builds the ordered query list for the research phase,
// truncated to the depth's query budget.
func researchQueries(in Inputs) []string {
	queries := []string{
		fmt.Sprintf("%s company overview", in.CompanyName),
		fmt.Sprintf("%s %s", in.CompanyName, in.Topic),
		fmt.Sprintf("%s industry trends", in.CompanyName),
		fmt.Sprintf("%s leadership team", in.CompanyName),
		fmt.Sprintf("%s competitors", in.CompanyName),
		fmt.Sprintf("%s recent news", in.CompanyName),
	}
	for _, s := range in.Stakeholders {
		queries = append(queries, fmt.Sprintf("%s %s linkedin", s.Name, in.CompanyName))
	}

	count, ok := depthQueryCounts[strings.ToLower(in.ResearchDepth)]
	if !ok {
		count = depthQueryCounts["standard"]
	}
	if count > len(queries) {
		count = len(queries)
	}
	return queries[:count]
}

// Framework blurbs injected into the tactics prompt. The framework choice is
// purely a prompt-content switch.
var frameworkGuides = map[string]string{
	"cialdini": "Apply Cialdini's principles of persuasion: reciprocity, commitment and consistency, social proof, authority, liking, and scarcity. Tie each tactic to the principle it uses.",
	"spin":     "Apply the SPIN selling framework: situation, problem, implication, and need-payoff questions. Frame each tactic as a question sequence that surfaces the stakeholder's own motivation.",
	"challenger": "Apply the Challenger approach: teach the stakeholder something new about their business, tailor the message to their role, and take control of the conversation toward the objective.",
}

func frameworkGuide(framework string) string {
	if g, ok := frameworkGuides[strings.ToLower(framework)]; ok {
		return g
	}
	return "Use a pragmatic mix of credibility-building, evidence, and mutual-benefit framing."
}

// campaignBrief renders the shared header every phase prompt starts with.
func campaignBrief(in Inputs) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	if in.CompanyDomain != "" {
		fmt.Fprintf(&b, "Website: %s\n", in.CompanyDomain)
	}
	fmt.Fprintf(&b, "Primary contact: %s", in.ContactName)
	if in.ContactRole != "" {
		fmt.Fprintf(&b, " (%s)", in.ContactRole)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Position being advocated: %s\n", in.Topic)
	if in.Objective != "" {
		fmt.Fprintf(&b, "Desired outcome: %s\n", in.Objective)
	}
	if len(in.Stakeholders) > 0 {
		b.WriteString("Stakeholders to influence:\n")
		for _, s := range in.Stakeholders {
			if s.LinkedIn != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", s.Name, s.LinkedIn)
			} else {
				fmt.Fprintf(&b, "- %s\n", s.Name)
			}
		}
	}
	if in.AdditionalContext != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", in.AdditionalContext)
	}
	return b.String()
}

func landscapePrompt(in Inputs, research string) string {
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	if research != "" {
		b.WriteString("\nBackground research:\n")
		b.WriteString(research)
	}
	b.WriteString("\nWrite a landscape analysis of the company and its decision environment: current priorities, pressures, decision dynamics, and where the advocated position fits. Use clear prose with short sections.")
	return b.String()
}

func personaPrompt(in Inputs, landscape string) string {
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	b.WriteString("\nLandscape analysis:\n")
	b.WriteString(landscape)
	b.WriteString("\n\nProfile the people we need to win over. For the primary contact and each stakeholder, describe their likely priorities, incentives, decision style, and what would move them toward the desired outcome.")
	return b.String()
}

func tacticsPrompt(in Inputs, landscape, persona string) string {
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	b.WriteString("\nLandscape analysis:\n")
	b.WriteString(landscape)
	b.WriteString("\n\nPersona profiles:\n")
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(frameworkGuide(in.Framework))
	b.WriteString("\nProduce a concrete set of influence tactics for this campaign, each with the stakeholder it targets and the first step to take.")
	return b.String()
}

func discussionPrompt(in Inputs, persona, tactics string) string {
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	b.WriteString("\nPersona profiles:\n")
	b.WriteString(persona)
	b.WriteString("\n\nInfluence tactics:\n")
	b.WriteString(tactics)
	b.WriteString("\n\nDraft the key discussion points for upcoming conversations: the arguments to lead with, the evidence to cite, and the questions to ask, ordered by impact.")
	return b.String()
}

func objectionsPrompt(in Inputs, landscape, discussion string) string {
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	b.WriteString("\nLandscape analysis:\n")
	b.WriteString(landscape)
	b.WriteString("\n\nDiscussion points:\n")
	b.WriteString(discussion)
	b.WriteString("\n\nAnticipate the objections each stakeholder is most likely to raise against the advocated position, and for each one write a grounded, non-defensive response.")
	return b.String()
}

// Material kind prompts. Each kind generates independently.
var materialInstructions = map[string]string{
	"email":          "Write a persuasive outreach email to the primary contact advancing the advocated position. Subject line included, under 250 words, no placeholder brackets.",
	"one_pager":      "Write a one-page leave-behind document making the case for the advocated position: headline, three supporting sections, and a closing call to action.",
	"talking_points": "Write a bulleted talking-points card for a live meeting: openers, proof points, and closers, each a single sentence.",
	"faq":            "Write a frequently-asked-questions sheet covering the questions stakeholders will ask about the advocated position, with short direct answers.",
}

func materialPrompt(in Inputs, kind, discussion, objections string) string {
	instruction, ok := materialInstructions[kind]
	if !ok {
		instruction = fmt.Sprintf("Write a %q support document advancing the advocated position.", kind)
	}
	var b strings.Builder
	b.WriteString("You are an influence-campaign strategist.\n\n")
	b.WriteString(campaignBrief(in))
	b.WriteString("\nDiscussion points:\n")
	b.WriteString(discussion)
	b.WriteString("\n\nObjection handling:\n")
	b.WriteString(objections)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	return b.String()
}

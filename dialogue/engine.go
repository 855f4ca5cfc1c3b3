package dialogue

import (
	"math"
	"strings"
	"time"

	"github.com/advokit/advokit/catalog"
)

const cannotGoBack = "We're at the beginning of the conversation — there's nothing to go back to."

// Result is the outcome of one dialogue turn. Step position and collected
// progress are separate metrics on purpose: the loop makes step counts
// open-ended, while the percentage tracks a fixed set of substantive fields.
type Result struct {
	Message            string `json:"message"`
	State              *State `json:"state"`
	ProgressPercentage int    `json:"progressPercentage"`
	CurrentStepNumber  int    `json:"currentStepNumber"`
	TotalSteps         int    `json:"totalSteps"`
	Complete           bool   `json:"complete"`
	CanGoBack          bool   `json:"canGoBack"`
}

// Engine is the stateless transition function over a step catalog. It holds
// no per-conversation data; the clock is injectable so transitions are pure
// in tests.
type Engine struct {
	cat *catalog.Catalog
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over the given catalog.
func NewEngine(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{cat: cat, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Transition applies one user turn to the state and returns the next prompt.
// A nil state starts a fresh conversation at the catalog's first step. The
// passed state is mutated in place and returned inside the Result.
func (e *Engine) Transition(st *State, input string) Result {
	if st == nil {
		st = NewState(e.cat.First().ID)
	}
	step, ok := e.cat.Lookup(st.CurrentStepID)
	if !ok {
		// Caller tampering or a stale client: restart at the first step.
		st.restore(NewState(e.cat.First().ID).snapshot())
		step = e.cat.First()
	}

	trimmed := strings.TrimSpace(input)
	if trimmed != "" {
		st.appendMessage("user", trimmed, e.now())
	}

	var reply string
	switch {
	case isGoBack(trimmed):
		reply = e.goBack(st)
	case trimmed == "" || e.cat.IsTerminal(step.ID):
		// No value provided, or the conversation already finished: re-present
		// the current step without recording or advancing.
		reply = step.Prompt
	case step.LoopRole == catalog.LoopEntry:
		reply = e.loopEntry(st, trimmed)
	case step.LoopRole == catalog.LoopContinuation:
		reply = e.loopContinuation(st, trimmed)
	case step.LoopRole == catalog.LoopStep:
		reply = e.loopStep(st, step, trimmed)
	default:
		reply = e.ordinaryStep(st, step, trimmed)
	}

	st.appendMessage("assistant", reply, e.now())
	return e.result(st, reply)
}

// goBack pops the most recent snapshot and clears the restored step's stored
// answer so it can be re-entered. An undo turn never pushes history.
func (e *Engine) goBack(st *State) string {
	if len(st.History) == 0 {
		return cannotGoBack
	}
	snap := st.History[len(st.History)-1]
	st.History = st.History[:len(st.History)-1]
	st.restore(snap)

	restored, ok := e.cat.Lookup(st.CurrentStepID)
	if !ok {
		return e.cat.First().Prompt
	}
	if restored.TargetField != "" {
		switch restored.LoopRole {
		case catalog.LoopStep:
			// Loop answers live on the draft, keyed by field role.
			if restored.TargetField == "name" {
				st.Draft.Name = ""
			} else {
				st.Draft.LinkedIn = ""
			}
		default:
			delete(st.Collected, restored.TargetField)
		}
	}
	return restored.Prompt
}

// loopEntry decides whether the stakeholder loop runs at all. A positive
// response enters the first loop step; anything else routes past the loop
// block to the step that follows it in catalog order.
func (e *Engine) loopEntry(st *State, input string) string {
	st.push()
	if isAffirmative(input) {
		st.InLoop = true
		st.Draft = Stakeholder{}
		st.CurrentStepID = e.cat.LoopFirst().ID
	} else {
		// Declining resolves the stakeholder question with an empty list.
		st.InLoop = false
		st.Collected[catalog.FieldStakeholders] = cloneStakeholders(st.Stakeholders)
		st.CurrentStepID = e.cat.AfterLoop().ID
	}
	return e.currentPrompt(st)
}

// loopContinuation finalizes the draft stakeholder, then either starts
// another iteration or exits the loop, freezing the stakeholder list into the
// collected fields.
func (e *Engine) loopContinuation(st *State, input string) string {
	st.push()
	if st.Draft.Name != "" {
		st.Stakeholders = append(st.Stakeholders, st.Draft)
		st.Draft = Stakeholder{}
	}
	if isAffirmative(input) {
		st.CurrentStepID = e.cat.LoopFirst().ID
	} else {
		st.InLoop = false
		st.Collected[catalog.FieldStakeholders] = cloneStakeholders(st.Stakeholders)
		st.CurrentStepID = e.cat.AfterLoop().ID
	}
	return e.currentPrompt(st)
}

// loopStep records one draft field (name or link) and advances through the
// fixed three-step iteration sequence.
func (e *Engine) loopStep(st *State, step catalog.Step, input string) string {
	st.push()
	if step.TargetField == "name" {
		st.Draft.Name = input
	} else {
		if isNegative(input) {
			st.Draft.LinkedIn = ""
		} else {
			st.Draft.LinkedIn = input
		}
	}
	st.CurrentStepID = e.cat.Next(step.ID).ID
	return e.currentPrompt(st)
}

// ordinaryStep handles fixed-position steps: optional skip, multi-select
// parsing, option matching, and plain text capture.
func (e *Engine) ordinaryStep(st *State, step catalog.Step, input string) string {
	if !step.Required && isNegative(input) {
		st.push()
		st.CurrentStepID = e.cat.Next(step.ID).ID
		return e.currentPrompt(st)
	}

	if step.MultiSelect {
		items := parseMultiSelect(input, step.Options)
		if len(items) == 0 {
			// Nothing usable parsed: keep any earlier answer intact and
			// re-present instead of advancing.
			return "I couldn't match any of those. " + step.Prompt
		}
		st.push()
		st.Collected[step.TargetField] = items
		st.CurrentStepID = e.cat.Next(step.ID).ID
		return e.currentPrompt(st)
	}

	st.push()
	st.Collected[step.TargetField] = matchOption(input, step.Options)
	st.CurrentStepID = e.cat.Next(step.ID).ID
	return e.currentPrompt(st)
}

func (e *Engine) currentPrompt(st *State) string {
	step, ok := e.cat.Lookup(st.CurrentStepID)
	if !ok {
		return e.cat.First().Prompt
	}
	return step.Prompt
}

func (e *Engine) result(st *State, reply string) Result {
	completed := len(st.Stakeholders)
	return Result{
		Message:            reply,
		State:              st,
		ProgressPercentage: e.progress(st),
		CurrentStepNumber:  e.cat.StepNumber(st.CurrentStepID, completed),
		TotalSteps:         e.cat.TotalSteps(completed, st.InLoop),
		Complete:           e.cat.IsTerminal(st.CurrentStepID),
		CanGoBack:          len(st.History) > 0,
	}
}

// progress is the fraction of substantive fields collected so far, rounded
// to a whole percentage. Deliberately independent of step position.
func (e *Engine) progress(st *State) int {
	fields := e.cat.SubstantiveFields()
	if len(fields) == 0 {
		return 0
	}
	collected := 0
	for _, f := range fields {
		if _, ok := st.Collected[f]; ok {
			collected++
		}
	}
	return int(math.Round(100 * float64(collected) / float64(len(fields))))
}

// push records the pre-transition state. Called at the top of every advancing
// branch and never on undo or re-present turns.
func (s *State) push() {
	s.History = append(s.History, s.snapshot())
}

// matchOption canonicalizes input against a step's option set, falling back
// to the trimmed raw value when nothing matches.
func matchOption(input string, options []string) string {
	if len(options) == 0 {
		return input
	}
	norm := normalizeItem(input)
	for _, opt := range options {
		if normalizeItem(opt) == norm {
			return opt
		}
	}
	return input
}

// parseMultiSelect splits bullet/newline/comma-delimited input into values.
// When the step declares an option set, only recognizable options survive;
// an empty result signals malformed input to the caller.
func parseMultiSelect(input string, options []string) []string {
	var items []string
	seen := map[string]bool{}
	for _, line := range strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == ','
	}) {
		item := strings.TrimSpace(line)
		item = strings.TrimLeft(item, "-*•")
		item = strings.TrimSpace(strings.TrimLeft(item, "0123456789."))
		if item == "" {
			continue
		}
		if len(options) > 0 {
			matched := ""
			norm := normalizeItem(item)
			for _, opt := range options {
				if normalizeItem(opt) == norm {
					matched = opt
					break
				}
			}
			if matched == "" {
				continue
			}
			item = matched
		}
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	return items
}

func normalizeItem(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

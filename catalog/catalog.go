package catalog

// LoopRole classifies a step's role in the repeatable stakeholder block.
type LoopRole int

const (
	// LoopNone marks an ordinary fixed-position step.
	LoopNone LoopRole = iota
	// LoopEntry marks the yes/no gate that decides whether the loop runs.
	LoopEntry
	// LoopStep marks a step inside one loop iteration.
	LoopStep
	// LoopContinuation marks the yes/no gate that decides another iteration.
	LoopContinuation
)

// Step is a single node in the dialogue graph. Steps are defined at startup
// and never mutated afterwards.
type Step struct {
	ID          string
	Prompt      string
	TargetField string // empty for decision-only and terminal steps
	Required    bool
	Options     []string // ordered choices, nil for free-text steps
	MultiSelect bool
	LoopRole    LoopRole
}

// Catalog is an immutable ordered list of steps with precomputed lookup
// tables. Construct via New; the zero value is not usable.
type Catalog struct {
	steps       []Step
	index       map[string]int
	loopFirst   int // index of the first LoopStep, -1 if no loop
	loopAfter   int // index of the step following the loop block
	substantive []string
}

// New builds a catalog from an ordered step list. The substantive field names
// drive the collected-progress percentage, which is intentionally a separate
// metric from step position (the loop is open-ended).
func New(steps []Step, substantiveFields []string) *Catalog {
	c := &Catalog{
		steps:       steps,
		index:       make(map[string]int, len(steps)),
		loopFirst:   -1,
		loopAfter:   -1,
		substantive: substantiveFields,
	}
	for i, s := range steps {
		c.index[s.ID] = i
		if s.LoopRole == LoopStep && c.loopFirst == -1 {
			c.loopFirst = i
		}
		if s.LoopRole == LoopContinuation {
			c.loopAfter = i + 1
		}
	}
	return c
}

// Lookup returns the step with the given id.
func (c *Catalog) Lookup(id string) (Step, bool) {
	i, ok := c.index[id]
	if !ok {
		return Step{}, false
	}
	return c.steps[i], true
}

// First returns the catalog's first step.
func (c *Catalog) First() Step { return c.steps[0] }

// Terminal returns the catalog's last step, reached only by normal
// advancement. It has no target field and is never a loop branch target.
func (c *Catalog) Terminal() Step { return c.steps[len(c.steps)-1] }

// IsTerminal reports whether id names the terminal step.
func (c *Catalog) IsTerminal(id string) bool { return id == c.Terminal().ID }

// Next returns the step following id in catalog order. The terminal step is
// its own successor.
func (c *Catalog) Next(id string) Step {
	i := c.index[id]
	if i+1 >= len(c.steps) {
		return c.steps[len(c.steps)-1]
	}
	return c.steps[i+1]
}

// LoopFirst returns the first step of a loop iteration.
func (c *Catalog) LoopFirst() Step { return c.steps[c.loopFirst] }

// AfterLoop returns the step immediately following the loop block, defined by
// catalog order rather than index arithmetic at call sites.
func (c *Catalog) AfterLoop() Step { return c.steps[c.loopAfter] }

// FixedStepCount returns the number of fixed-position steps outside the loop
// block (the loop entry counts as fixed; the per-iteration steps do not).
func (c *Catalog) FixedStepCount() int {
	n := 0
	for _, s := range c.steps {
		if s.LoopRole == LoopNone || s.LoopRole == LoopEntry {
			n++
		}
	}
	return n
}

// LoopLen returns the number of steps contributed by one loop iteration.
func (c *Catalog) LoopLen() int {
	n := 0
	for _, s := range c.steps {
		if s.LoopRole == LoopStep || s.LoopRole == LoopContinuation {
			n++
		}
	}
	return n
}

// TotalSteps projects the dialogue length for the given stakeholder count:
// the fixed steps plus one loop block per completed stakeholder, plus one
// more block while an iteration is still open.
func (c *Catalog) TotalSteps(completedStakeholders int, inLoop bool) int {
	total := c.FixedStepCount() + c.LoopLen()*completedStakeholders
	if inLoop {
		total += c.LoopLen()
	}
	return total
}

// StepNumber maps a step id to its 1-based display position given how many
// stakeholders have been completed so far. Loop steps shift by one full block
// per completed stakeholder; fixed steps after the loop shift the same way.
func (c *Catalog) StepNumber(id string, completedStakeholders int) int {
	i, ok := c.index[id]
	if !ok {
		return 1
	}
	offset := c.LoopLen() * completedStakeholders
	switch {
	case c.loopFirst == -1 || i < c.loopFirst:
		return i + 1
	case i < c.loopAfter: // inside the loop block
		return i + 1 + offset
	default: // fixed step after the loop: loop block positions collapse
		return i + 1 - c.LoopLen() + offset
	}
}

// SubstantiveFields returns the field names counted by the collected-progress
// percentage metric.
func (c *Catalog) SubstantiveFields() []string { return c.substantive }

// Len returns the number of step definitions.
func (c *Catalog) Len() int { return len(c.steps) }

// Steps returns the ordered step definitions. Callers must not mutate the
// returned slice.
func (c *Catalog) Steps() []Step { return c.steps }

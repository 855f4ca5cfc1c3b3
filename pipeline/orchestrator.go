package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/advokit/advokit/logging"
	"github.com/advokit/advokit/model"
	"github.com/advokit/advokit/progress"
	"github.com/advokit/advokit/retry"
	"github.com/advokit/advokit/search"
)

// phase pairs a human stage label with a duration estimate for the progress
// store's time model.
type phase struct {
	label    string
	estimate float64
}

// Research estimates per depth; more queries, more wall time.
var researchEstimates = map[string]float64{
	"quick":    10,
	"standard": 20,
	"deep":     35,
}

// Orchestrator runs campaign generation jobs detached from the request that
// started them, writing every phase boundary into the progress store.
type Orchestrator struct {
	gen      model.Generator
	searcher search.Searcher
	store    *progress.Store
	logger   logging.Logger
	retryCfg retry.Config
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRetry overrides the retry policy for generation calls.
func WithRetry(cfg retry.Config) Option {
	return func(o *Orchestrator) { o.retryCfg = cfg }
}

// New creates an orchestrator over the given collaborators and store. The
// searcher may be nil when every caller pre-supplies research data.
func New(gen model.Generator, searcher search.Searcher, store *progress.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:      gen,
		searcher: searcher,
		store:    store,
		logger:   logging.NoOpLogger{},
		retryCfg: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start allocates a job, installs its phase plan, and launches the run
// detached. The returned job id is available immediately; the caller observes
// the rest through the progress store. There is no way to cancel the run from
// the client side - closing a stream only stops observation.
func (o *Orchestrator) Start(inputs Inputs) string {
	jobID := o.store.Create()
	o.store.InitPhases(jobID, phaseSpecs(inputs))
	go o.Run(context.Background(), jobID, inputs)
	return jobID
}

// Run executes all phases in order for an already-created job. Exported so
// embedders and tests can run synchronously; Start is the detached entry
// point.
func (o *Orchestrator) Run(ctx context.Context, jobID string, inputs Inputs) {
	log := logging.With(o.logger, "job_id", jobID, "company", inputs.CompanyName)
	phases := phasePlan(inputs)
	total := len(phases)

	advance := func(idx int) {
		o.store.Advance(jobID, idx, phases[idx-1].label, (idx-1)*100/total)
	}
	fail := func(idx int, err error) {
		log.Error("pipeline phase failed", "phase", phases[idx-1].label, "error", err)
		o.store.Fail(jobID, fmt.Sprintf("%s: %v", phases[idx-1].label, err))
	}

	res := &Result{}

	advance(1)
	res.Research = o.research(ctx, log, inputs)

	advance(2)
	landscape, err := o.generate(ctx, landscapePrompt(inputs, res.Research), budgetFor(inputs.DetailLevel))
	if err != nil {
		fail(2, err)
		return
	}
	res.Landscape = landscape

	advance(3)
	persona, err := o.generate(ctx, personaPrompt(inputs, landscape), budgetFor(inputs.DetailLevel))
	if err != nil {
		fail(3, err)
		return
	}
	res.Persona = persona

	advance(4)
	tactics, err := o.generate(ctx, tacticsPrompt(inputs, landscape, persona), budgetFor(inputs.DetailLevel))
	if err != nil {
		fail(4, err)
		return
	}
	res.Tactics = tactics

	advance(5)
	discussion, err := o.generate(ctx, discussionPrompt(inputs, persona, tactics), budgetFor(inputs.DetailLevel))
	if err != nil {
		fail(5, err)
		return
	}
	res.DiscussionPoints = discussion

	advance(6)
	objections, err := o.generate(ctx, objectionsPrompt(inputs, landscape, discussion), budgetFor(inputs.DetailLevel))
	if err != nil {
		fail(6, err)
		return
	}
	res.ObjectionHandling = objections

	if len(inputs.Materials) > 0 {
		advance(7)
		res.Materials, res.MaterialErrors = o.materials(ctx, log, inputs, discussion, objections)
	}

	o.store.Complete(jobID, res)
	log.Info("pipeline completed", "phases", total, "materials", len(res.Materials))
}

// research gathers background snippets, preferring caller-supplied data.
// Individual query failures are skipped; an empty result is not an error.
func (o *Orchestrator) research(ctx context.Context, log logging.Logger, in Inputs) string {
	if in.ResearchData != "" {
		return in.ResearchData
	}
	if o.searcher == nil {
		return ""
	}

	var b strings.Builder
	for _, query := range researchQueries(in) {
		results, err := o.searcher.Search(ctx, query)
		if err != nil {
			log.Warn("search query failed, skipping", "query", query, "error", err)
			continue
		}
		for _, r := range results {
			if r.Title != "" {
				fmt.Fprintf(&b, "%s\n", r.Title)
			}
			if r.Snippet != "" {
				fmt.Fprintf(&b, "%s\n", r.Snippet)
			}
			if r.URL != "" {
				fmt.Fprintf(&b, "Source: %s\n", r.URL)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// materials generates each requested kind independently; a failure in one
// kind is recorded and never blocks the others.
func (o *Orchestrator) materials(ctx context.Context, log logging.Logger, in Inputs, discussion, objections string) (map[string]string, map[string]string) {
	outputs := make(map[string]string, len(in.Materials))
	var failures map[string]string
	for _, kind := range in.Materials {
		text, err := o.generate(ctx, materialPrompt(in, kind, discussion, objections), budgetFor(in.DetailLevel))
		if err != nil {
			log.Warn("material generation failed", "kind", kind, "error", err)
			if failures == nil {
				failures = map[string]string{}
			}
			failures[kind] = err.Error()
			continue
		}
		outputs[kind] = text
	}
	return outputs, failures
}

// generate wraps the collaborator call with the retry policy.
func (o *Orchestrator) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return retry.Do(ctx, o.retryCfg, func() (string, error) {
		return o.gen.Generate(ctx, prompt, maxTokens)
	})
}

// phasePlan returns the ordered phases for the given inputs. The optional
// materials phase exists only when the caller asked for material kinds.
func phasePlan(in Inputs) []phase {
	depthEst, ok := researchEstimates[strings.ToLower(in.ResearchDepth)]
	if !ok {
		depthEst = researchEstimates["standard"]
	}
	if in.ResearchData != "" {
		depthEst = 1 // supplied data makes the phase near-instant
	}

	phases := []phase{
		{label: "Researching background", estimate: depthEst},
		{label: "Analyzing the landscape", estimate: 25},
		{label: "Profiling stakeholders", estimate: 30},
		{label: "Designing influence tactics", estimate: 25},
		{label: "Drafting discussion points", estimate: 20},
		{label: "Preparing objection handling", estimate: 20},
	}
	if len(in.Materials) > 0 {
		phases = append(phases, phase{
			label:    "Generating materials",
			estimate: 15 * float64(len(in.Materials)),
		})
	}
	return phases
}

// phaseSpecs converts the plan into progress store phase specs.
func phaseSpecs(in Inputs) []progress.PhaseSpec {
	plan := phasePlan(in)
	specs := make([]progress.PhaseSpec, len(plan))
	for i, p := range plan {
		specs[i] = progress.PhaseSpec{Name: p.label, EstimateSeconds: p.estimate}
	}
	return specs
}

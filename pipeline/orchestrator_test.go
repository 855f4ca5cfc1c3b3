package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/advokit/advokit/dialogue"
	"github.com/advokit/advokit/internal/testutil"
	"github.com/advokit/advokit/model"
	"github.com/advokit/advokit/progress"
	"github.com/advokit/advokit/retry"
	"github.com/advokit/advokit/search"
)

// funcGenerator routes Generate through a test function, for per-prompt
// failure injection.
type funcGenerator struct {
	fn func(prompt string, maxTokens int) (string, error)
}

func (f *funcGenerator) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	return f.fn(prompt, maxTokens)
}

func (f *funcGenerator) Info() model.Info {
	return model.Info{Name: "func", Provider: "mock"}
}

// MockSearcher is a testify mock of the search collaborator.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Result), args.Error(1)
}

func baseInputs() Inputs {
	return Inputs{
		CompanyName:   "Acme Corp",
		ContactName:   "Pat Smith",
		ContactRole:   "VP Engineering",
		Topic:         "adopt our platform",
		Objective:     "signed contract",
		ResearchDepth: "standard",
		DetailLevel:   "standard",
		Framework:     "cialdini",
		ResearchData:  "Acme is a mid-size manufacturer expanding into robotics.",
	}
}

func newTestOrchestrator(gen model.Generator, searcher search.Searcher) (*Orchestrator, *progress.Store) {
	store := progress.NewStore()
	o := New(gen, searcher, store, WithRetry(retry.Disabled()))
	return o, store
}

func TestRun_CompletesWithResult(t *testing.T) {
	gen := &model.MockGenerator{Default: "generated text"}
	o, store := newTestOrchestrator(gen, nil)

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(baseInputs()))
	o.Run(context.Background(), jobID, baseInputs())

	rec, ok := store.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, progress.StatusCompleted, rec.Status)
	assert.Equal(t, 100, rec.Percentage)

	res, ok := rec.Result.(*Result)
	require.True(t, ok)
	assert.Equal(t, "Acme is a mid-size manufacturer expanding into robotics.", res.Research,
		"supplied research data used verbatim")
	assert.Equal(t, "generated text", res.Landscape)
	assert.Equal(t, "generated text", res.ObjectionHandling)
	assert.Empty(t, res.Materials)
}

func TestRun_PhasesAdvanceInOrder(t *testing.T) {
	gen := &model.MockGenerator{Default: "out"}
	store := progress.NewStore()
	o := New(gen, nil, store, WithRetry(retry.Disabled()))

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(baseInputs()))
	o.Run(context.Background(), jobID, baseInputs())

	// Every phase was started, in order, exactly once.
	rec, _ := store.Get(jobID)
	require.Len(t, rec.PhaseTimings, 6)
	for i, pt := range rec.PhaseTimings {
		require.NotNilf(t, pt.StartTime, "phase %d started", i+1)
		if i > 0 {
			prev := rec.PhaseTimings[i-1].StartTime
			assert.False(t, pt.StartTime.Before(*prev), "phase %d started after phase %d", i+1, i)
		}
	}
}

func TestRun_PhaseFailureAbortsAndFails(t *testing.T) {
	boom := errors.New("model unavailable")
	calls := 0
	gen := &funcGenerator{fn: func(prompt string, _ int) (string, error) {
		calls++
		if strings.Contains(prompt, "Profile the people") {
			return "", boom
		}
		return "out", nil
	}}
	o, store := newTestOrchestrator(gen, nil)

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(baseInputs()))
	o.Run(context.Background(), jobID, baseInputs())

	rec, ok := store.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, progress.StatusError, rec.Status)
	assert.Contains(t, rec.Error, "Profiling stakeholders")
	assert.Contains(t, rec.Error, "model unavailable")
	assert.Nil(t, rec.Result)
	assert.Equal(t, 2, calls, "remaining phases aborted after the failure")
}

func TestRun_MaterialFailuresDoNotBlockOthers(t *testing.T) {
	gen := &funcGenerator{fn: func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "frequently-asked-questions") {
			return "", errors.New("faq generation failed")
		}
		return "out", nil
	}}
	o, store := newTestOrchestrator(gen, nil)

	in := baseInputs()
	in.Materials = []string{"email", "faq", "talking_points"}

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(in))
	o.Run(context.Background(), jobID, in)

	rec, _ := store.Get(jobID)
	require.Equal(t, progress.StatusCompleted, rec.Status, "job completes despite one failed kind")

	res := rec.Result.(*Result)
	assert.Len(t, res.Materials, 2)
	assert.Contains(t, res.Materials, "email")
	assert.Contains(t, res.Materials, "talking_points")
	assert.Equal(t, "faq generation failed", res.MaterialErrors["faq"])
}

func TestRun_ResearchQueriesSearcher(t *testing.T) {
	gen := &model.MockGenerator{Default: "out"}
	searcher := &MockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything).Return([]search.Result{
		{Title: "Acme", URL: "https://acme.example", Snippet: "Acme builds rockets."},
	}, nil)

	o, store := newTestOrchestrator(gen, searcher)

	in := baseInputs()
	in.ResearchData = "" // force the search path

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(in))
	o.Run(context.Background(), jobID, in)

	// standard depth runs four queries
	searcher.AssertNumberOfCalls(t, "Search", 4)

	rec, _ := store.Get(jobID)
	res := rec.Result.(*Result)
	assert.Contains(t, res.Research, "Acme builds rockets.")
	assert.Contains(t, res.Research, "Source: https://acme.example")
}

func TestRun_SearchFailuresAreSkipped(t *testing.T) {
	gen := &model.MockGenerator{Default: "out"}
	searcher := &MockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	o, store := newTestOrchestrator(gen, searcher)

	in := baseInputs()
	in.ResearchData = ""

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(in))
	o.Run(context.Background(), jobID, in)

	rec, _ := store.Get(jobID)
	assert.Equal(t, progress.StatusCompleted, rec.Status,
		"research failures never abort the pipeline")
	res := rec.Result.(*Result)
	assert.Empty(t, res.Research)
}

func TestStart_ReturnsImmediately(t *testing.T) {
	block := make(chan struct{})
	gen := &funcGenerator{fn: func(string, int) (string, error) {
		<-block
		return "out", nil
	}}
	o, store := newTestOrchestrator(gen, nil)

	done := make(chan string, 1)
	go func() { done <- o.Start(baseInputs()) }()

	select {
	case jobID := <-done:
		assert.True(t, store.Exists(jobID), "record tracked before the pipeline finishes")
		rec, _ := store.Get(jobID)
		assert.Equal(t, progress.StatusInProgress, rec.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on the pipeline run")
	}
	close(block)
}

func TestResearchQueries_DepthScalesCount(t *testing.T) {
	in := baseInputs()
	in.Stakeholders = []dialogue.Stakeholder{{Name: "Jane"}, {Name: "Robin"}}

	for depth, want := range map[string]int{"quick": 2, "standard": 4, "deep": 6} {
		in.ResearchDepth = depth
		assert.Lenf(t, researchQueries(in), want, "depth %s", depth)
	}

	in.ResearchDepth = "unheard-of"
	assert.Len(t, researchQueries(in), 4, "unknown depth falls back to standard")
}

func TestPhasePlan_MaterialsOptional(t *testing.T) {
	in := baseInputs()
	assert.Len(t, phasePlan(in), 6)

	in.Materials = []string{"email"}
	plan := phasePlan(in)
	require.Len(t, plan, 7)
	assert.Equal(t, "Generating materials", plan[6].label)
}

func TestBudgetFor_DetailLevels(t *testing.T) {
	assert.Less(t, budgetFor("brief"), budgetFor("standard"))
	assert.Less(t, budgetFor("standard"), budgetFor("comprehensive"))
	assert.Equal(t, defaultBudget, budgetFor("unknown"))
}

func TestFromState_ExtractsInputs(t *testing.T) {
	st := testutil.NewStateBuilder("done").
		Collect("company_name", "Acme Corp").
		Collect("topic", "adopt our platform").
		Collect("materials", []string{"email", "faq"}).
		Stakeholder("Jane", "").
		Build()

	in := FromState(st)

	assert.Equal(t, "Acme Corp", in.CompanyName)
	assert.Equal(t, "adopt our platform", in.Topic)
	assert.Equal(t, []string{"email", "faq"}, in.Materials)
	require.Len(t, in.Stakeholders, 1)
	require.NoError(t, in.Validate())

	in.CompanyName = ""
	assert.Error(t, in.Validate())
}

func TestRun_PercentagesNonDecreasing(t *testing.T) {
	gen := &model.MockGenerator{Default: "out"}
	store := progress.NewStore()
	o := New(gen, nil, store, WithRetry(retry.Disabled()))

	in := baseInputs()
	in.Materials = []string{"email"}

	jobID := store.Create()
	store.InitPhases(jobID, phaseSpecs(in))

	// Sample the record concurrently while the pipeline runs.
	var samples []int
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				if rec, ok := store.Get(jobID); ok {
					samples = append(samples, rec.Percentage)
				}
			}
		}
	}()

	o.Run(context.Background(), jobID, in)
	close(stop)
	<-done

	rec, _ := store.Get(jobID)
	require.Equal(t, progress.StatusCompleted, rec.Status)
	last := -1
	for i, p := range samples {
		require.GreaterOrEqualf(t, p, last, "sample %d (%v)", i, samples)
		last = p
	}
}

// Package advokit provides a high-level façade over the intake dialogue
// engine, the campaign generation pipeline and the progress store. Most
// applications interact with this package by:
//  1. Creating an Advokit via New() with a content generator (and optionally
//     overriding the searcher, catalog or progress store)
//  2. Driving intake turns with Dialogue, or serving everything over HTTP
//     via Handler()
//  3. Launching generation jobs with StartCampaign and observing them
//     through the progress store
//
// The façade delegates conversation semantics to dialogue.Engine and job
// execution to pipeline.Orchestrator. All defaults are safe for local
// development and testing; production deployments typically supply a real
// model client, a web searcher and a structured logger.
package advokit

import (
	"context"
	"net/http"
	"time"

	"github.com/advokit/advokit/catalog"
	"github.com/advokit/advokit/dialogue"
	"github.com/advokit/advokit/logging"
	"github.com/advokit/advokit/model"
	"github.com/advokit/advokit/pipeline"
	"github.com/advokit/advokit/progress"
	"github.com/advokit/advokit/retry"
	"github.com/advokit/advokit/search"
	"github.com/advokit/advokit/server"
)

// Options configures the Advokit instance.
type Options struct {
	// Catalog is the intake step flow. Defaults to the built-in campaign
	// intake catalog.
	Catalog *catalog.Catalog

	// Searcher backs the research phase. Defaults to DuckDuckGo.
	Searcher search.Searcher

	// Store holds job progress. Defaults to an in-memory store with the
	// standard TTL; callers that want expiry must run its sweeper via
	// Store().Run.
	Store *progress.Store

	// Retry is the retry policy around generation calls.
	Retry retry.Config

	// StreamInterval is the SSE push cadence of the HTTP gateway.
	StreamInterval time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Advokit is the high-level façade aggregating the dialogue engine, the
// pipeline orchestrator and the HTTP gateway.
type Advokit struct {
	opts   Options
	engine *dialogue.Engine
	orch   *pipeline.Orchestrator
	server *server.Server
}

// New creates a new Advokit instance with optional overrides. Any unset
// collaborator is initialized with a sensible default.
func New(gen model.Generator, optFns ...func(o *Options)) *Advokit {
	opts := Options{
		Catalog:        catalog.Default(),
		Store:          progress.NewStore(),
		Retry:          retry.DefaultConfig(),
		StreamInterval: server.DefaultStreamInterval,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Searcher == nil {
		if ddg, err := search.NewDuckDuckGo(0); err == nil {
			opts.Searcher = ddg
		} else {
			opts.Searcher = search.Func(func(ctx context.Context, query string) ([]search.Result, error) {
				return nil, err
			})
		}
	}

	engine := dialogue.NewEngine(opts.Catalog)
	orch := pipeline.New(gen, opts.Searcher, opts.Store,
		pipeline.WithLogger(opts.Logger),
		pipeline.WithRetry(opts.Retry),
	)
	srv := server.New(engine, orch, opts.Store,
		server.WithLogger(opts.Logger),
		server.WithStreamInterval(opts.StreamInterval),
	)

	return &Advokit{opts: opts, engine: engine, orch: orch, server: srv}
}

// Dialogue applies one conversational turn. A nil state starts a fresh
// intake conversation.
func (a *Advokit) Dialogue(state *dialogue.State, input string) dialogue.Result {
	return a.engine.Transition(state, input)
}

// StartCampaign launches a generation job and returns its id immediately.
func (a *Advokit) StartCampaign(inputs pipeline.Inputs) string {
	return a.orch.Start(inputs)
}

// Progress returns the current snapshot for a job.
func (a *Advokit) Progress(jobID string) (*progress.Record, bool) {
	return a.opts.Store.Get(jobID)
}

// Store exposes the underlying progress store.
func (a *Advokit) Store() *progress.Store {
	return a.opts.Store
}

// Handler returns the HTTP gateway serving the dialogue and campaign routes.
func (a *Advokit) Handler() http.Handler {
	return a.server
}

// ListenAndServe runs the HTTP gateway on addr.
func (a *Advokit) ListenAndServe(addr string) error {
	return a.server.ListenAndServe(addr)
}

package coach

import (
	"time"

	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
)

type ToolsetParams struct {
	Retriever  retriever
	Workouts   workoutsRepo
	Biometrics biometricsRepo
	Plans      plansRepo
	Benchmarks benchmarksRepo
	Athletes   athletesRepo
	Races      racesRepo
	Library    libraryRepo
	Scorer     readinessScorer
	Metrics    *metrics.Manager
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Toolset holds the shared data sources and binds them to one athlete per session.
type Toolset struct {
	params  ToolsetParams
	modules []Module
}

func NewToolset(p ToolsetParams) *Toolset {
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Toolset{
		params: p,
		modules: []Module{
			NewKnowledgeTools(p.Retriever),
			NewWorkoutTools(p.Workouts, p.Biometrics, p.Now),
			NewPlanTools(p.Plans, p.Now),
			NewAthleteTools(AthleteToolsParams{
				Athletes:   p.Athletes,
				Benchmarks: p.Benchmarks,
				Workouts:   p.Workouts,
				Plans:      p.Plans,
				Scorer:     p.Scorer,
				Now:        p.Now,
			}),
			NewRaceTools(p.Races),
			NewReferenceTools(p.Library, p.Athletes),
		},
	}
}

// Bind returns the registry scoped to binding.
func (t *Toolset) Bind(binding Binding) (*Registry, error) {
	return NewRegistry(binding, t.params.Metrics, t.modules...)
}

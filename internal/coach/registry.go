package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Binding is the identity every tool call is scoped to. Athlete data is selected by
// AthleteID, biometrics by UserID. Tool inputs never carry either.
type Binding struct {
	AthleteID uuid.UUID `json:"athlete_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// Tool is a named operation the model may invoke.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Mutation    bool   `json:"mutation"`
	Schema      Schema `json:"schema"`

	call func(ctx context.Context, c Call, raw json.RawMessage) (Result, error)
}

// NewTool builds a tool whose schema and validation both come from In.
func NewTool[In any](name, description string, run func(ctx context.Context, c Call, in In) Result) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Schema:      schemaFor(reflect.TypeOf((*In)(nil)).Elem()),
		call: func(ctx context.Context, c Call, raw json.RawMessage) (Result, error) {
			in, err := decodeInput[In](name, raw)
			if err != nil {
				return nil, err
			}
			return run(ctx, c, in), nil
		},
	}
}

// NewMutationTool is NewTool for operations that write.
func NewMutationTool[In any](name, description string, run func(ctx context.Context, c Call, in In) Result) Tool {
	t := NewTool(name, description, run)
	t.Mutation = true
	return t
}

// Module is a group of tools for one concern.
type Module interface {
	Tools() []Tool
}

// Registry is the tool surface bound to one athlete.
type Registry struct {
	binding Binding
	metrics *metrics.Manager
	tools   map[string]Tool
	order   []string
}

func NewRegistry(binding Binding, metricsManager *metrics.Manager, modules ...Module) (*Registry, error) {
	r := &Registry{
		binding: binding,
		metrics: metricsManager,
		tools:   make(map[string]Tool),
	}
	for _, m := range modules {
		for _, t := range m.Tools() {
			if _, exists := r.tools[t.Name]; exists {
				return nil, fmt.Errorf("duplicate tool name: %s", t.Name)
			}
			if t.call == nil {
				return nil, fmt.Errorf("tool %s has no implementation", t.Name)
			}
			r.tools[t.Name] = t
			r.order = append(r.order, t.Name)
		}
	}
	return r, nil
}

func (r *Registry) Binding() Binding {
	return r.binding
}

// Tools lists the tools in registration order.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

func (r *Registry) Tool(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke validates raw against the tool schema and runs the tool. The only errors are
// ErrUnknownTool and *ValidationError; everything that goes wrong while the tool runs is
// reported inside the returned Result.
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) (_ Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coach.invoke")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("tool", name))
	span.SetAttributes(attribute.String("athlete_id", r.binding.AthleteID.String()))

	c := Call{Binding: r.binding, Tool: name}
	t, ok := r.tools[name]
	if !ok {
		r.count(name, metrics.OutcomeUnknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	result, err := r.run(ctx, c, t, raw)
	if r.metrics != nil {
		r.metrics.HistogramToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		c.logger().Debugf("rejected input: %s", verr)
		r.count(name, metrics.OutcomeInvalid)
		return nil, err
	}
	if err != nil {
		// not produced by NewTool, keep the contract anyway
		result = c.ReadFailure("complete "+name, err)
		err = nil
	}

	outcome := outcomeOf(result)
	span.SetAttributes(attribute.String("outcome", outcome))
	c.logger().WithField("outcome", outcome).Debug("tool invoked")
	r.count(name, outcome)

	return result, nil
}

func (r *Registry) run(ctx context.Context, c Call, t Tool, raw json.RawMessage) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger().Errorf("tool panicked: %v\n%s", rec, debug.Stack())
			err = nil
			if t.Mutation {
				result = c.Failure("Something went wrong. Please try again.", nil)
			} else {
				result = Result{
					"error":   true,
					"message": fmt.Sprintf("Unable to complete %s. Please try again.", t.Name),
				}
			}
		}
	}()
	return t.call(ctx, c, raw)
}

func (r *Registry) count(tool, outcome string) {
	if r.metrics == nil {
		return
	}
	r.metrics.CounterToolCalls.WithLabelValues(tool, outcome).Inc()
}

package coach

import (
	"fmt"

	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// Result is the structured object every tool returns to the model. Mutations carry
// "success"; read failures carry "error": true and a message.
type Result map[string]any

// Call identifies one tool invocation: which tool runs and for whom.
type Call struct {
	Binding
	Tool string
}

func (c Call) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"athlete_id": c.AthleteID.String(),
		"tool":       c.Tool,
	})
}

// Success is the mutation result carrying the written entity under key.
func Success(key string, entity any) Result {
	return Result{
		"success": true,
		key:       entity,
	}
}

// Failure is the mutation result for a write that did not happen. err, when set, is
// logged and never shown to the model.
func (c Call) Failure(message string, err error) Result {
	if err != nil {
		c.logger().Errorf("%s: %s", message, err)
	}
	return Result{
		"success": false,
		"error":   message,
	}
}

// ReadFailure converts a data access error of a read into the failure shape.
// action completes the sentence "Unable to ...".
func (c Call) ReadFailure(action string, err error) Result {
	c.logger().Errorf("unable to %s: %s", action, err)
	return Result{
		"error":   true,
		"message": fmt.Sprintf("Unable to %s. Please try again.", action),
	}
}

func outcomeOf(r Result) string {
	if failed, ok := r["error"].(bool); ok && failed {
		return metrics.OutcomeFailed
	}
	if success, ok := r["success"].(bool); ok && !success {
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeOK
}

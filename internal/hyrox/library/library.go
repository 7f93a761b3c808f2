package library

import (
	"strings"

	"github.com/google/uuid"
)

type Exercise struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Instructions string     `json:"instructions,omitempty"`
	MuscleGroups []string   `json:"muscle_groups"`
	Equipment    []string   `json:"equipment"`
	StationID    *uuid.UUID `json:"station_id,omitempty"`
	StationName  *string    `json:"station_name,omitempty"`
}

type Station struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Order           int               `json:"station_order"`
	DistanceOrReps  string            `json:"distance_or_reps"`
	Description     string            `json:"description"`
	Tips            []string          `json:"tips"`
	CommonMistakes  []string          `json:"common_mistakes"`
	DivisionWeights map[string]string `json:"division_weights"`
}

// likePattern turns a user supplied name into a case-insensitive substring pattern,
// escaping LIKE metacharacters.
func likePattern(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(name)) + "%"
}

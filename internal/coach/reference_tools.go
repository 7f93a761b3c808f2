package coach

import (
	"context"

	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
)

type getExerciseDetailsInput struct {
	Name string `json:"name" validate:"required,min=2,max=100" jsonschema:"Exercise name or part of it"`
}

type getStationDetailsInput struct {
	Name string `json:"name" validate:"required,min=2,max=100" jsonschema:"Station name or part of it, e.g. sled push"`
}

type getAchievementsInput struct{}

// ReferenceTools serves the shared exercise and station library plus the achievement catalog.
type ReferenceTools struct {
	library  libraryRepo
	athletes athletesRepo
}

func NewReferenceTools(libraryRepo libraryRepo, athletesRepo athletesRepo) *ReferenceTools {
	return &ReferenceTools{
		library:  libraryRepo,
		athletes: athletesRepo,
	}
}

func (r *ReferenceTools) Tools() []Tool {
	return []Tool{
		NewTool(
			"get_exercise_details",
			"Looks up exercises by name with instructions, muscle groups, equipment and the related station.",
			r.getExerciseDetails,
		),
		NewTool(
			"get_station_details",
			"Looks up a Hyrox station by name with its distance or reps, division weights, tips and common mistakes.",
			r.getStationDetails,
		),
		NewTool(
			"get_achievements",
			"Lists every achievement and whether the athlete has earned it.",
			r.getAchievements,
		),
	}
}

func (r *ReferenceTools) getExerciseDetails(ctx context.Context, c Call, in getExerciseDetailsInput) Result {
	exercises, err := r.library.FindExercises(ctx, in.Name)
	if err != nil {
		return c.ReadFailure("fetch exercise details", err)
	}
	if len(exercises) == 0 {
		return Result{"exercises": []any{}, "message": "No exercise found with that name."}
	}
	return Result{"exercises": exercises}
}

func (r *ReferenceTools) getStationDetails(ctx context.Context, c Call, in getStationDetailsInput) Result {
	stations, err := r.library.FindStations(ctx, in.Name)
	if err != nil {
		return c.ReadFailure("fetch station details", err)
	}
	if len(stations) == 0 {
		return Result{"stations": []any{}, "message": "No station found with that name."}
	}
	return Result{"stations": stations}
}

func (r *ReferenceTools) getAchievements(ctx context.Context, c Call, _ getAchievementsInput) Result {
	achievements, err := r.athletes.Achievements(ctx, c.AthleteID)
	if err != nil {
		return c.ReadFailure("fetch achievements", err)
	}

	earned := 0
	for _, a := range achievements {
		if a.Earned {
			earned++
		}
	}
	if len(achievements) == 0 {
		return Result{
			"achievements": []athletes.Achievement{},
			"earned":       0,
			"message":      "No achievements defined yet.",
		}
	}
	return Result{
		"achievements": achievements,
		"earned":       earned,
		"total":        len(achievements),
	}
}

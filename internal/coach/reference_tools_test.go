package coach_test

import (
	"testing"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
	"github.com/2beens/hyroxcoach/internal/hyrox/library"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExerciseDetails(t *testing.T) {
	h := newHarness(t)
	stationName := "Wall Balls"
	h.library.exercises = []library.Exercise{
		{ID: uuid.New(), Name: "Wall Ball Shot", Category: "station", StationName: &stationName},
		{ID: uuid.New(), Name: "Back Squat", Category: "strength"},
	}

	res := h.invoke(t, "get_exercise_details", map[string]any{"name": "wall ball"})
	exercises := res["exercises"].([]library.Exercise)
	require.Len(t, exercises, 1)
	assert.Equal(t, "Wall Balls", *exercises[0].StationName)

	res = h.invoke(t, "get_exercise_details", map[string]any{"name": "deadlift"})
	assert.Equal(t, "No exercise found with that name.", res["message"])
}

func TestGetStationDetails(t *testing.T) {
	h := newHarness(t)
	h.library.stations = []library.Station{
		{
			ID:              uuid.New(),
			Name:            "Sled Push",
			Order:           2,
			DistanceOrReps:  "50 m",
			Tips:            []string{"Low hips", "Short steps"},
			DivisionWeights: map[string]string{"open_male": "152 kg", "open_female": "102 kg"},
		},
	}

	res := h.invoke(t, "get_station_details", map[string]any{"name": "sled"})
	stations := res["stations"].([]library.Station)
	require.Len(t, stations, 1)
	assert.Equal(t, "152 kg", stations[0].DivisionWeights["open_male"])

	h.library.err = errStoreDown
	res = h.invoke(t, "get_station_details", map[string]any{"name": "sled"})
	assert.Equal(t, "Unable to fetch station details. Please try again.", res["message"])
}

func TestGetAchievements(t *testing.T) {
	h := newHarness(t)
	earnedAt := time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC)
	h.athletes.achievements = []athletes.Achievement{
		{ID: uuid.New(), Code: "first_workout", Name: "First Workout", Earned: true, EarnedAt: &earnedAt},
		{ID: uuid.New(), Code: "first_pr", Name: "First PR"},
		{ID: uuid.New(), Code: "first_race", Name: "First Race"},
	}

	res := h.invoke(t, "get_achievements", map[string]any{})
	assert.Len(t, res["achievements"], 3)
	assert.Equal(t, 1, res["earned"])
	assert.Equal(t, 3, res["total"])
}

func TestGetAchievements_Empty(t *testing.T) {
	h := newHarness(t)
	res := h.invoke(t, "get_achievements", map[string]any{})
	assert.Equal(t, "No achievements defined yet.", res["message"])
}

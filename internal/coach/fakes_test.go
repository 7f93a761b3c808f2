package coach_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
	"github.com/2beens/hyroxcoach/internal/hyrox/benchmarks"
	"github.com/2beens/hyroxcoach/internal/hyrox/biometrics"
	"github.com/2beens/hyroxcoach/internal/hyrox/library"
	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/races"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/knowledge"
	"github.com/2beens/hyroxcoach/internal/readiness"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

// fixed clock: Wednesday
var testNow = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type fakeRetriever struct {
	result     knowledge.Result
	query      string
	matchCount int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, matchCount int) knowledge.Result {
	f.query, f.matchCount = query, matchCount
	return f.result
}

type fakeWorkouts struct {
	mu   sync.Mutex
	logs []workouts.Log
	sets map[uuid.UUID][]workouts.Set
	err  error

	lastSince time.Time
	lastLimit int
}

func (f *fakeWorkouts) Create(_ context.Context, nl workouts.NewLog) (*workouts.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	l := workouts.Log{
		ID:              uuid.New(),
		AthleteID:       nl.AthleteID,
		Date:            nl.Date,
		SessionType:     nl.SessionType,
		DurationMinutes: nl.DurationMinutes,
		RPEPre:          nl.RPEPre,
		RPEPost:         nl.RPEPost,
		TrainingLoad:    nl.TrainingLoad,
		TotalVolumeKg:   nl.TotalVolumeKg,
		TotalDistanceKm: nl.TotalDistanceKm,
		Notes:           nl.Notes,
		CreatedAt:       testNow,
	}
	f.logs = append(f.logs, l)
	return &l, nil
}

func (f *fakeWorkouts) ListSince(_ context.Context, athleteID uuid.UUID, since time.Time, limit int) ([]workouts.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince, f.lastLimit = since, limit
	if f.err != nil {
		return nil, f.err
	}
	var out []workouts.Log
	for _, l := range f.logs {
		if l.AthleteID == athleteID && !l.Date.Before(since) {
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWorkouts) Sets(_ context.Context, athleteID, logID uuid.UUID) ([]workouts.Set, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.logs {
		if l.ID == logID && l.AthleteID == athleteID {
			return f.sets[logID], nil
		}
	}
	return nil, workouts.ErrWorkoutNotFound
}

type fakeBiometrics struct {
	metrics []biometrics.DailyMetric
	err     error
}

func (f *fakeBiometrics) ListSince(_ context.Context, userID uuid.UUID, since time.Time) ([]biometrics.DailyMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []biometrics.DailyMetric
	for _, m := range f.metrics {
		if m.UserID == userID && !m.Date.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBiometrics) Upsert(_ context.Context, m biometrics.DailyMetric) (*biometrics.DailyMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	if m.Source == "" {
		m.Source = "manual"
	}
	for i := range f.metrics {
		if f.metrics[i].UserID == m.UserID && f.metrics[i].Date.Equal(m.Date) {
			m.ID = f.metrics[i].ID
			f.metrics[i] = m
			return &m, nil
		}
	}
	m.ID = uuid.New()
	f.metrics = append(f.metrics, m)
	return &m, nil
}

// fakePlans keeps one plan per athlete and walks day -> week -> plan -> athlete on update.
type fakePlans struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*plans.Plan
	err   error
}

func newFakePlans(ps ...*plans.Plan) *fakePlans {
	f := &fakePlans{plans: make(map[uuid.UUID]*plans.Plan)}
	for _, p := range ps {
		f.plans[p.AthleteID] = p
	}
	return f
}

func (f *fakePlans) ActivePlan(_ context.Context, athleteID uuid.UUID, weekNumber int) (*plans.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.plans[athleteID]
	if !ok || p.Status != plans.StatusActive {
		return nil, plans.ErrNoActivePlan
	}
	cp := *p
	cp.Weeks = nil
	for _, w := range p.Weeks {
		if weekNumber <= 0 || w.WeekNumber == weekNumber {
			cp.Weeks = append(cp.Weeks, w)
		}
	}
	return &cp, nil
}

func (f *fakePlans) UpdateDay(_ context.Context, athleteID, dayID uuid.UUID, u plans.DayUpdate) (*plans.Day, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.plans[athleteID]
	if !ok || p.Status == plans.StatusDeleted {
		return nil, plans.ErrPlanDayNotFound
	}
	for wi := range p.Weeks {
		for di := range p.Weeks[wi].Days {
			d := &p.Weeks[wi].Days[di]
			if d.ID != dayID {
				continue
			}
			if u.Title != nil {
				d.Title = *u.Title
			}
			if u.Description != nil {
				d.Description = *u.Description
			}
			if u.SessionType != nil {
				d.SessionType = u.SessionType
			}
			if u.IsCompleted != nil {
				d.IsCompleted = *u.IsCompleted
			}
			cp := *d
			return &cp, nil
		}
	}
	return nil, plans.ErrPlanDayNotFound
}

// fakeBenchmarks applies the same strictly-better rule as the conditional upsert.
type fakeBenchmarks struct {
	mu      sync.Mutex
	records map[string]*benchmarks.PersonalRecord
	logged  []benchmarks.Benchmark
	err     error
}

func newFakeBenchmarks() *fakeBenchmarks {
	return &fakeBenchmarks{records: make(map[string]*benchmarks.PersonalRecord)}
}

func (f *fakeBenchmarks) LogBenchmark(_ context.Context, b benchmarks.Benchmark) (*benchmarks.LogResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b.ID = uuid.New()
	recordType := benchmarks.RecordTypeFor(b.TestType, b.StationID, b.ExerciseID)
	key := b.AthleteID.String() + "|" + recordType + "|" + benchmarks.RecordKey(b.TestType, b.StationID, b.ExerciseID)

	res := &benchmarks.LogResult{RecordType: recordType}
	current, exists := f.records[key]
	if !exists || benchmarks.IsBetter(recordType, b.Value, current.Value) {
		pr := &benchmarks.PersonalRecord{
			ID:         uuid.New(),
			AthleteID:  b.AthleteID,
			RecordType: recordType,
			RecordKey:  benchmarks.RecordKey(b.TestType, b.StationID, b.ExerciseID),
			Value:      b.Value,
			Unit:       b.Unit,
			AchievedAt: b.TestDate,
		}
		if exists {
			prev := current.Value
			pr.PreviousValue = &prev
		}
		f.records[key] = pr
		b.IsPR = true
		res.IsPR = true
		cp := *pr
		res.Record = &cp
	}
	f.logged = append(f.logged, b)
	res.Benchmark = b
	return res, nil
}

func (f *fakeBenchmarks) PersonalRecords(_ context.Context, athleteID uuid.UUID, recordType string, limit int) ([]benchmarks.PersonalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []benchmarks.PersonalRecord
	for _, pr := range f.records {
		if pr.AthleteID != athleteID || (recordType != "" && pr.RecordType != recordType) {
			continue
		}
		out = append(out, *pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievedAt.After(out[j].AchievedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAthletes struct {
	mu           sync.Mutex
	profiles     map[uuid.UUID]*athletes.Profile
	goals        []athletes.Goal
	achievements []athletes.Achievement
	err          error
}

func (f *fakeAthletes) Profile(_ context.Context, athleteID uuid.UUID) (*athletes.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[athleteID]
	if !ok {
		return nil, athletes.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeAthletes) CreateGoal(_ context.Context, g athletes.Goal) (*athletes.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g.ID = uuid.New()
	g.Status = "active"
	g.CreatedAt = testNow
	f.goals = append(f.goals, g)
	return &g, nil
}

func (f *fakeAthletes) ActiveGoals(_ context.Context, athleteID uuid.UUID) ([]athletes.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []athletes.Goal
	for _, g := range f.goals {
		if g.AthleteID == athleteID && g.Status == "active" {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeAthletes) Achievements(_ context.Context, _ uuid.UUID) ([]athletes.Achievement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.achievements, nil
}

type fakeRaces struct {
	results    []races.Result
	thresholds []races.SkillBenchmark
	err        error
}

func (f *fakeRaces) Results(_ context.Context, athleteID uuid.UUID, limit int) ([]races.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.results
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Analyze()
	}
	return out, nil
}

func (f *fakeRaces) SkillBenchmarks(_ context.Context, segmentType, gender string) ([]races.SkillBenchmark, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []races.SkillBenchmark
	for _, b := range f.thresholds {
		if strings.EqualFold(b.SegmentType, segmentType) && b.Gender == gender {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeLibrary struct {
	exercises []library.Exercise
	stations  []library.Station
	err       error
}

func (f *fakeLibrary) FindExercises(_ context.Context, name string) ([]library.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []library.Exercise
	for _, e := range f.exercises {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(name)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLibrary) FindStations(_ context.Context, name string) ([]library.Station, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []library.Station
	for _, s := range f.stations {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(name)) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeScorer struct {
	result *readiness.Result
	err    error
}

func (f *fakeScorer) Compute(_ context.Context, _ uuid.UUID) (*readiness.Result, error) {
	return f.result, f.err
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func dateOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

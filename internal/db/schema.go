package db

// Tables lists every table the coaching schema creates.
var Tables = []string{
	"athlete_profiles",
	"workout_logs",
	"workout_sets",
	"training_plans",
	"training_plan_weeks",
	"training_plan_days",
	"daily_metrics",
	"benchmark_tests",
	"personal_records",
	"goals",
	"achievement_definitions",
	"athlete_achievements",
	"race_results",
	"race_splits",
	"skill_benchmarks",
	"hyrox_stations",
	"exercise_library",
	"knowledge_chunks",
}

// Schema is the DDL for the coaching data store. Requires the pgvector extension.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS athlete_profiles
(
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id           UUID        NOT NULL UNIQUE,
    display_name      VARCHAR     NOT NULL DEFAULT '',
    gender            VARCHAR,
    division          VARCHAR,
    race_date         DATE,
    goal_time_minutes NUMERIC,
    training_phase    VARCHAR,
    fitness_level     VARCHAR,
    equipment         TEXT[]      NOT NULL DEFAULT '{}',
    injuries          TEXT[]      NOT NULL DEFAULT '{}',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS hyrox_stations
(
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name             VARCHAR NOT NULL UNIQUE,
    station_order    SMALLINT NOT NULL CHECK (station_order BETWEEN 1 AND 8),
    distance_or_reps VARCHAR NOT NULL DEFAULT '',
    description      TEXT    NOT NULL DEFAULT '',
    tips             TEXT[]  NOT NULL DEFAULT '{}',
    common_mistakes  TEXT[]  NOT NULL DEFAULT '{}',
    division_weights JSONB   NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS exercise_library
(
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name          VARCHAR NOT NULL,
    category      VARCHAR NOT NULL DEFAULT '',
    description   TEXT    NOT NULL DEFAULT '',
    instructions  TEXT    NOT NULL DEFAULT '',
    muscle_groups TEXT[]  NOT NULL DEFAULT '{}',
    equipment     TEXT[]  NOT NULL DEFAULT '{}',
    station_id    UUID REFERENCES hyrox_stations (id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS ix_exercise_library_name ON exercise_library (lower(name));

CREATE TABLE IF NOT EXISTS workout_logs
(
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id        UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    date              DATE        NOT NULL,
    session_type      VARCHAR     NOT NULL,
    duration_minutes  INTEGER     NOT NULL CHECK (duration_minutes >= 0),
    rpe_pre           SMALLINT CHECK (rpe_pre BETWEEN 1 AND 10),
    rpe_post          SMALLINT CHECK (rpe_post BETWEEN 1 AND 10),
    training_load     INTEGER CHECK (training_load BETWEEN 0 AND 1000),
    total_volume_kg   NUMERIC,
    total_distance_km NUMERIC,
    notes             TEXT        NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at        TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS ix_workout_logs_athlete_date ON workout_logs (athlete_id, date) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS workout_sets
(
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    workout_log_id   UUID     NOT NULL REFERENCES workout_logs (id) ON DELETE CASCADE,
    exercise_id      UUID REFERENCES exercise_library (id) ON DELETE SET NULL,
    exercise_name    VARCHAR  NOT NULL DEFAULT '',
    set_number       SMALLINT NOT NULL,
    reps             INTEGER,
    weight_kg        NUMERIC,
    distance_m       NUMERIC,
    duration_seconds INTEGER,
    notes            TEXT     NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ix_workout_sets_log ON workout_sets (workout_log_id, set_number);

CREATE TABLE IF NOT EXISTS training_plans
(
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id     UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    name           VARCHAR     NOT NULL,
    goal           TEXT        NOT NULL DEFAULT '',
    status         VARCHAR     NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'archived', 'deleted')),
    start_date     DATE        NOT NULL,
    duration_weeks SMALLINT    NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_training_plans_one_active ON training_plans (athlete_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS training_plan_weeks
(
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    plan_id     UUID     NOT NULL REFERENCES training_plans (id) ON DELETE CASCADE,
    week_number SMALLINT NOT NULL CHECK (week_number >= 1),
    focus       VARCHAR  NOT NULL DEFAULT '',
    notes       TEXT     NOT NULL DEFAULT '',
    UNIQUE (plan_id, week_number)
);

-- day_of_week: 0 = Monday ... 6 = Sunday
CREATE TABLE IF NOT EXISTS training_plan_days
(
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    week_id          UUID        NOT NULL REFERENCES training_plan_weeks (id) ON DELETE CASCADE,
    day_of_week      SMALLINT    NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
    title            VARCHAR     NOT NULL DEFAULT '',
    description      TEXT        NOT NULL DEFAULT '',
    session_type     VARCHAR,
    duration_minutes INTEGER,
    is_rest_day      BOOLEAN     NOT NULL DEFAULT FALSE,
    is_completed     BOOLEAN     NOT NULL DEFAULT FALSE,
    completed_at     TIMESTAMPTZ,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_training_plan_days_week ON training_plan_days (week_id, day_of_week);

CREATE TABLE IF NOT EXISTS daily_metrics
(
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id         UUID        NOT NULL,
    date            DATE        NOT NULL,
    hrv_ms          NUMERIC,
    resting_hr      INTEGER,
    sleep_hours     NUMERIC,
    stress_score    INTEGER,
    recovery_score  INTEGER,
    readiness_score INTEGER,
    source          VARCHAR     NOT NULL DEFAULT 'manual',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, date)
);

CREATE TABLE IF NOT EXISTS benchmark_tests
(
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id  UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    test_type   VARCHAR     NOT NULL,
    station_id  UUID REFERENCES hyrox_stations (id) ON DELETE SET NULL,
    exercise_id UUID REFERENCES exercise_library (id) ON DELETE SET NULL,
    value       NUMERIC     NOT NULL,
    unit        VARCHAR     NOT NULL DEFAULT '',
    results     JSONB       NOT NULL DEFAULT '{}',
    notes       TEXT        NOT NULL DEFAULT '',
    test_date   DATE        NOT NULL,
    is_pr       BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS personal_records
(
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id     UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    record_type    VARCHAR     NOT NULL,
    record_key     VARCHAR     NOT NULL,
    station_id     UUID REFERENCES hyrox_stations (id) ON DELETE SET NULL,
    exercise_id    UUID REFERENCES exercise_library (id) ON DELETE SET NULL,
    value          NUMERIC     NOT NULL,
    unit           VARCHAR     NOT NULL DEFAULT '',
    previous_value NUMERIC,
    benchmark_id   UUID REFERENCES benchmark_tests (id) ON DELETE SET NULL,
    achieved_at    DATE        NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (athlete_id, record_type, record_key)
);

CREATE TABLE IF NOT EXISTS goals
(
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id   UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    goal_type    VARCHAR     NOT NULL,
    title        VARCHAR     NOT NULL,
    description  TEXT        NOT NULL DEFAULT '',
    target_value NUMERIC,
    target_unit  VARCHAR     NOT NULL DEFAULT '',
    target_date  DATE,
    status       VARCHAR     NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'achieved', 'abandoned')),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS achievement_definitions
(
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    code        VARCHAR NOT NULL UNIQUE,
    name        VARCHAR NOT NULL,
    description TEXT    NOT NULL DEFAULT '',
    category    VARCHAR NOT NULL DEFAULT '',
    icon        VARCHAR NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS athlete_achievements
(
    athlete_id     UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    achievement_id UUID        NOT NULL REFERENCES achievement_definitions (id) ON DELETE CASCADE,
    earned_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (athlete_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS race_results
(
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    athlete_id         UUID        NOT NULL REFERENCES athlete_profiles (id) ON DELETE CASCADE,
    race_name          VARCHAR     NOT NULL,
    race_date          DATE        NOT NULL,
    location           VARCHAR     NOT NULL DEFAULT '',
    division           VARCHAR     NOT NULL DEFAULT '',
    total_time_seconds INTEGER     NOT NULL,
    notes              TEXT        NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS race_splits
(
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    race_result_id UUID     NOT NULL REFERENCES race_results (id) ON DELETE CASCADE,
    split_number   SMALLINT NOT NULL CHECK (split_number BETWEEN 1 AND 16),
    split_type     VARCHAR  NOT NULL CHECK (split_type IN ('run', 'station')),
    name           VARCHAR  NOT NULL DEFAULT '',
    time_seconds   INTEGER  NOT NULL,
    UNIQUE (race_result_id, split_number)
);

CREATE TABLE IF NOT EXISTS skill_benchmarks
(
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    segment_type VARCHAR NOT NULL,
    gender       VARCHAR NOT NULL,
    tier         VARCHAR NOT NULL CHECK (tier IN ('elite', 'advanced', 'intermediate', 'beginner')),
    max_seconds  INTEGER NOT NULL,
    UNIQUE (segment_type, gender, tier)
);

CREATE TABLE IF NOT EXISTS knowledge_chunks
(
    id          BIGSERIAL PRIMARY KEY,
    source_name VARCHAR      NOT NULL,
    section     VARCHAR      NOT NULL DEFAULT '',
    content     TEXT         NOT NULL,
    embedding   vector(1536) NOT NULL,
    fts         tsvector GENERATED ALWAYS AS (to_tsvector('english', content)) STORED
);
CREATE INDEX IF NOT EXISTS ix_knowledge_chunks_fts ON knowledge_chunks USING gin (fts);

-- Reciprocal rank fusion of full text and semantic rankings. The score is normalized
-- to [0, 1] by the best attainable fused score, so thresholds do not depend on rrf_k.
CREATE OR REPLACE FUNCTION hybrid_search_chunks(
    query_text TEXT,
    query_embedding vector(1536),
    match_count INT,
    full_text_weight FLOAT = 1,
    semantic_weight FLOAT = 1,
    rrf_k INT = 50
)
    RETURNS TABLE
            (
                id          BIGINT,
                content     TEXT,
                section     VARCHAR,
                source_name VARCHAR,
                score       DOUBLE PRECISION
            )
    LANGUAGE sql
AS
$$
WITH full_text AS (SELECT kc.id,
                          row_number() OVER (ORDER BY ts_rank_cd(kc.fts, websearch_to_tsquery(query_text)) DESC) AS rank_ix
                   FROM knowledge_chunks kc
                   WHERE kc.fts @@ websearch_to_tsquery(query_text)
                   ORDER BY rank_ix
                   LIMIT least(match_count, 30) * 2),
     semantic AS (SELECT kc.id,
                         row_number() OVER (ORDER BY kc.embedding <#> query_embedding) AS rank_ix
                  FROM knowledge_chunks kc
                  ORDER BY rank_ix
                  LIMIT least(match_count, 30) * 2)
SELECT kc.id,
       kc.content,
       kc.section,
       kc.source_name,
       (coalesce(1.0 / (rrf_k + full_text.rank_ix), 0.0) * full_text_weight +
        coalesce(1.0 / (rrf_k + semantic.rank_ix), 0.0) * semantic_weight)
           / ((full_text_weight + semantic_weight) / (rrf_k + 1)) AS score
FROM full_text
         FULL OUTER JOIN semantic ON full_text.id = semantic.id
         JOIN knowledge_chunks kc ON coalesce(full_text.id, semantic.id) = kc.id
ORDER BY score DESC
LIMIT least(match_count, 30)
$$;
`

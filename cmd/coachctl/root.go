package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/2beens/hyroxcoach/internal/coach"
	"github.com/2beens/hyroxcoach/internal/config"
	"github.com/2beens/hyroxcoach/internal/db"
	"github.com/2beens/hyroxcoach/internal/hyrox/athletes"
	"github.com/2beens/hyroxcoach/internal/hyrox/benchmarks"
	"github.com/2beens/hyroxcoach/internal/hyrox/biometrics"
	"github.com/2beens/hyroxcoach/internal/hyrox/library"
	"github.com/2beens/hyroxcoach/internal/hyrox/plans"
	"github.com/2beens/hyroxcoach/internal/hyrox/races"
	"github.com/2beens/hyroxcoach/internal/hyrox/workouts"
	"github.com/2beens/hyroxcoach/internal/knowledge"
	"github.com/2beens/hyroxcoach/internal/logging"
	"github.com/2beens/hyroxcoach/internal/readiness"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagEnv       string
	flagConfig    string
	flagEnvFile   string
	flagAthleteID string
	flagUserID    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "coachctl",
	Short: "Operate the Hyrox coaching service",
	Long: `coachctl runs coaching operations against the service database.

IDENTITY:

  Athlete scoped commands act for one athlete. Pass --user with the owning user id;
  the athlete profile is looked up unless --athlete is given as well.

EXAMPLES:

  coachctl readiness --user 6c1d...
  coachctl tools list
  coachctl tools call get_today_workout --user 6c1d...
  coachctl tools call search_knowledge_base '{"query":"sled push technique"}' --user 6c1d...
  coachctl pacing 85 --fitness advanced
  coachctl mcp --user 6c1d...
  coachctl migrate`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(flagEnvFile); err != nil {
			log.Debugf("no env file loaded from [%s]: %s", flagEnvFile, err)
		}

		// stdout belongs to command output (and to the MCP stream)
		log.SetOutput(os.Stderr)

		if cmd.Annotations["config"] == "none" {
			return nil
		}

		var err error
		cfg, err = config.Load(flagEnv, flagConfig)
		if err != nil {
			return err
		}
		log.SetLevel(logging.GetLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "optional dotenv file with secrets")
	rootCmd.PersistentFlags().StringVar(&flagAthleteID, "athlete", "", "athlete profile id")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "user id owning the athlete profile")
}

func dbPoolParams() db.NewDBPoolParams {
	return db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     os.Getenv("HYROX_POSTGRES_USER"),
		DBPassword: os.Getenv("HYROX_POSTGRES_PASS"),
	}
}

func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.NewDBPool(ctx, dbPoolParams())
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	return pool, nil
}

func openRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("HYROX_REDIS_PASS"),
	})
}

// resolveBinding turns --user and --athlete into the identity tools are bound to.
func resolveBinding(ctx context.Context, athletesRepo *athletes.Repo) (coach.Binding, error) {
	if flagUserID == "" {
		return coach.Binding{}, errors.New("--user is required")
	}
	userID, err := uuid.Parse(flagUserID)
	if err != nil {
		return coach.Binding{}, fmt.Errorf("invalid --user: %w", err)
	}

	if flagAthleteID != "" {
		athleteID, err := uuid.Parse(flagAthleteID)
		if err != nil {
			return coach.Binding{}, fmt.Errorf("invalid --athlete: %w", err)
		}
		return coach.Binding{AthleteID: athleteID, UserID: userID}, nil
	}

	athleteID, err := athletesRepo.AthleteIDForUser(ctx, userID)
	if err != nil {
		return coach.Binding{}, fmt.Errorf("find athlete of user %s: %w", userID, err)
	}
	return coach.Binding{AthleteID: athleteID, UserID: userID}, nil
}

type coachDeps struct {
	pool     *pgxpool.Pool
	athletes *athletes.Repo
	scorer   *readiness.Scorer
	toolset  *coach.Toolset
}

func newCoachDeps(ctx context.Context, pool *pgxpool.Pool) (*coachDeps, error) {
	var embedder knowledge.Embedder = knowledge.NoEmbedder{}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		genaiEmbedder, err := knowledge.NewGenAIEmbedder(ctx, apiKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		embedder = genaiEmbedder
	} else {
		log.Warnln("GEMINI_API_KEY not set, knowledge search returns nothing")
	}

	workoutsRepo := workouts.NewRepo(pool)
	plansRepo := plans.NewRepo(pool)
	athletesRepo := athletes.NewRepo(pool)
	scorer := readiness.NewScorer(workoutsRepo, plansRepo, nil)

	return &coachDeps{
		pool:     pool,
		athletes: athletesRepo,
		scorer:   scorer,
		toolset: coach.NewToolset(coach.ToolsetParams{
			Retriever:  knowledge.NewRetriever(embedder, knowledge.NewRepo(pool), nil),
			Workouts:   workoutsRepo,
			Biometrics: biometrics.NewRepo(pool),
			Plans:      plansRepo,
			Benchmarks: benchmarks.NewRepo(pool),
			Athletes:   athletesRepo,
			Races:      races.NewRepo(pool),
			Library:    library.NewRepo(pool),
			Scorer:     scorer,
		}),
	}, nil
}

// withCoach opens the database, builds the coaching dependencies and closes the pool after run.
func withCoach(ctx context.Context, run func(d *coachDeps) error) error {
	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	d, err := newCoachDeps(ctx, pool)
	if err != nil {
		return err
	}
	return run(d)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

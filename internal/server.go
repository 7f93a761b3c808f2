package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/hyroxcoach/internal/auth"
	"github.com/2beens/hyroxcoach/internal/coach"
	coachmcp "github.com/2beens/hyroxcoach/internal/coach/mcp"
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
	"github.com/2beens/hyroxcoach/internal/middleware"
	"github.com/2beens/hyroxcoach/internal/readiness"
	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	dbPool   *pgxpool.Pool
	toolset  *coach.Toolset
	scorer   *readiness.Scorer
	sessions *auth.SessionStore

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresUser            string
	PostgresPassword        string
	RedisPassword           string
	GenAIAPIKey             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(params.VersionInfo, pgxpoolCollector)
	metricsManager := metrics.NewManager("hyrox_coach", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "hyrox-coach", rdb)
	if err != nil {
		return nil, err
	}

	var embedder knowledge.Embedder = knowledge.NoEmbedder{}
	if params.GenAIAPIKey != "" {
		genaiEmbedder, err := knowledge.NewGenAIEmbedder(ctx, params.GenAIAPIKey, params.Config.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("new genai embedder: %w", err)
		}
		embedder = genaiEmbedder
	} else {
		log.Warnln("no genai api key set, knowledge retrieval will return nothing")
	}

	workoutsRepo := workouts.NewRepo(dbPool)
	plansRepo := plans.NewRepo(dbPool)
	scorer := readiness.NewScorer(workoutsRepo, plansRepo, metricsManager)

	toolset := coach.NewToolset(coach.ToolsetParams{
		Retriever:  knowledge.NewRetriever(embedder, knowledge.NewRepo(dbPool), metricsManager),
		Workouts:   workoutsRepo,
		Biometrics: biometrics.NewRepo(dbPool),
		Plans:      plansRepo,
		Benchmarks: benchmarks.NewRepo(dbPool),
		Athletes:   athletes.NewRepo(dbPool),
		Races:      races.NewRepo(dbPool),
		Library:    library.NewRepo(dbPool),
		Scorer:     scorer,
		Metrics:    metricsManager,
	})

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,
		toolset:     toolset,
		scorer:      scorer,
		sessions: auth.NewSessionStore(
			time.Duration(params.Config.SessionTTLHours)*time.Hour,
			rdb,
		),

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Session, error)
}

type routerParams struct {
	handler        *CoachHandler
	sessions       sessionResolver
	rateLimiter    middleware.RequestRateLimiter
	metricsManager *metrics.Manager
	allowedPerMin  int
	corsOrigins    []string
}

func newRouter(p routerParams) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("coach-router"))

	h := p.handler
	r.HandleFunc("/", h.HandleRoot).Methods("GET")
	r.HandleFunc("/health", h.HandleHealth).Methods("GET")
	r.HandleFunc("/readiness", h.HandleReadiness).Methods("GET", "OPTIONS").Name("readiness")

	toolsRateLimit := middleware.RateLimit(p.rateLimiter, p.metricsManager, "tools", p.allowedPerMin)

	toolsRouter := r.PathPrefix("/tools").Subrouter()
	toolsRouter.Use(toolsRateLimit)
	toolsRouter.HandleFunc("", h.HandleListTools).Methods("GET", "OPTIONS").Name("list-tools")
	toolsRouter.HandleFunc("/{name}", h.HandleInvokeTool).Methods("POST", "OPTIONS").Name("invoke-tool")

	r.Handle("/mcp", toolsRateLimit(
		otelhttp.NewHandler(coachmcp.NewStreamableHandler(h.BindRequest), "mcp"),
	)).Name("mcp")

	r.Use(middleware.PanicRecovery(p.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(p.metricsManager))
	r.Use(middleware.Cors(p.corsOrigins...))
	r.Use(middleware.NewAuthMiddlewareHandler(p.sessions).AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) routerSetup() *mux.Router {
	return newRouter(routerParams{
		handler:        NewCoachHandler(s.toolset, s.scorer, s.versionInfo),
		sessions:       s.sessions,
		rateLimiter:    redis_rate.NewLimiter(s.redisClient),
		metricsManager: s.metricsManager,
		allowedPerMin:  s.config.ToolCallsAllowedPerMin,
		corsOrigins:    s.config.CorsAllowedOrigins,
	})
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:     s.routerSetup(),
		Addr:        ipAndPort,
		ReadTimeout: time.Minute,
		// no WriteTimeout, MCP responses may stream
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.cleanSessions(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) cleanSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionsCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sessions.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/raulk/clock"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/api"
	"github.com/linesmerrill/jurychain-api/api/scheduler"
	"github.com/linesmerrill/jurychain-api/chain"
	"github.com/linesmerrill/jurychain-api/config"
	"github.com/linesmerrill/jurychain-api/databases"
	"github.com/linesmerrill/jurychain-api/jury"
	"github.com/linesmerrill/jurychain-api/metrics"
	"github.com/linesmerrill/jurychain-api/models"
	"github.com/linesmerrill/jurychain-api/ratelimit"
)

// Route prefixes. /api is kept for older frontends.
var apiPrefixes = []string{"/api/v1", "/api"}

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Feed     *CaseFeed
	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
	limiter  ratelimit.Limiter
	memory   *ratelimit.MemoryLimiter
	redis    *ratelimit.RedisLimiter
	clock    clock.Clock
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.clock == nil {
		a.clock = clock.New()
	}
	if a.limiter == nil {
		a.memory = ratelimit.NewMemoryLimiter(a.clock, a.Config.LimiterMaxKeys)
		a.limiter = a.memory
	}
	if a.Feed == nil {
		a.Feed = NewCaseFeed()
	}

	c := Case{
		DB:              databases.NewCaseDatabase(a.dbHelper),
		Panel:           jury.NewMockPanel(),
		Feed:            a.Feed,
		Network:         a.network(),
		TreasuryAddress: a.Config.TreasuryAddress,
		Clock:           a.clock,
	}

	// healthchex, security headers
	r := api.New()
	r.Use(api.MetricsMiddleware)

	r.Handle("/metrics", api.OpsAuth(a.Config.OpsUser, a.Config.OpsPasswordHash)(metrics.Handler())).Methods("GET")
	r.HandleFunc("/ws/cases", a.Feed.HandleCasesWebSocket).Methods("GET")
	r.HandleFunc("/ready", a.ReadyHandler).Methods("GET")

	submitLimit := api.RateLimit(a.limiter, a.clock, "submit", a.Config.SubmitRateLimit, a.Config.RateLimitWindow, a.Config.TrustedProxies)
	proofLimit := api.RateLimit(a.limiter, a.clock, "proof", a.Config.ProofRateLimit, a.Config.RateLimitWindow, a.Config.TrustedProxies)

	for _, prefix := range apiPrefixes {
		apiCreate := r.PathPrefix(prefix).Subrouter()
		if a.Config.RequestTimeout > 0 {
			apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))
		}

		apiCreate.Handle("/submitCase", submitLimit(http.HandlerFunc(c.SubmitCaseHandler))).Methods("POST")
		apiCreate.HandleFunc("/getCase/{case_id}", c.GetCaseHandler).Methods("GET")
		apiCreate.HandleFunc("/getCases", c.GetCasesHandler).Methods("GET")
		apiCreate.Handle("/storeVerdict", proofLimit(http.HandlerFunc(c.StoreVerdictHandler))).Methods("POST")
		apiCreate.HandleFunc("/stats", c.StatsHandler).Methods("GET")
		apiCreate.HandleFunc("/chain", c.ChainInfoHandler).Methods("GET")
	}

	return r
}

// network resolves the configured chain, applying any RPC or explorer override
func (a *App) network() chain.Network {
	n := chain.BaseSepolia
	if chain.IsValidChainID(a.Config.ChainID) {
		n, _ = chain.NetworkByID(a.Config.ChainID)
	} else if a.Config.ChainID != "" {
		zap.S().Warnw("unsupported chain id, falling back to Base Sepolia", "chainId", a.Config.ChainID)
	}
	return n.WithOverrides(a.Config.ChainRPCURL, a.Config.ChainExplorerURL)
}

// ReadyHandler reports whether the database answers a ping
func (a *App) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if a.client == nil {
		config.ErrorStatus("database not connected", http.StatusServiceUnavailable, w, nil)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := a.client.Ping(ctx); err != nil {
		config.ErrorStatus("database unavailable", http.StatusServiceUnavailable, w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{Alive: true})
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	pingCtx, cancelPing := api.WithQueryTimeout(context.Background())
	defer cancelPing()
	if err := client.Ping(pingCtx); err != nil {
		zap.S().With(err).Error("database did not answer ping")
		return err
	}
	zap.S().Info("jurychain-api has connected to the database")

	if a.Config.RedisAddr != "" {
		rl, err := ratelimit.NewRedisLimiter(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
		if err != nil {
			return err
		}
		ctx, cancel := api.WithQueryTimeout(context.Background())
		defer cancel()
		if err := rl.Ping(ctx); err != nil {
			zap.S().With(err).Error("failed to connect to redis")
			return err
		}
		a.redis = rl
		a.limiter = rl
		zap.S().Infow("rate limiting with redis", "addr", a.Config.RedisAddr)
	}

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Scheduler builds the housekeeping jobs for this app. The memory limiter is only
// swept when it is the one in use.
func (a *App) Scheduler() *scheduler.Scheduler {
	var sweeper scheduler.Sweeper
	if a.memory != nil {
		sweeper = a.memory
	}
	return scheduler.NewScheduler(databases.NewCaseDatabase(a.dbHelper), sweeper, a.Config.StatsLogSchedule)
}

// Close releases the connections opened by Initialize
func (a *App) Close(ctx context.Context) {
	if a.Feed != nil {
		a.Feed.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.S().Warnw("failed to close redis client", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

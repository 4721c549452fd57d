package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-nav/api"
	api_i "github.com/beka-birhanu/vinom-nav/api/i"
	"github.com/beka-birhanu/vinom-nav/api/identity"
	simulationapi "github.com/beka-birhanu/vinom-nav/api/simulation"
	"github.com/beka-birhanu/vinom-nav/config"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	logger "github.com/beka-birhanu/vinom-nav/infrastruture/log"
	"github.com/beka-birhanu/vinom-nav/infrastruture/repo"
	"github.com/beka-birhanu/vinom-nav/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-nav/infrastruture/token"
	"github.com/beka-birhanu/vinom-nav/service"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient          *mongo.Client
	redisClient          *redis.Client
	operatorRepo         *repo.OperatorRepo
	runRepo              i.RunRepo
	leaderboard          i.Leaderboard
	simulationManager    *service.SimulationManager
	simulationController api_i.Controller
	jwtTokenizer         i.Tokenizer
	authService          i.Authenticator
	authController       api_i.Controller
	router               *api.Router
	appLogger            *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout, logger.WithLevel(logger.ParseLevel(config.Envs.LogLevel)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRepos(ctx context.Context, client *mongo.Client) {
	operatorRepo = repo.NewOperatorRepo(client, config.Envs.DBName, "operators")
	if err := operatorRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating operator indexes: %v", err))
		os.Exit(1)
	}
	runRepo = repo.NewRunRepo(client, config.Envs.DBName, "runs")
	appLogger.Info("Repositories initialized")
}

// initLeaderboard connects to Redis. The server still runs without it; the
// leaderboard endpoint then reports itself unavailable.
func initLeaderboard(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Warning(fmt.Sprintf("Redis unavailable, leaderboard disabled: %v", err))
		_ = redisClient.Close()
		redisClient = nil
		return
	}
	leaderboard = sortedstorage.NewRedisLeaderboard(redisClient, "", config.Envs.LeaderboardTTL)
	appLogger.Info("Leaderboard initialized")
}

func initSimulationManager() {
	limits := scenario.Limits{
		MaxWidth:     config.Envs.MaxGridSide,
		MaxHeight:    config.Envs.MaxGridSide,
		MaxAgents:    config.Envs.MaxAgents,
		MaxObstacles: config.Envs.MaxGridSide * config.Envs.MaxGridSide,
	}

	var err error
	simulationManager, err = service.NewSimulationManager(service.SimulationManagerConfig{
		RunRepo:      runRepo,
		Leaderboard:  leaderboard,
		Logger:       newLogger("SIM-MANAGER", config.ColorCyan),
		SimLogger:    newLogger("AGENT", config.ColorYellow),
		TickInterval: config.Envs.TickInterval,
		MaxTicks:     config.Envs.MaxTicks,
		Retention:    config.Envs.Retention,
		Limits:       &limits,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating simulation manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Simulation manager initialized")
}

func initSimulationController() {
	var err error
	simulationController, err = simulationapi.NewSimulationController(simulationManager, leaderboard, runRepo)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating simulation controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Simulation controller initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(operatorRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initAuthController() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, simulationController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger = newLogger("APP", config.ColorGreen)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	initRepos(ctx, mongoClient)
	initLeaderboard(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	initSimulationManager()
	initSimulationController()
	initJWTTokenizer()
	initAuthService()
	initAuthController()
	initRouter(jwtTokenizer)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run HTTP server
	if err := router.Run(runCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Running server: %v", err))
	}

	simulationManager.StopAll()
	appLogger.Info("Server stopped")
}

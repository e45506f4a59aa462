package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/logger"
	"lg/adaptive-tdee-go-api/store"
)

func main() {
	logger.Init()
	defer logger.Sync()

	// A missing .env is fine in deployments that set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	tuning, err := expenditure.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Fatal("invalid engine tuning", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := store.NewPool(ctx, cfg.DBURL)
	cancel()
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("DB pool ready")

	obs := store.NewObservations(pool)
	estimator := expenditure.NewEstimator(obs, obs, obs,
		expenditure.WithTuning(tuning),
		expenditure.WithLogger(logger.Named("expenditure")))

	h := &Handler{
		db:            pool,
		estimator:     estimator,
		cache:         newEstimateCache(estimator, time.Now),
		lookbackWeeks: cfg.LookbackWeeks,
		log:           logger.Named("api"),
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	h.registerRoutes(router)

	logger.Info("starting gin app", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

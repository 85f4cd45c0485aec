package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	_ "finapi/docs"
	"finapi/pkg/transactions"
)

var (
	cfg       *Config
	logger    *logrus.Logger
	jwtSecret []byte
	txService *transactions.Service
)

// @title           Financial Transactions API
// @version         1.0
// @description     Ownership-scoped CRUD API for personal income and expense records.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token, prefixed with "Bearer ".
func main() {
	// Load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()

	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	var err error
	cfg, err = NewConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	jwtSecret = []byte(cfg.JWTSecret)

	// Support a lightweight migrate command: `./finapi migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		logger.Info("migration completed")
		return
	}

	initDB()
	txService = transactions.NewService(db, logger, cfg.TimeZone)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	if len(cfg.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			logger.Fatalf("invalid TRUSTED_PROXIES: %v", err)
		}
	}

	setupRoutes(r)

	logger.Infof("starting server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

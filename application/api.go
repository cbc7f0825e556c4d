package application

import (
	"log"
	"net/http"
	"time"

	configs "github.com/freitasmatheusrn/fleamarket-inventory/configs"
	redisdb "github.com/freitasmatheusrn/fleamarket-inventory/internal/database/redis"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/email/smtp"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/imports"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/inventory"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/pricing"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/scheduler"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/storage"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/user"
	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/auth"
	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/parser"
	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Application struct {
	Config  configs.Configs
	Logger  *zap.Logger
	DB      *pgxpool.Pool
	Redis   *redisdb.Client
	Storage *storage.S3Store

	scheduler *scheduler.Scheduler
}

func (app *Application) Mount() http.Handler {
	email := smtp.New(
		app.Config.SMTP_FROM,
		app.Config.SMTP_HOST,
		app.Config.SMTP_USER,
		app.Config.SMTP_PASS,
		app.Config.SMTP_PORT,
	)
	e := echo.New()
	e.HTTPErrorHandler = app.CustomErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: app.Config.AllowOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:  true,
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {

			status := v.Status
			if v.Error != nil {
				switch err := v.Error.(type) {
				case *echo.HTTPError:
					status = err.Code
				case *rest.ApiErr:
					status = err.Code
				}
			}

			if status >= 500 {
				app.Logger.Error("request",
					zap.Duration("latency", v.Latency),
					zap.Int("status", status),
					zap.String("uri", v.URI),
					zap.String("method", v.Method),
				)
				return nil
			}

			if status >= 400 {
				app.Logger.Warn("request",
					zap.Duration("latency", v.Latency),
					zap.Int("status", status),
					zap.String("uri", v.URI),
					zap.String("method", v.Method),
				)
				return nil
			}

			app.Logger.Info("request",
				zap.Duration("latency", v.Latency),
				zap.Int("status", status),
				zap.String("uri", v.URI),
				zap.String("method", v.Method),
			)
			return nil
		},
	}))
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.JWTCustomClaims)
		},
		SigningKey:  []byte(app.Config.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ,cookie:access_token",
		SuccessHandler: func(c echo.Context) {
			claims, apiErr := auth.GetClaims(c)
			if apiErr != nil {
				_ = c.NoContent(http.StatusUnauthorized)
				return
			}
			pgUUID, err := parser.PgUUIDFromString(claims.UserID)
			if err != nil {
				_ = c.NoContent(http.StatusUnauthorized)
				return
			}
			userID, err := parser.PgUUIDToString(pgUUID)
			if err != nil {
				_ = c.NoContent(http.StatusUnauthorized)
				return
			}
			user.SetCurrentUser(c, user.CurrentUser{
				ID:     pgUUID,
				UserID: userID,
				Email:  claims.Email,
			})
		},
	}

	// Initialize repositories and services
	inventoryRepo := inventory.NewRepository(app.DB)
	resultStore := imports.NewRedisResultStore(app.Redis.Client, time.Duration(app.Config.ImportResultTTL)*time.Second)

	importService := imports.NewService(inventoryRepo, app.Storage, resultStore, imports.Options{
		UploadConcurrency: app.Config.ImportUploadConcurrency,
		BatchSize:         app.Config.ImportDBBatchSize,
		MaxErrors:         app.Config.ImportMaxErrors,
	}, app.Logger)
	importHandler := imports.NewHandler(importService, time.Duration(app.Config.ImportTimeoutSeconds)*time.Second)

	pricingHandler := pricing.NewHandler()
	userHandler := user.NewHandler()

	// Initialize and start scheduler for staged upload cleanup
	app.scheduler = scheduler.NewScheduler(
		app.Storage,
		time.Duration(app.Config.StagingMaxAgeHours)*time.Hour,
		app.Logger,
		email,
		app.Config.AlertRecipients,
	)
	if err := app.scheduler.Start(app.Config.StagingCleanupCron); err != nil {
		app.Logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// Public routes
	e.GET("/health", app.Health)

	// Protected routes (JWT required)
	protected := e.Group("")
	protected.Use(echojwt.WithConfig(config))

	protected.GET("/me", userHandler.GetMe)

	protected.POST("/products/import", importHandler.ImportSpreadsheet)
	protected.POST("/products/import-stream", importHandler.ImportSpreadsheetSSE)
	protected.GET("/products/import/latest", importHandler.LatestImport)

	protected.GET("/pricing/quote", pricingHandler.Quote)

	return e
}

// Health reports whether postgres and redis answer.
func (app *Application) Health(c echo.Context) error {
	ctx := c.Request().Context()
	if err := app.DB.Ping(ctx); err != nil {
		app.Logger.Warn("health check: postgres", zap.Error(err))
		return rest.NewServiceUnavailableError("データベースに接続できません")
	}
	if err := app.Redis.HealthCheck(ctx); err != nil {
		app.Logger.Warn("health check: redis", zap.Error(err))
		return rest.NewServiceUnavailableError("Redisに接続できません")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (app *Application) Run(h http.Handler) error {
	srv := &http.Server{
		Addr:         app.Config.WebServerPort,
		Handler:      h,
		WriteTimeout: time.Duration(app.Config.ImportTimeoutSeconds+30) * time.Second,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}
	if app.scheduler != nil {
		defer app.scheduler.Stop()
	}

	log.Printf("server has started at addr %s", app.Config.WebServerPort)

	if app.Config.TLSCertFile != "" && app.Config.TLSKeyFile != "" {
		return srv.ListenAndServeTLS(app.Config.TLSCertFile, app.Config.TLSKeyFile)
	}
	return srv.ListenAndServe()
}

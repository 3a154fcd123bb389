package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/bibujohny/rentalAI/internal/app"
	"github.com/bibujohny/rentalAI/internal/config"
	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/controllers"
	"github.com/bibujohny/rentalAI/internal/database"
	"github.com/bibujohny/rentalAI/internal/middleware"
	"github.com/bibujohny/rentalAI/internal/routes"
	"github.com/bibujohny/rentalAI/internal/services"
	"github.com/bibujohny/rentalAI/internal/utils"
	"github.com/bibujohny/rentalAI/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer cfg.Close()
		return newManager(cfg).RunForeground(func() error {
			return serve(cmd.Context(), cfg)
		})
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	application, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", cfg.AppName, err)
	}
	defer application.Close()

	if application.DB != nil {
		migrator, err := database.NewMigrator(application.DB)
		if err != nil {
			return err
		}
		if _, err := migrator.Up(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.LDFlag_SeedDbWithDemoData {
		if err := app.SeedDemoData(ctx, application.Repos); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	handler, err := newHandler(application)
	if err != nil {
		return err
	}

	cleanup := services.NewLoginCleanupService(application.Repos.LoginAttempts)
	c := cron.New()
	if _, err := c.AddFunc(constants.LoginAttemptsCleanupCronSpec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), constants.LoginAttemptsCleanupJobTimeout)
		defer cancel()
		if e := cleanup.CleanupDaily(jobCtx); e != nil {
			utils.Logger.WithError(e).Error("Scheduled login attempts cleanup failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule login attempts cleanup: %w", err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s failed to start: %w", cfg.AppName, err)
	case <-sigCtx.Done():
	}

	utils.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler wires services, controllers and routes for application.
func newHandler(application *app.App) (http.Handler, error) {
	cfg := application.Config
	repos := application.Repos

	sessions, err := services.NewSessionService(cfg.SecretKey, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	var cache services.InsightsCache = services.NoopInsightsCache{}
	if application.Redis != nil {
		cache = services.NewRedisInsightsCache(application.Redis, cfg.InsightsCacheTTL)
	}
	insights := services.NewInsightsService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LDFlag_AIInsightsEnabled, cache)

	authService := services.NewAuthService(repos.Users, repos.LoginAttempts)
	buildingService := services.NewBuildingService(repos.Buildings, repos.Tenants)
	tenantService := services.NewTenantService(repos.Tenants, repos.Buildings)
	lodgeService := services.NewLodgeService(repos.LodgeGuests)
	summaryService := services.NewSummaryService(repos.Summaries)
	dashboardService := services.NewDashboardService(repos, insights)
	statementService := services.NewStatementService(cfg.PDFDefaultPassword)

	secureCookies := cfg.IsProduction()
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService, sessions, renderer, secureCookies)
	dashboardController := controllers.NewDashboardController(dashboardService, renderer)
	buildingsController := controllers.NewBuildingsController(buildingService, renderer)
	tenantsController := controllers.NewTenantsController(tenantService, buildingService, renderer)
	lodgeController := controllers.NewLodgeController(lodgeService, renderer)
	summariesController := controllers.NewSummariesController(summaryService, renderer)
	statementsController := controllers.NewStatementsController(statementService, renderer)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderer.Render(w, http.StatusNotFound, "not_found", web.Page{Title: "Not found"})
	})

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Login, authController.LoginPage).Methods(http.MethodGet)
	router.HandleFunc(routes.Login, authController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Register, authController.RegisterPage).Methods(http.MethodGet)
	router.HandleFunc(routes.Register, authController.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Logout, authController.LogoutHandler).Methods(http.MethodGet)

	// JSON API
	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, constants.CORSLowSecurityAllowedOriginLocalhost)
	}
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	api := router.NewRoute().Subrouter()
	api.Use(co.Handler, middleware.RequireSessionAPI(sessions))
	api.HandleFunc(routes.APIDashboard, dashboardController.DashboardAPIHandler).Methods(http.MethodGet, http.MethodOptions)

	// HTML pages
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.RequireSession(sessions, routes.Login))

	secured.HandleFunc(routes.Dashboard, dashboardController.DashboardPage).Methods(http.MethodGet)

	secured.HandleFunc(routes.Buildings, buildingsController.ListPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.BuildingsAdd, buildingsController.AddPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.BuildingsAdd, buildingsController.AddHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BuildingsEdit, buildingsController.EditPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.BuildingsEdit, buildingsController.EditHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BuildingsDelete, buildingsController.DeleteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BuildingsDetail, buildingsController.DetailPage).Methods(http.MethodGet)

	secured.HandleFunc(routes.Tenants, tenantsController.ListPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.TenantsAdd, tenantsController.AddHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TenantsEdit, tenantsController.EditHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TenantsDelete, tenantsController.DeleteHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.Lodge, lodgeController.ListPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.LodgeAdd, lodgeController.AddHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LodgeEdit, lodgeController.EditHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LodgeCheckout, lodgeController.CheckoutHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LodgeDelete, lodgeController.DeleteHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.Summaries, summariesController.ListPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.SummariesAdd, summariesController.AddPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.SummariesAdd, summariesController.AddHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.SummariesEdit, summariesController.EditPage).Methods(http.MethodGet)
	secured.HandleFunc(routes.SummariesEdit, summariesController.EditHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.SummariesDelete, summariesController.DeleteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.SummariesExport, summariesController.ExportHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.StatementsSummary, statementsController.Page).Methods(http.MethodGet)
	secured.HandleFunc(routes.StatementsSummary, statementsController.UploadHandler).Methods(http.MethodPost)

	return middleware.RequestLogger(routes.Health)(middleware.SecurityHeaders(router)), nil
}

package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}

	// Ping the database to ensure connection is valid
	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize Pub/Sub publisher (optional: events are best-effort)
	var publisher pubsub.Publisher
	if cfg.GetGCPProjectID() != "" {
		pubSubPublisher, err := pubsub.NewPublisher(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
			return nil, nil, err
		}
		publisher = pubSubPublisher
	} else {
		logger.Warn().Msg("No GCP project configured; domain events disabled")
	}

	// 4. Initialize OpenAI credential source. Secret Manager when a GCP
	// project is configured, otherwise the key from the environment.
	var credentials service.CredentialProvider
	var credentialStore service.CredentialStore
	if cfg.GetGCPProjectID() != "" {
		smCredentials, err := service.NewSecretManagerCredentials(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create Secret Manager client: %v", err)
			return nil, nil, err
		}
		credentials = smCredentials
		credentialStore = smCredentials
	} else {
		credentials = service.StaticCredentials{Key: cfg.OpenAIAPIKey}
	}

	// 5. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(pool)
	courseRepo := repository.NewCourseRepo(pool)
	paymentRepo := repository.NewPaymentRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	tempStore := repository.NewTempCourseStore(time.Duration(cfg.TempCourseTTLMinutes) * time.Minute)

	generationSvc := service.NewCourseGenerationService(credentials, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
	courseSvc := service.NewCourseService(generationSvc, courseRepo, tempStore, publisher, cfg.EventsTopic, logger)
	accessSvc := service.NewAccessService(courseRepo, paymentRepo, cfg.FreeCourseLimit, logger)
	paymentSvc := service.NewPaymentService(cfg, userRepo, paymentRepo, courseRepo, publisher, logger)
	progressSvc := service.NewProgressService(progressRepo, courseRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)
	openAIValidator := service.NewOpenAIValidator(cfg.OpenAIBaseURL)

	generationHandler := handler.NewGenerationHandler(generationSvc, validate)
	courseHandler := handler.NewCourseHandler(courseSvc, accessSvc, generationHandler, validate)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, validate)
	progressHandler := handler.NewProgressHandler(progressSvc, validate)
	userHandler := handler.NewUserHandler(userSvc, openAIValidator, credentialStore, validate)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	optionalAuthMiddleware := middleware.OptionalAuthMiddleware(cfg.JWTSecret)

	// 7. Create ServeMux router
	mux := http.NewServeMux()

	// Create a subrouter for API v1 with the /v1 prefix
	apiV1Mux := http.NewServeMux()
	courseHandler.RegisterRoutes(apiV1Mux, authMiddleware, optionalAuthMiddleware)
	paymentHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	progressHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// Add Swagger documentation
	mux.HandleFunc("/swagger/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger/swagger.json")
	})
	mux.Handle("/swagger/", http.StripPrefix("/swagger/", http.FileServer(http.Dir("./docs/swagger/swagger-ui"))))

	// Redirect /api/* to /v1/* for backward compatibility
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, "/v1/"+rest, http.StatusMovedPermanently)
	})

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}

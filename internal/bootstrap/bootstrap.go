package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/ssis/internal/app/controllers"
	appMigrations "github.com/yigit/ssis/internal/app/migrations"
	appRepos "github.com/yigit/ssis/internal/app/repositories"
	appRoutes "github.com/yigit/ssis/internal/app/routes"
	appServices "github.com/yigit/ssis/internal/app/services"
	"github.com/yigit/ssis/internal/config"
	"github.com/yigit/ssis/internal/db"
	appMiddleware "github.com/yigit/ssis/internal/middleware"
	"github.com/yigit/ssis/internal/pkg/logger"
	"github.com/yigit/ssis/internal/pkg/validation"
	"github.com/yigit/ssis/internal/storage/csvstore"
	"github.com/yigit/ssis/internal/storage/sqlstore"
)

// DefaultConfigPath is used when no config file is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store              appRepos.Store
	CollegeService     appServices.CollegeService
	ProgramService     appServices.ProgramService
	StudentService     appServices.StudentService
	RegistryService    appServices.RegistryService
	CollegeController  *appControllers.CollegeController
	ProgramController  *appControllers.ProgramController
	StudentController  *appControllers.StudentController
	RegistryController *appControllers.RegistryController
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured database and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.NewDatabase(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.DB, database.Driver == config.DriverPostgres)
	applied, err := migrator.Migrate(context.Background())
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		_ = database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")

	return database, nil
}

// OpenStore opens the configured storage backend.
func OpenStore(cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, error) {
	mode := cfg.CascadeMode()

	switch strings.ToLower(cfg.Storage.Backend) {
	case config.BackendCSV:
		store, err := csvstore.New(cfg.Storage.CSVDir, mode)
		if err != nil {
			lgr.Error().Err(err).Str("dir", cfg.Storage.CSVDir).Msg("Failed to open CSV store")
			return nil, err
		}
		lgr.Info().Str("dir", cfg.Storage.CSVDir).Str("cascade", string(mode)).Msg("Using CSV storage")
		return store, nil
	case config.BackendSQL:
		database, err := SetupDatabase(cfg, lgr)
		if err != nil {
			return nil, err
		}
		lgr.Info().Str("driver", database.Driver).Str("cascade", string(mode)).Msg("Using SQL storage")
		return sqlstore.New(database, mode), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// BuildDependencies initializes application services and controllers over store.
func BuildDependencies(store appRepos.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	validate := validation.New()
	deps.CollegeService = appServices.NewCollegeService(store, store, validate)
	deps.ProgramService = appServices.NewProgramService(store, store, validate)
	deps.StudentService = appServices.NewStudentService(store, store, validate)
	deps.RegistryService = appServices.NewRegistryService(store)

	deps.CollegeController = appControllers.NewCollegeController(deps.CollegeService, deps.RegistryService)
	deps.ProgramController = appControllers.NewProgramController(deps.ProgramService, deps.RegistryService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.RegistryController = appControllers.NewRegistryController(deps.RegistryService)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	return NewRouter(deps)
}

// NewRouter builds the engine with the request logger, panic recovery and API routes.
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), appMiddleware.Recovery())

	appRoutes.SetupRouter(router,
		deps.CollegeController,
		deps.ProgramController,
		deps.StudentController,
		deps.RegistryController,
	)

	return router
}

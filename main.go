package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-content-backend/api"
	"github.com/rpupo63/portfolio-content-backend/config"
	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
	"github.com/rpupo63/portfolio-content-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)
	log.Info().Msg("Initializing app...")

	ctx := context.Background()
	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		if err := loadSecrets(ctx, c, path); err != nil {
			log.Fatal().Err(err).Msg("Error loading SSM parameters")
		}
	}

	if dsn := config.GetString(c, "SENTRY_DSN", ""); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.GetString(c, "ENVIRONMENT", "development"),
		}); err != nil {
			log.Error().Err(err).Msg("Error initializing Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := openDatabase(c)
	if err != nil {
		log.Fatal().Err(err).Str("dbType", config.GetString(c, "DB_TYPE", "")).Msg("Error connecting to database")
	}
	currentDB := database.New(db)
	defer currentDB.Close()

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATED_QUERY_PATH", "./query")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	if config.GetBool(c, "RUN_MIGRATIONS", true) {
		if err := currentDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Error running migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	collaborators, err := buildCollaborators(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing external services")
	}

	// Room for both the listener and the signal goroutine, so neither blocks after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(currentDB, c, collaborators)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(c, "LOG_FORMAT", "json") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func loadSecrets(ctx context.Context, c map[string]string, path string) error {
	client, err := config.NewSSMClient(ctx, config.GetString(c, "AWS_REGION", ""))
	if err != nil {
		return err
	}
	n, err := config.LoadSSMParameters(ctx, client, c, path)
	if err != nil {
		return err
	}
	log.Info().Int("parameters", n).Str("path", path).Msg("Loaded SSM parameters")
	return nil
}

// openDatabase connects to the store selected by DB_TYPE.
func openDatabase(c map[string]string) (*gorm.DB, error) {
	gormLogger := database.NewLogger(logger.Warn, config.GetDuration(c, "DB_SLOW_THRESHOLD", 10*time.Second))

	switch dbType := config.GetString(c, "DB_TYPE", "sqlite"); dbType {
	case "postgres":
		return database.OpenPostgres(database.PostgresOptions{
			DSN:          config.GetString(c, "DATABASE_URL", ""),
			ReplicaDSNs:  config.GetStrings(c, "DATABASE_REPLICA_URLS"),
			Logger:       gormLogger,
			MaxOpenConns: config.GetInt(c, "DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: config.GetInt(c, "DB_MAX_IDLE_CONNS", 5),
			ConnMaxLife:  config.GetDuration(c, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		})
	case "supa":
		log.Info().Msg("Connecting to Supabase database...")
		return database.OpenPostgres(database.PostgresOptions{
			DSN: database.SupabaseDSN(
				config.GetString(c, "SUPABASE_DB_HOST", ""),
				config.GetString(c, "SUPABASE_DB_USER", ""),
				config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
				config.GetString(c, "SUPABASE_DB_NAME", ""),
				config.GetString(c, "SUPABASE_DB_PORT", "5432"),
			),
			Logger:       gormLogger,
			MaxOpenConns: config.GetInt(c, "DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: config.GetInt(c, "DB_MAX_IDLE_CONNS", 5),
		})
	case "sqlite":
		return database.OpenSQLite(database.SQLiteOptions{
			Path:         config.GetString(c, "SQLITE_PATH", "portfolio.db"),
			Logger:       gormLogger,
			MaxOpenConns: config.GetInt(c, "DB_MAX_OPEN_CONNS", 4),
		})
	default:
		return nil, eris.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// buildCollaborators wires the optional email, SMS and media services. Each is skipped when
// its credentials are missing.
func buildCollaborators(ctx context.Context, c map[string]string) (api.Collaborators, error) {
	var (
		collaborators api.Collaborators
		notifiers     services.MultiNotifier
	)

	if key := config.GetString(c, "RESEND_API_KEY", ""); key != "" {
		mailer, err := services.NewResendMailer(services.ResendConfig{
			APIKey:    key,
			FromEmail: config.GetString(c, "RESEND_FROM_EMAIL", ""),
			Timeout:   time.Duration(config.GetInt(c, "EMAIL_TIMEOUT_SECONDS", 10)) * time.Second,
		}, nil)
		if err != nil {
			return collaborators, err
		}
		to := config.GetStrings(c, "CONTACT_NOTIFY_EMAIL")
		if len(to) == 0 {
			return collaborators, eris.New("CONTACT_NOTIFY_EMAIL is required when RESEND_API_KEY is set")
		}
		notifiers = append(notifiers, services.NewEmailNotifier(mailer, to...))
	} else {
		log.Warn().Msg("RESEND_API_KEY not set; contact emails are disabled")
	}

	if sid := config.GetString(c, "TWILIO_ACCOUNT_SID", ""); sid != "" {
		twilioCfg := services.TwilioConfig{
			AccountSID: sid,
			AuthToken:  config.GetString(c, "TWILIO_AUTH_TOKEN", ""),
			FromNumber: config.GetString(c, "TWILIO_FROM_NUMBER", ""),
			ToNumber:   config.GetString(c, "CONTACT_NOTIFY_PHONE", ""),
		}
		notifiers = append(notifiers, services.NewSMSNotifier(services.NewTwilioClient(twilioCfg), twilioCfg.FromNumber, twilioCfg.ToNumber))
	}

	switch len(notifiers) {
	case 0:
	case 1:
		collaborators.Notifier = notifiers[0]
	default:
		collaborators.Notifier = notifiers
	}

	if bucket := config.GetString(c, "MEDIA_BUCKET", ""); bucket != "" {
		region := config.GetString(c, "AWS_REGION", "us-east-1")
		client, err := services.NewS3Client(ctx, region)
		if err != nil {
			return collaborators, err
		}
		store, err := services.NewS3MediaStore(client, services.MediaConfig{
			Bucket:        bucket,
			Region:        region,
			PublicBaseURL: config.GetString(c, "MEDIA_PUBLIC_BASE_URL", ""),
		})
		if err != nil {
			return collaborators, err
		}
		collaborators.MediaStore = store
	}

	return collaborators, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

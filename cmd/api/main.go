package main

import (
	"expvar"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"bakehouse/internal/assist"
	"bakehouse/internal/auth"
	"bakehouse/internal/db"
	"bakehouse/internal/genai"
	"bakehouse/internal/mailer"
	"bakehouse/internal/ratelimiter"
	"bakehouse/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

func loadRateLimiterConfig() ratelimiter.Config {
	cfg := ratelimiter.Config{
		RequestsPerTimeFrame: 200,
		TimeFrame:            5 * time.Second,
		Enabled:              false,
	}
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.RequestsPerTimeFrame = parsed
		}
	}
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = parsed
		}
	}
	return cfg
}

// newLogger builds a colored console logger for stdout.
func newLogger() *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	return zap.New(core).Sugar()
}

//	@title			Bakehouse API
//	@description	Storefront and back-office API for the Bakehouse bakery.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	maxConns := int32(10)
	if val := os.Getenv("DB_MAX_CONNS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid value for DB_MAX_CONNS: %v", err)
		}
		maxConns = int32(parsed)
	}

	smtpPort := 587
	if val := os.Getenv("SMTP_PORT"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid value for SMTP_PORT: %v", err)
		}
		smtpPort = parsed
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    maxConns,
			maxIdleTime: getenvDefault("DB_MAX_IDLE_TIME", "15m"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     smtpPort,
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  time.Hour * 24 * 3,
				refreshTokenExp: time.Hour * 24 * 9,
				iss:             "Bakehouse",
			},
		},
		assistant: assistantConfig{
			apiKey:  os.Getenv("ASSISTANT_API_KEY"),
			model:   getenvDefault("ASSISTANT_MODEL", "gemini-1.5-flash"),
			baseURL: os.Getenv("ASSISTANT_BASE_URL"),
		},
		rateLimiter: loadRateLimiterConfig(),
	}

	logger := newLogger()
	defer logger.Sync()

	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	storage := store.NewStorage(pool, os.Getenv("ORDER_REF_SALT"))

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		logger.Fatal(err)
	}

	mailClient, err := mailer.NewSMTPClient(
		cfg.mail.smtp.host,
		cfg.mail.smtp.port,
		cfg.mail.smtp.username,
		cfg.mail.smtp.password,
		cfg.mail.fromEmail,
	)
	if err != nil {
		logger.Fatal(err)
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	// The generative backend is optional: without an API key the assistant
	// endpoint still works on the deterministic extractor.
	var completer assist.TextCompleter
	if cfg.assistant.apiKey != "" {
		completer = genai.NewClient(cfg.assistant.apiKey, cfg.assistant.model, cfg.assistant.baseURL)
		logger.Infow("generative assistant enabled", "model", cfg.assistant.model)
	} else {
		logger.Info("no assistant API key set, chat runs on keyword rules only")
	}

	ratings := orderRatings{orders: storage.Orders}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		media:         newCloudinaryMedia(cld, uploadFolder),
		mailer:        mailClient,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		chat:          assist.NewService(storage.Products, storage.Subcategories, ratings),
		assistant:     assist.NewAssistantService(completer, storage.Products, storage.Subcategories, ratings),
	}

	// Metrics at /v1/debug/vars, behind basic auth.
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return pool.Stat()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

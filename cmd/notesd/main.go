package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *Config
	bunDB  *bun.DB
	repo   notes.RepositoryManager
	auther *notes.Auther
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("notesd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := LoadConfig()

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.config.Addr)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*notes.User)(nil))
	persistence.RegisterModel((*notes.Note)(nil))

	client, err := persistence.New(app.config.GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(notes.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = notes.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

type userStoreAdapter struct {
	users notes.Users
}

func (a userStoreAdapter) GetByIdentifier(ctx context.Context, identifier string) (*notes.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func WithHTTPServer(ctx context.Context, app *App) error {
	userProvider := notes.NewUserProvider(userStoreAdapter{users: app.repo.Users()})
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	auther := notes.NewAuthenticator(userProvider, app.config)
	auther.WithLogger(app.GetLogger("auth"))
	app.auther = auther

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	protected := notes.ProtectedRoute(
		app.config,
		auther.TokenService(),
		notes.MakeAPIAuthErrorHandler(app.GetLogger("gate")),
	)

	authController := notes.NewAuthController(
		notes.WithAuthRepo(app.repo),
		notes.WithAuthAuther(auther),
		notes.WithAuthTokenService(auther.TokenService()),
		notes.WithAuthLogger(app.GetLogger("auth:ctrl")),
		notes.WithAuthContextKey(app.config.GetContextKey()),
	)
	authController.RegisterRoutes(srv.Router().Group("/api/auth"), protected)

	notesController := notes.NewNotesController(
		notes.WithNotesStore(app.repo.Notes()),
		notes.WithNotesLogger(app.GetLogger("notes:ctrl")),
		notes.WithNotesContextKey(app.config.GetContextKey()),
	)
	notesController.RegisterRoutes(srv.Router().Group("/api/notes"), protected)

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

// Config is the process configuration, read from the environment once at
// startup.
type Config struct {
	SigningKey string        `json:"-"`
	TokenTTL   time.Duration `json:"token_ttl"`
	Issuer     string        `json:"issuer"`
	Audience   []string      `json:"audience"`
	DSN        string        `json:"dsn"`
	Addr       string        `json:"addr"`
	Debug      bool          `json:"debug"`
}

// LoadConfig reads the environment. A missing signing key is a hard
// startup failure: the process never falls back to a default secret.
func LoadConfig() *Config {
	signingKey := os.Getenv("NOTES_SIGNING_KEY")
	if signingKey == "" {
		panic("NOTES: configuration: NOTES_SIGNING_KEY is required.")
	}

	ttl := notes.DefaultTokenTTL
	if raw := os.Getenv("NOTES_TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			panic(fmt.Sprintf("NOTES: configuration: invalid NOTES_TOKEN_TTL %q: %s", raw, err))
		}
		ttl = parsed
	}

	return &Config{
		SigningKey: signingKey,
		TokenTTL:   ttl,
		Issuer:     envOrDefault("NOTES_ISSUER", "go-notes"),
		DSN:        envOrDefault("NOTES_DSN", "file:notes.db?cache=shared"),
		Addr:       envOrDefault("NOTES_ADDR", ":8080"),
		Debug:      os.Getenv("NOTES_DEBUG") == "true",
	}
}

func envOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func (c *Config) GetSigningKey() string { return c.SigningKey }

func (c *Config) GetContextKey() string { return "user" }

func (c *Config) GetTokenTTL() time.Duration { return c.TokenTTL }

func (c *Config) GetTokenLookup() string { return "header:" + router.HeaderAuthorization }

func (c *Config) GetAuthScheme() string { return "Bearer" }

func (c *Config) GetIssuer() string { return c.Issuer }

func (c *Config) GetAudience() []string { return c.Audience }

func (c *Config) GetPersistence() *PersistenceConfig {
	return &PersistenceConfig{
		Debug:  c.Debug,
		Driver: "sqlite",
		DSN:    c.DSN,
	}
}

// PersistenceConfig satisfies the persistence client's config contract.
type PersistenceConfig struct {
	Debug  bool   `json:"debug"`
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

func (p *PersistenceConfig) GetDebug() bool { return p.Debug }

func (p *PersistenceConfig) GetDriver() string { return p.Driver }

func (p *PersistenceConfig) GetServer() string { return p.DSN }

func (p *PersistenceConfig) GetDatabase() string { return "" }

func (p *PersistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }

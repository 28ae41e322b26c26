package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"advancedapi/internal/cache"
	"advancedapi/internal/config"
	"advancedapi/internal/db"
	"advancedapi/internal/logging"
	"advancedapi/internal/model"
	"advancedapi/internal/repository"
	"advancedapi/internal/service"
	"advancedapi/internal/tmdb"
)

// adminSeed is read from SEED_ADMIN_* variables. An empty email skips the admin bootstrap.
type adminSeed struct {
	Email    string
	Username string
	Password string
}

func main() {
	pages := flag.Int("pages", 1, "number of TMDB popular pages to import (1-20)")
	skipMovies := flag.Bool("skip-movies", false, "only bootstrap the admin user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Msg("starting seed")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect database")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logging.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()

	userRepo := repository.NewUserRepository(gormDB)
	admin := adminSeed{
		Email:    os.Getenv("SEED_ADMIN_EMAIL"),
		Username: os.Getenv("SEED_ADMIN_USERNAME"),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
	if admin.Email != "" {
		created, err := seedAdmin(ctx, userRepo, admin)
		if err != nil {
			logging.Fatal().Err(err).Msg("seed admin")
		}
		logging.Info().Str("email", admin.Email).Bool("created", created).Msg("admin user ready")
	}

	if *skipMovies {
		return
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	provider := tmdb.New(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		CacheTTL:     cfg.CacheTTL,
	}, cacheClient)
	if !provider.Enabled() {
		logging.Warn().Msg("TMDB_API_KEY not set, skipping movie import")
		return
	}

	importer := service.NewImportService(repository.NewMovieRepository(gormDB), provider)
	summary, err := importer.ImportPopular(ctx, *pages, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("import movies")
	}

	logging.Info().
		Int("pages", summary.Pages).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int64("catalog_size", summary.CatalogSize).
		Msg("seed completed")
}

// seedAdmin creates the admin user, or promotes and reactivates an existing one with the same email.
func seedAdmin(ctx context.Context, repo repository.UserRepository, seed adminSeed) (bool, error) {
	existing, err := repo.FindByEmail(ctx, seed.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if existing != nil {
		existing.Role = model.RoleAdmin
		existing.IsActive = true
		return false, repo.Update(ctx, existing)
	}

	if len(seed.Password) < 6 {
		return false, errors.New("SEED_ADMIN_PASSWORD must be at least 6 characters")
	}
	username := seed.Username
	if username == "" {
		username = strings.SplitN(seed.Email, "@", 2)[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	user := &model.User{
		Username:     username,
		Email:        strings.ToLower(seed.Email),
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	return true, repo.Create(ctx, user)
}

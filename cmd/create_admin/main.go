// Command create_admin creates a staff account. Flags override the
// ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD environment variables.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"nexus/internal/config"
	"nexus/internal/database"
	"nexus/internal/domain"
	"nexus/internal/modules/auth"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	name := firstNonEmpty(*username, os.Getenv("ADMIN_USERNAME"), "admin")
	mail := firstNonEmpty(*email, os.Getenv("ADMIN_EMAIL"), "admin@example.com")
	pass := *password
	if pass == "" {
		pass = os.Getenv("ADMIN_PASSWORD")
	}
	if len(pass) < 8 {
		logger.Fatal().Msg("admin password must be set (--password or ADMIN_PASSWORD) and at least 8 characters")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	exists, err := users.ExistsByUsername(ctx, name)
	if err != nil {
		logger.Fatal().Err(err).Msg("check existing user")
	}
	if exists {
		logger.Warn().Str("username", name).Msg("user already exists, nothing to do")
		return
	}

	hash, err := auth.HashPassword(pass, bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}
	admin := &domain.User{
		Username:     name,
		Email:        mail,
		PasswordHash: hash,
		IsStaff:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Fatal().Err(err).Msg("create admin")
	}
	logger.Info().Int64("id", admin.ID).Str("username", name).Str("email", admin.Email).Msg("admin created")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Command regadmin bootstraps the first admin account. It prompts for the
// password without echo and creates the user directly against the database;
// notifications stay disabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/config"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/models"
	"github.com/svalekar/voterreg/internal/server/notify"
	"github.com/svalekar/voterreg/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {

	email := flag.String("email", "", "admin email (required)")
	firstName := flag.String("first-name", "Admin", "admin first name")
	lastName := flag.String("last-name", "", "admin last name")
	phone := flag.String("phone", "", "admin phone")
	dsn := flag.String("d", "", "database DSN (overrides config)")
	flag.Parse()

	if *email == "" {
		return fmt.Errorf("email is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("password read error: %w", err)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	ctx := context.Background()

	pool, err := db.NewPool(cfg)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer pool.Close()

	if err := pool.RunMigrations(ctx); err != nil {
		return err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	svc := services.NewUserService(pool, db.NewPostgresRepositoryManager(), notify.NoOp{}, logger)

	u := &models.User{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}

	created, err := svc.Create(ctx, u, string(password), nil)
	if err != nil {
		return fmt.Errorf("admin creation error: %w", err)
	}

	fmt.Printf("admin user %d (%s) created\n", created.ID, created.Email)
	return nil
}

// Package main is the entry point for the Storefront admin CLI.
// This tool bootstraps administrator accounts and token signing secrets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository"
	"github.com/prn-tf/storefront/internal/repository/postgres"
	"github.com/prn-tf/storefront/internal/repository/sqlite"
	"github.com/prn-tf/storefront/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version":
		fmt.Printf("Storefront Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create-admin":
		err = createAdmin(os.Args[2:])

	case "gen-secret":
		err = genSecret(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("STOREFRONT_CONFIG"), "path to the configuration file")
	username := fs.String("username", "", "admin username (required)")
	email := fs.String("email", "", "admin email (required)")
	fullName := fs.String("full-name", "", "admin full name")
	password := fs.String("password", os.Getenv("STOREFRONT_ADMIN_PASSWORD"), "admin password (or STOREFRONT_ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" || *password == "" {
		fs.Usage()
		return errors.New("username, email and password are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opened, err := repository.NewFactory(cfg.Database, logger).
		Register(sqlite.Driver, sqlite.Open).
		Register(postgres.Driver, postgres.Open).
		Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = opened.Database.Close() }()

	users := service.NewUserService(
		opened.Repos.User,
		crypto.NewPasswordHasher(cfg.Auth.BcryptCost),
		service.NewPaginator(cfg.Pagination),
		logger,
	)

	user, err := users.Create(ctx, service.CreateUserInput{
		Username: *username,
		Email:    *email,
		FullName: *fullName,
		Password: *password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %q with id %d\n", user.Username, user.ID)
	return nil
}

func genSecret(args []string) error {
	fs := flag.NewFlagSet("gen-secret", flag.ContinueOnError)
	size := fs.Int("bytes", crypto.MinSecretLength, "number of random bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := crypto.GenerateSecret(*size)
	if err != nil {
		return err
	}
	fmt.Println(secret)
	return nil
}

func printUsage() {
	fmt.Println(`Storefront Admin CLI

Usage:
  storefront-admin <command> [arguments]

Commands:
  create-admin  Create an administrator account
  gen-secret    Print a random token signing secret
  version       Print version information
  help          Show this help message

Examples:
  storefront-admin create-admin --username admin --email admin@example.com --password s3cret-pass
  storefront-admin gen-secret --bytes 48

Use "storefront-admin <command> --help" for more information about a command.`)
}

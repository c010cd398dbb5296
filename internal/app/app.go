package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/andy/billkeep/internal/config"
	"github.com/andy/billkeep/internal/crypto"
	"github.com/andy/billkeep/internal/db"
	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/logger"
	"github.com/andy/billkeep/internal/repository"
	"github.com/andy/billkeep/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Log    zerolog.Logger

	// Repositories
	InvoiceRepo  repository.InvoiceRepository
	SettingsRepo repository.SettingsRepository
	TransferRepo repository.TransferRepository

	// Services
	InvoiceService  service.InvoiceService
	ReportService   service.ReportService
	TransferService service.TransferService
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting encryption key from keyring
// 3. Opening database
// 4. Running migrations
// 5. Creating repositories
// 6. Creating services
func New(ctx context.Context) (*App, error) {
	// Load config from default path
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Output)

	// Get keyring for secure password storage
	keyring := crypto.NewKeyring()

	// Try to get existing encryption key
	password, err := keyring.GetKey()
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		// Store the key in keyring
		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	// Open the database with encryption
	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create repositories
	invoiceRepo := repository.NewInvoiceRepo(database)
	settingsRepo := repository.NewSettingsRepo(database)
	transferRepo := repository.NewTransferRepo(database)

	// Create services with their dependencies
	invoiceService := service.NewInvoiceService(invoiceRepo, log)
	reportService := service.NewReportService(invoiceRepo)
	transferService := service.NewTransferService(invoiceRepo, settingsRepo, transferRepo, log)

	log.Debug().Str("db", cfg.Database.Path).Msg("application initialized")

	return &App{
		Config:          cfg,
		DB:              database,
		Log:             log,
		InvoiceRepo:     invoiceRepo,
		SettingsRepo:    settingsRepo,
		TransferRepo:    transferRepo,
		InvoiceService:  invoiceService,
		ReportService:   reportService,
		TransferService: transferService,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SellerParty builds the configured seller identity for new invoices
func (a *App) SellerParty() domain.Party {
	s := a.Config.Seller
	return domain.Party{
		Name:    s.Name,
		Email:   s.Email,
		Address: s.Address,
		Phone:   s.Phone,
	}
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your billing data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	// Confirm password
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after confirmation
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	// Check if passwords match
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

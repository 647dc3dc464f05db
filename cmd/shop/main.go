package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/storage"
	"storefront/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		email    = flag.String("email", "", "sign in with this email before starting")
		password = flag.String("password", "", "password for -email")
		contact  model.Contact
	)
	flag.StringVar(&contact.Name, "name", "", "checkout name")
	flag.StringVar(&contact.Email, "contact-email", "", "checkout email (defaults to -email)")
	flag.StringVar(&contact.Phone, "phone", "", "checkout phone")
	flag.StringVar(&contact.Address, "address", "", "checkout address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log lines would corrupt the screen, so they go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.Shop.LogFile != "" {
		f, err := os.OpenFile(cfg.Shop.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := config.NewLoggerTo(cfg.Logger, out)

	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStore()

	a := app.New(ctx, store, app.OptionsFromConfig(cfg, app.SeedFromConfig(ctx, cfg, logger)), logger)
	defer a.Close()

	if *email != "" {
		if _, err := a.Auth.Login(ctx, model.Credentials{Email: *email, Password: *password}); err != nil {
			return fmt.Errorf("sign in failed: %s", a.Auth.LastError())
		}
	}
	if contact.Email == "" {
		contact.Email = *email
	}
	if contact.Name == "" {
		if u := a.Auth.User(); u != nil {
			contact.Name = u.Name
		}
	}

	if _, err := tea.NewProgram(tui.New(a, contact)).Run(); err != nil {
		return fmt.Errorf("terminal storefront failed: %w", err)
	}
	return nil
}

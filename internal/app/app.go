// Package app wires the storefront state into one container that the HTTP
// front end and the terminal storefront share.
package app

import (
	"context"
	"errors"
	"time"

	"storefront/internal/admin"
	"storefront/internal/apiclient"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
)

// Options configures an App.
type Options struct {
	APIBaseURL    string
	APITimeout    time.Duration
	UploadBaseURL string

	// Seed is the catalogue used when neither the remote API nor a local
	// override is available. Nil selects the built-in catalogue.
	Seed []model.Product
}

// App owns every piece of client state. Each part guards itself, so an App
// can be shared between goroutines.
type App struct {
	Store    storage.Store
	Bus      *events.Bus
	API      *apiclient.Client
	Notes    *notify.Center
	Auth     *auth.Manager
	Catalog  *catalog.Provider
	Editor   *catalog.Editor
	Cart     *cart.Store
	Checkout *checkout.Flow
	Admin    *admin.Manager

	uploadBase string
	logger     zerolog.Logger
}

// New hydrates the storefront state from store.
func New(ctx context.Context, store storage.Store, opts Options, logger zerolog.Logger) *App {
	bus := events.NewBus()
	api := apiclient.New(opts.APIBaseURL, opts.APITimeout, logger)
	notes := notify.NewCenter(notify.DefaultCapacity)

	seed := opts.Seed
	if seed == nil {
		seed = catalog.BuiltinSeed()
	}

	session := auth.NewManager(ctx, api, store, logger)
	cartStore := cart.NewStore(ctx, store, logger)

	a := &App{
		Store:      store,
		Bus:        bus,
		API:        api,
		Notes:      notes,
		Auth:       session,
		Catalog:    catalog.NewProvider(ctx, api, store, bus, seed, logger),
		Editor:     catalog.NewEditor(ctx, store, bus, seed, logger),
		Cart:       cartStore,
		Checkout:   checkout.NewFlow(api, session, cartStore, notes, logger),
		Admin:      admin.NewManager(api, notes, logger),
		uploadBase: opts.UploadBaseURL,
		logger:     logger.With().Str("component", "app").Logger(),
	}

	a.logger.Info().
		Str("catalog_source", string(a.Catalog.Source())).
		Int("cart_items", a.Cart.Count()).
		Bool("signed_in", a.Auth.IsAuthenticated()).
		Msg("storefront state hydrated")

	return a
}

// OptionsFromConfig builds Options from configuration.
func OptionsFromConfig(cfg *config.Config, seed []model.Product) Options {
	return Options{
		APIBaseURL:    cfg.API.BaseURL,
		APITimeout:    cfg.API.Timeout,
		UploadBaseURL: cfg.API.UploadBaseURL,
		Seed:          seed,
	}
}

// SeedFromConfig loads the seed catalogue named by cfg. S3 is tried first
// when enabled; any failure falls back to the built-in catalogue.
func SeedFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) []model.Product {
	fileLoader := catalog.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
		} else {
			loader = catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	}

	return catalog.LoadSeed(ctx, loader, cfg.Catalog.SeedPath, logger)
}

// Close detaches listeners.
func (a *App) Close() {
	a.Catalog.Close()
}

// ProductCard is a product as shown on the storefront.
type ProductCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageSrc    string  `json:"imageSrc"`
}

// CartView is the cart panel with its total and item badge.
type CartView struct {
	Lines model.Cart `json:"lines"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

// Home is the storefront home view.
type Home struct {
	Products []ProductCard  `json:"products"`
	Source   catalog.Source `json:"source"`
	Cart     CartView       `json:"cart"`
	Checkout *checkout.View `json:"checkout,omitempty"`
	User     *model.User    `json:"user,omitempty"`
}

// Products loads the catalogue and returns it as product cards.
func (a *App) Products(ctx context.Context) ([]ProductCard, catalog.Source) {
	products, source := a.Catalog.Load(ctx)

	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			ImageSrc:    catalog.ImageSource(a.uploadBase, p.ImageURL),
		})
	}
	return cards, source
}

// CartView returns the current cart.
func (a *App) CartView() CartView {
	lines := a.Cart.Lines()
	return CartView{Lines: lines, Total: cart.Total(lines), Count: cart.Count(lines)}
}

// Home assembles the storefront home view.
func (a *App) Home(ctx context.Context) Home {
	cards, source := a.Products(ctx)

	home := Home{
		Products: cards,
		Source:   source,
		Cart:     a.CartView(),
		User:     a.Auth.User(),
	}

	view, err := a.Checkout.View()
	if err == nil {
		home.Checkout = &view
	} else if !errors.Is(err, model.ErrEmptyCart) {
		a.logger.Warn().Err(err).Msg("checkout view unavailable")
	}
	return home
}

// AddToCart adds product id from the active catalogue.
func (a *App) AddToCart(ctx context.Context, id string) (model.Cart, error) {
	return a.Cart.Add(ctx, a.Catalog.Products(), id)
}

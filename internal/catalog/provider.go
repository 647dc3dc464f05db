// Package catalog resolves the list of sellable products and hosts the local
// catalogue edit surface.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Source identifies where the active product list came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceOverride Source = "override"
	SourceSeed     Source = "seed"
)

// RemoteCatalog fetches products from the remote API. Token reports the
// bearer token of the current session, if any.
type RemoteCatalog interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	Token() string
}

// Provider owns the active product list. Each Load resolves a single source
// by precedence: remote (when a session token exists and the fetch succeeds),
// then the locally edited override, then the seed list.
type Provider struct {
	mu       sync.RWMutex
	products []model.Product
	source   Source

	remote RemoteCatalog
	store  storage.Store
	seed   []model.Product
	group  singleflight.Group
	logger zerolog.Logger

	unsubscribe func()
	closeOnce   sync.Once
}

// NewProvider creates a provider and subscribes it to events.CatalogChanged
// on bus. The initial list is the override when one is stored, else seed.
// A nil seed selects the built-in catalogue.
func NewProvider(ctx context.Context, remote RemoteCatalog, store storage.Store, bus *events.Bus, seed []model.Product, logger zerolog.Logger) *Provider {
	if seed == nil {
		seed = BuiltinSeed()
	}

	p := &Provider{
		remote: remote,
		store:  store,
		seed:   cloneProducts(seed),
		logger: logger.With().Str("component", "catalog").Logger(),
	}

	if override, ok := p.readOverride(ctx); ok {
		p.set(override, SourceOverride)
	} else {
		p.set(p.seed, SourceSeed)
	}

	p.unsubscribe = bus.Subscribe(events.CatalogChanged, p.onCatalogChanged)
	return p
}

// Load resolves the catalogue source and returns the active list. Concurrent
// callers share one remote fetch, which is detached from the caller's
// cancellation and bounded by the API client timeout.
func (p *Provider) Load(ctx context.Context) ([]model.Product, Source) {
	v, _, shared := p.group.Do("load", func() (any, error) {
		return p.resolve(context.WithoutCancel(ctx)), nil
	})
	if shared {
		p.logger.Debug().Msg("catalogue load shared with a concurrent caller")
	}

	r := v.(resolution)
	return cloneProducts(r.products), r.source
}

type resolution struct {
	products []model.Product
	source   Source
}

func (p *Provider) resolve(ctx context.Context) resolution {
	if p.remote != nil && p.remote.Token() != "" {
		products, err := p.remote.ListProducts(ctx)
		if err == nil {
			p.set(products, SourceRemote)
			p.logger.Info().Int("products", len(products)).Msg("catalogue loaded from remote API")
			return resolution{products, SourceRemote}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			p.mu.RLock()
			current, source := cloneProducts(p.products), p.source
			p.mu.RUnlock()
			if source == SourceRemote {
				p.logger.Warn().Err(err).Msg("remote catalogue fetch interrupted, keeping current list")
				return resolution{current, SourceRemote}
			}
		}
		p.logger.Warn().Err(err).Msg("remote catalogue unavailable, using local catalogue")
	}

	if override, ok := p.readOverride(ctx); ok {
		p.set(override, SourceOverride)
		return resolution{override, SourceOverride}
	}

	p.set(p.seed, SourceSeed)
	return resolution{p.seed, SourceSeed}
}

// readOverride reports the stored override, if present and parsable.
func (p *Provider) readOverride(ctx context.Context) ([]model.Product, bool) {
	var override []model.Product
	found, err := storage.GetJSON(ctx, p.store, storage.KeyEditedProducts, &override)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to read catalogue override")
		return nil, false
	}
	if !found {
		return nil, false
	}
	if override == nil {
		override = []model.Product{}
	}
	return override, true
}

// onCatalogChanged re-reads the override: a stored override replaces the
// active list exactly, a missing one restores the seed list, and an
// unreadable one keeps the current list.
func (p *Provider) onCatalogChanged() {
	ctx := context.Background()

	var override []model.Product
	found, err := storage.GetJSON(ctx, p.store, storage.KeyEditedProducts, &override)
	switch {
	case err != nil:
		p.logger.Warn().Err(err).Msg("failed to parse edited catalogue, keeping current list")
	case !found:
		p.set(p.seed, SourceSeed)
		p.logger.Info().Msg("catalogue override removed, using seed list")
	default:
		if override == nil {
			override = []model.Product{}
		}
		p.set(override, SourceOverride)
		p.logger.Info().Int("products", len(override)).Msg("catalogue override applied")
	}
}

func (p *Provider) set(products []model.Product, source Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products = cloneProducts(products)
	p.source = source
}

// Products returns a copy of the active list.
func (p *Provider) Products() []model.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneProducts(p.products)
}

// Source reports where the active list came from.
func (p *Provider) Source() Source {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}

// Find looks up a product in the active list.
func (p *Provider) Find(id string) (model.Product, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, product := range p.products {
		if product.ID == id {
			return product, true
		}
	}
	return model.Product{}, false
}

// Close detaches the provider from the events bus.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
	})
}

// ImageSource returns the URL of a product image: the upload base followed by
// the last path segment of ref.
func ImageSource(uploadBase, ref string) string {
	if ref == "" {
		return ""
	}
	name := ref[strings.LastIndex(ref, "/")+1:]
	return uploadBase + name
}

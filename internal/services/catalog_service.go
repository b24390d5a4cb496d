// internal/services/catalog_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/cache"
	"github.com/javajoker/license-server/internal/config"
)

const productsCacheKey = "catalog:products"

// Product is one entry of the shop's plugin list.
type Product struct {
	SWID string `json:"SWID"`
	Name string `json:"pluginName"`
}

// ProductCatalog lists the products licenses can be issued for.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// WooCommerceCatalog reads the plugin list from the shop's REST API.
type WooCommerceCatalog struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewWooCommerceCatalog(cfg config.CatalogConfig) *WooCommerceCatalog {
	return &WooCommerceCatalog{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *WooCommerceCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wp-json/wp/v3/plugins", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return products, nil
}

// CachedCatalog keeps the product list in a cache for ttl. Cache failures
// fall through to the wrapped catalog.
type CachedCatalog struct {
	next  ProductCatalog
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedCatalog(next ProductCatalog, c cache.Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: c, ttl: ttl}
}

func (c *CachedCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	raw, err := c.cache.Get(ctx, productsCacheKey)
	if err == nil {
		var products []Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logrus.WithError(err).Warn("Product cache read failed")
	}

	products, err := c.next.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := c.cache.Set(ctx, productsCacheKey, raw, c.ttl); err != nil {
			logrus.WithError(err).Warn("Product cache write failed")
		}
	}
	return products, nil
}

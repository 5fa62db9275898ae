package cache

import (
	"context"
	"database/sql"
	"log"
	"sync"

	"github.com/mattjboland/boutique-ado/src/products/domain/entity"
)

// ProductCache cache en memoria del catálogo de productos.
// Se precarga al arrancar; los misses caen al repositorio Postgres.
type ProductCache struct {
	products map[int64]entity.Product
	mu       sync.RWMutex
}

// NewProductCache crea un nuevo cache de productos
func NewProductCache() *ProductCache {
	return &ProductCache{
		products: make(map[int64]entity.Product),
	}
}

// LoadFromDB carga el catálogo desde la base de datos
func (c *ProductCache) LoadFromDB(db *sql.DB) error {
	log.Println("🔄 Loading product catalog into cache...")

	query := `
		SELECT id, sku, name, price, has_sizes
		FROM products
	`

	rows, err := db.Query(query)
	if err != nil {
		log.Printf("⚠️  Warning: Could not load products: %v", err)
		log.Println("⚠️  Continuing without product cache")
		return err
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var p entity.Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.HasSizes)
		if err != nil {
			log.Printf("⚠️  Error scanning product: %v", err)
			continue
		}
		c.products[p.ID] = p
		count++
	}

	log.Printf("✅ Loaded %d products into cache", count)

	return nil
}

// Get obtiene un producto del cache por ID
func (c *ProductCache) Get(id int64) (entity.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	return p, ok
}

// Put agrega o actualiza un producto en el cache
func (c *ProductCache) Put(p entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[p.ID] = p
}

// Invalidate elimina un producto del cache (producto borrado del catálogo)
func (c *ProductCache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.products, id)
}

// CachedProductRepository decora un ProductRepository con el cache en memoria
type CachedProductRepository struct {
	cache    *ProductCache
	fallback FallbackRepository
}

// FallbackRepository es el repositorio que resuelve los misses del cache
type FallbackRepository interface {
	FindByID(ctx context.Context, productID int64) (*entity.Product, error)
}

// NewCachedProductRepository crea el repositorio decorado
func NewCachedProductRepository(cache *ProductCache, fallback FallbackRepository) *CachedProductRepository {
	return &CachedProductRepository{
		cache:    cache,
		fallback: fallback,
	}
}

// FindByID resuelve primero contra el cache y cae a Postgres en miss.
// Un ErrProductNotFound del fallback invalida la entrada cacheada.
func (r *CachedProductRepository) FindByID(ctx context.Context, productID int64) (*entity.Product, error) {
	if p, ok := r.cache.Get(productID); ok {
		return &p, nil
	}

	p, err := r.fallback.FindByID(ctx, productID)
	if err == entity.ErrProductNotFound {
		r.cache.Invalidate(productID)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	r.cache.Put(*p)
	return p, nil
}

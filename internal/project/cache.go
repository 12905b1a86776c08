package project

import (
	"context"
	"sync"

	"github.com/untibullet/pr-status-sync/internal/models"
)

type cacheEntry struct {
	catalog *models.Catalog
	err     error
}

// Cache мемоизирует каталоги проектов в пределах одного запуска.
// Ошибка загрузки тоже запоминается, чтобы не повторять запрос.
type Cache struct {
	resolver *Resolver

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache создает пустой кэш поверх Resolver
func NewCache(resolver *Resolver) *Cache {
	return &Cache{
		resolver: resolver,
		entries:  make(map[string]cacheEntry),
	}
}

// Get возвращает каталог проекта, загружая его при первом обращении
func (c *Cache) Get(ctx context.Context, projectID string) (*models.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[projectID]; ok {
		return e.catalog, e.err
	}

	catalog, err := c.resolver.Resolve(ctx, projectID)
	c.entries[projectID] = cacheEntry{catalog: catalog, err: err}
	return catalog, err
}

// Len возвращает количество закэшированных проектов
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

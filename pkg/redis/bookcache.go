package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/sage/pkg/models"
)

// BookCache holds the ephemeral read-side state for seller books: recently-moved
// markers (short TTL, cosmetic highlight for the board) and the cached seller
// KPI aggregates. Every operation is best-effort; a Redis failure degrades to a
// cache miss and never fails the business operation.
type BookCache struct {
	client           *Client
	logger           ectologger.Logger
	recentlyMovedTTL time.Duration
	kpiTTL           time.Duration
}

// NewBookCache creates a new book cache
func NewBookCache(client *Client, logger ectologger.Logger, recentlyMovedTTL, kpiTTL time.Duration) *BookCache {
	return &BookCache{
		client:           client,
		logger:           logger,
		recentlyMovedTTL: recentlyMovedTTL,
		kpiTTL:           kpiTTL,
	}
}

func movedKey(tenantID, relationshipID string) string {
	return fmt.Sprintf("sage:moved:%s:%s", tenantID, relationshipID)
}

func kpiKey(tenantID, sellerID string) string {
	return fmt.Sprintf("sage:kpi:%s:%s", tenantID, sellerID)
}

// MarkRecentlyMoved marks a relationship as recently moved
func (c *BookCache) MarkRecentlyMoved(ctx context.Context, tenantID, relationshipID string) {
	if err := c.client.Set(ctx, movedKey(tenantID, relationshipID), "1", c.recentlyMovedTTL); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to set recently-moved marker")
	}
}

// RecentlyMoved returns the set of relationship IDs whose marker has not yet expired
func (c *BookCache) RecentlyMoved(ctx context.Context, tenantID string, relationshipIDs []string) map[string]bool {
	moved := make(map[string]bool, len(relationshipIDs))
	if len(relationshipIDs) == 0 {
		return moved
	}

	keys := make([]string, len(relationshipIDs))
	for i, id := range relationshipIDs {
		keys[i] = movedKey(tenantID, id)
	}

	values, err := c.client.Redis().MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to read recently-moved markers")
		return moved
	}
	for i, v := range values {
		if v != nil {
			moved[relationshipIDs[i]] = true
		}
	}
	return moved
}

// GetSellerKPIs returns cached KPIs for a seller, or ok=false on a miss
func (c *BookCache) GetSellerKPIs(ctx context.Context, tenantID, sellerID string) (*models.SellerKPIs, bool) {
	raw, err := c.client.Get(ctx, kpiKey(tenantID, sellerID))
	if err != nil {
		if err != redis.Nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Failed to read seller KPI cache")
		}
		return nil, false
	}

	var kpis models.SellerKPIs
	if err := json.Unmarshal([]byte(raw), &kpis); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to decode cached seller KPIs")
		return nil, false
	}
	return &kpis, true
}

// SetSellerKPIs caches a seller's KPIs
func (c *BookCache) SetSellerKPIs(ctx context.Context, tenantID, sellerID string, kpis *models.SellerKPIs) {
	raw, err := json.Marshal(kpis)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, kpiKey(tenantID, sellerID), raw, c.kpiTTL); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to cache seller KPIs")
	}
}

// InvalidateSellerKPIs drops the cached KPIs for a seller
func (c *BookCache) InvalidateSellerKPIs(ctx context.Context, tenantID string, sellerIDs ...string) {
	if len(sellerIDs) == 0 {
		return
	}
	keys := make([]string, len(sellerIDs))
	for i, id := range sellerIDs {
		keys[i] = kpiKey(tenantID, id)
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate seller KPI cache")
	}
}

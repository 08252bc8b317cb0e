// Package book assembles the seller book view: the seller's relationships and
// original snapshot joined with account data, plus the revenue KPIs computed
// over them.
package book

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/redis"
	"github.com/Ramsey-B/sage/pkg/revenue"
	"github.com/Ramsey-B/sage/pkg/status"
)

// RelationshipRepo defines the relationship reads the book view needs
type RelationshipRepo interface {
	ListBySeller(ctx context.Context, tenantID, sellerID string) ([]models.RelationshipRow, error)
}

// OriginalRepo defines the snapshot reads the book view needs
type OriginalRepo interface {
	ListBySeller(ctx context.Context, tenantID, sellerID string) ([]models.RelationshipRow, error)
}

// SellerRepo defines the seller reads the book view needs
type SellerRepo interface {
	Get(ctx context.Context, tenantID, id string) (*models.Seller, error)
}

// RevenueRepo defines the tenant-wide revenue reads the book view needs
type RevenueRepo interface {
	CompanyTotal(ctx context.Context, tenantID string) (float64, error)
}

// Service builds seller book views
type Service struct {
	sellers       SellerRepo
	relationships RelationshipRepo
	originals     OriginalRepo
	revenues      RevenueRepo
	cache         *redis.BookCache
	logger        ectologger.Logger
}

// NewService creates a new book service
func NewService(sellers SellerRepo, relationships RelationshipRepo, originals OriginalRepo, revenues RevenueRepo, cache *redis.BookCache, logger ectologger.Logger) *Service {
	return &Service{
		sellers:       sellers,
		relationships: relationships,
		originals:     originals,
		revenues:      revenues,
		cache:         cache,
		logger:        logger,
	}
}

// GetSellerBook returns a seller's full book with KPIs. KPIs are served from
// the cache when a fresh entry exists; the row listings are always live.
func (s *Service) GetSellerBook(ctx context.Context, tenantID, sellerID string) (*models.SellerBook, error) {
	ctx, span := tracing.StartSpan(ctx, "book.Service.GetSellerBook")
	defer span.End()

	seller, err := s.sellers.Get(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.relationships.ListBySeller(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}
	originals, err := s.originals.ListBySeller(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}

	s.flagRecentlyMoved(ctx, tenantID, rows)

	kpis, cached := s.cache.GetSellerKPIs(ctx, tenantID, sellerID)
	metrics.RecordKPICacheLookup(cached)
	if !cached {
		computed := ComputeKPIs(rows, originals)
		kpis = &computed
		s.cache.SetSellerKPIs(ctx, tenantID, sellerID, kpis)
	}

	return &models.SellerBook{
		Seller:        *seller,
		Relationships: rows,
		Originals:     originals,
		KPIs:          *kpis,
	}, nil
}

// GetSellerKPIs returns just the KPI aggregates for a seller.
func (s *Service) GetSellerKPIs(ctx context.Context, tenantID, sellerID string) (*models.SellerKPIs, error) {
	ctx, span := tracing.StartSpan(ctx, "book.Service.GetSellerKPIs")
	defer span.End()

	if kpis, ok := s.cache.GetSellerKPIs(ctx, tenantID, sellerID); ok {
		metrics.RecordKPICacheLookup(true)
		return kpis, nil
	}
	metrics.RecordKPICacheLookup(false)

	rows, err := s.relationships.ListBySeller(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}
	originals, err := s.originals.ListBySeller(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}

	kpis := ComputeKPIs(rows, originals)
	s.cache.SetSellerKPIs(ctx, tenantID, sellerID, &kpis)
	return &kpis, nil
}

// GetCompanyKPIs returns the tenant-wide revenue aggregates.
func (s *Service) GetCompanyKPIs(ctx context.Context, tenantID string) (*models.CompanyKPIs, error) {
	ctx, span := tracing.StartSpan(ctx, "book.Service.GetCompanyKPIs")
	defer span.End()

	total, err := s.revenues.CompanyTotal(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &models.CompanyKPIs{TotalRevenue: total}, nil
}

func (s *Service) flagRecentlyMoved(ctx context.Context, tenantID string, rows []models.RelationshipRow) {
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	moved := s.cache.RecentlyMoved(ctx, tenantID, ids)
	for i := range rows {
		rows[i].RecentlyMoved = moved[rows[i].ID]
	}
}

// ComputeKPIs computes the revenue aggregates for a book. Book value weights
// each account by its division percentages; full and original values count raw
// revenue.
func ComputeKPIs(rows, originals []models.RelationshipRow) models.SellerKPIs {
	rels, revByAccount := split(rows)
	origRels, origRev := split(originals)

	kpis := models.SellerKPIs{
		BookValue:     revenue.Aggregate(rels, revByAccount, revenue.ModeWeighted),
		FullValue:     revenue.Aggregate(rels, revByAccount, revenue.ModeFull),
		OriginalValue: revenue.Aggregate(origRels, origRev, revenue.ModeFull),
		AccountCount:  len(rels),
	}
	for i := range rels {
		if status.IsMustKeepEquivalent(rels[i].Status) {
			kpis.MustKeepCount++
		}
	}
	return kpis
}

func split(rows []models.RelationshipRow) ([]models.Relationship, map[string]models.AccountRevenue) {
	rels := make([]models.Relationship, len(rows))
	revs := make(map[string]models.AccountRevenue, len(rows))
	for i := range rows {
		rels[i] = rows[i].Relationship
		revs[rows[i].AccountID] = models.AccountRevenue{
			AccountID: rows[i].AccountID,
			TenantID:  rows[i].TenantID,
			ESG:       rows[i].RevenueESG,
			GDT:       rows[i].RevenueGDT,
			GVC:       rows[i].RevenueGVC,
			MSGUS:     rows[i].RevenueMSGUS,
		}
	}
	return rels, revs
}

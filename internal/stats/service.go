package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"

	"campus-ticketing/internal/models"
)

const cacheKey = "public_stats"

// PublicStats is the landing-page counter set: how many events exist, how
// many participant accounts, and how many certificates were earned.
type PublicStats struct {
	Events       int `json:"events"`
	Users        int `json:"users"`
	Certificates int `json:"certificates"`
}

type Service struct {
	db       *bun.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewService(db *bun.DB, redisClient *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

// PublicStats counts events, participant users and attended tickets. The
// result is cached briefly in Redis since the landing page hits this on
// every load.
func (s *Service) PublicStats(ctx context.Context) (*PublicStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats PublicStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	events, err := s.db.NewSelect().Model((*models.Event)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", models.RoleUser).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	certificates, err := s.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("is_attended = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PublicStats{Events: events, Users: users, Certificates: certificates}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return stats, nil
}

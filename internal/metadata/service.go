package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

var (
	ErrNoProvidersConfigured = errors.New("no metadata providers configured")
	ErrNotFound              = errors.New("metadata not found")
)

// HealthService is the interface for central health tracking.
type HealthService interface {
	RegisterItemStr(category, id, name string)
	SetErrorStr(category, id, message string)
	ClearStatusStr(category, id string)
}

// TierPolicy returns the cache tiers for a detail record: movies and ended
// series get the long max-age, ongoing series the short one.
func TierPolicy(cfg config.CacheConfig) TierFunc[Meta] {
	return func(m Meta) Tiers {
		t := Tiers{
			MaxAge:          cfg.MovieMaxAge,
			StaleRevalidate: cfg.StaleRevalidate,
			StaleIfError:    cfg.StaleIfError,
		}
		if m.Type == MediaSeries {
			if m.Ended {
				t.MaxAge = cfg.EndedSeriesMaxAge
			} else {
				t.MaxAge = cfg.OngoingSeriesMaxAge
			}
		}
		return t
	}
}

// Service serves detail lookups through the tiered detail cache.
type Service struct {
	general       *General
	cache         *TieredCache[Meta]
	overlay       *PosterOverlay
	logger        zerolog.Logger
	healthService HealthService
}

// NewService creates the detail service.
func NewService(general *General, overlay *PosterOverlay, cfg config.CacheConfig, logger *zerolog.Logger) *Service {
	return &Service{
		general: general,
		cache: NewTieredCache(TieredCacheConfig[Meta]{
			MaxEntries:   cfg.MaxEntries,
			FetchTimeout: cfg.FetchTimeout,
			TierOf:       TierPolicy(cfg),
		}, *logger),
		overlay: overlay,
		logger:  logger.With().Str("component", "metadata").Logger(),
	}
}

// SetHealthService sets the central health service for registration tracking.
func (s *Service) SetHealthService(hs HealthService) {
	s.healthService = hs
}

// RegisterMetadataProviders registers configured providers with the health service.
func (s *Service) RegisterMetadataProviders() {
	if s.healthService == nil {
		return
	}
	if s.general.IsConfigured() {
		s.healthService.RegisterItemStr("metadata", "tmdb", "TMDB")
		s.logger.Debug().Msg("Registered TMDB with health service")
	}
	s.healthService.RegisterItemStr("metadata", "mdblist", "MDBList")
}

// GetDetail returns the full record for ref, which is either "tmdb:<id>" or
// an IMDb "tt" id. Overrides that depend on the user configuration are
// applied to a copy after the cache.
func (s *Service) GetDetail(ctx context.Context, cfg userconfig.Config, typ MediaType, ref string) (*DetailResult, error) {
	if !s.general.IsConfigured() {
		return nil, ErrNoProvidersConfigured
	}

	tmdbID, err := s.resolveRef(ctx, typ, ref)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%s:%d", cfg.Language, typ, tmdbID)
	meta, tiers, err := s.cache.Get(ctx, key, func(fetchCtx context.Context) (Meta, error) {
		return s.general.Detail(fetchCtx, typ, cfg.Language, tmdbID)
	})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Str("ref", ref).Str("type", string(typ)).Msg("Detail fetch failed")
		}
		return nil, err
	}

	meta = meta.Clone()
	if cfg.HideEpisodeThumbnails {
		for i := range meta.Videos {
			meta.Videos[i].Thumbnail = ""
		}
	}
	if cfg.RPDBKey != "" {
		meta = s.overlay.ApplyOne(ctx, meta, cfg.RPDBKey, cfg.LanguageBase())
	}

	return &DetailResult{
		Meta:            meta,
		MaxAge:          tiers.MaxAge,
		StaleRevalidate: tiers.StaleRevalidate,
		StaleIfError:    tiers.StaleIfError,
	}, nil
}

func (s *Service) resolveRef(ctx context.Context, typ MediaType, ref string) (int, error) {
	if rest, ok := strings.CutPrefix(ref, PrefixTMDB); ok {
		idPart, _, _ := strings.Cut(rest, ":")
		id, err := strconv.Atoi(idPart)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return id, nil
	}

	if strings.HasPrefix(ref, PrefixIMDb) {
		if _, err := strconv.Atoi(ref[len(PrefixIMDb):]); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		id, err := s.general.ResolveIMDb(ctx, typ, ref)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			if errors.Is(err, ErrNotFound) {
				return 0, err
			}
			return 0, fmt.Errorf("resolve %s: %w", ref, err)
		}
		return id, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// ClearCache drops every cached detail record.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("Detail cache cleared")
}

// SweepCache removes records that can no longer be served.
func (s *Service) SweepCache() int {
	return s.cache.Sweep()
}

// CacheLen returns the number of cached detail records.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// IsTMDBConfigured reports whether the general provider is usable.
func (s *Service) IsTMDBConfigured() bool {
	return s.general.IsConfigured()
}

// TestTMDB checks connectivity to the general provider.
func (s *Service) TestTMDB(ctx context.Context) error {
	return s.general.client.Test(ctx)
}

// General returns the general provider adapter.
func (s *Service) General() *General {
	return s.general
}

// Wait blocks until background detail refreshes finish.
func (s *Service) Wait() {
	s.cache.Wait()
}

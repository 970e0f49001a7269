package api

import (
	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/metadata/mock"
	"github.com/tmdbcat/tmdbcat/internal/metadata/rpdb"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// metadataClients bundles the upstream clients the adapters are built on.
type metadataClients struct {
	tmdb    metadata.TMDBClient
	mdblist metadata.MDBListClient
	posters metadata.PosterClient
}

// newMetadataClients returns canned clients in developer mode and real ones
// otherwise. Real clients report breaker transitions to the health service.
func (s *Server) newMetadataClients() metadataClients {
	if s.cfg.Metadata.Mock {
		s.logger.Info().Msg("Using mock metadata providers")
		return metadataClients{
			tmdb:    mock.NewTMDBClient(),
			mdblist: mock.NewMDBListClient(),
			posters: mock.NewPosterClient(),
		}
	}

	md := s.cfg.Metadata
	return metadataClients{
		tmdb:    tmdb.NewClient(md.TMDB, s.logger, tmdb.WithStateListener(s.healthService.BreakerListener("tmdb"))),
		mdblist: mdblist.NewClient(md.MDBList, s.logger, s.healthService.BreakerListener("mdblist")),
		posters: rpdb.NewClient(md.RPDB, s.logger),
	}
}

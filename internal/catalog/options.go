package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// TopOption is the genre option meaning "no genre filter".
const TopOption = "Top"

// OptionSource supplies the provider lookups filter options are built from.
type OptionSource interface {
	Genres(ctx context.Context, typ metadata.MediaType, language string) ([]tmdb.Genre, error)
	Languages(ctx context.Context) ([]tmdb.Language, error)
}

// Options computes filter option lists. Lookup failures yield empty lists.
type Options struct {
	source OptionSource
	years  int
	now    func() time.Time
	logger zerolog.Logger
}

// NewOptions creates an option provider covering the last years years.
func NewOptions(source OptionSource, years int, logger zerolog.Logger) *Options {
	if years <= 0 {
		years = 20
	}
	return &Options{
		source: source,
		years:  years,
		now:    time.Now,
		logger: logger.With().Str("component", "catalog-options").Logger(),
	}
}

// Years returns the current year down to current-N, newest first.
func (o *Options) Years() []string {
	current := o.now().Year()
	out := make([]string, 0, o.years+1)
	for y := current; y >= current-o.years; y-- {
		out = append(out, strconv.Itoa(y))
	}
	return out
}

// Genres returns localized genre names, sorted.
func (o *Options) Genres(ctx context.Context, typ metadata.MediaType, language string) []string {
	genres, err := o.source.Genres(ctx, typ, language)
	if err != nil {
		o.logger.Warn().Err(err).Str("type", string(typ)).Str("language", language).Msg("genre list unavailable")
		return []string{}
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Languages returns provider language names with the active language first
// and the rest alphabetical, without duplicate names.
func (o *Options) Languages(ctx context.Context, active string) []string {
	languages, err := o.source.Languages(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("language list unavailable")
		return []string{}
	}

	base, _, _ := strings.Cut(active, "-")
	base = strings.ToLower(base)

	var first string
	rest := make([]string, 0, len(languages))
	for _, l := range languages {
		name := languageName(l)
		if name == "" {
			continue
		}
		if l.ISO6391 == base && first == "" {
			first = name
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)

	out := make([]string, 0, len(rest)+1)
	seen := make(map[string]bool, len(rest)+1)
	if first != "" {
		out = append(out, first)
		seen[first] = true
	}
	for _, name := range rest {
		if !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}

// LanguageCode maps a displayed language name back to its ISO 639-1 code.
// An unknown name returns "".
func (o *Options) LanguageCode(ctx context.Context, name string) string {
	languages, err := o.source.Languages(ctx)
	if err != nil {
		return ""
	}
	for _, l := range languages {
		if strings.EqualFold(languageName(l), name) || strings.EqualFold(l.ISO6391, name) {
			return l.ISO6391
		}
	}
	return ""
}

// Refresh loads genre lists for the given languages and the language list so
// later manifest builds are served from the lookup cache.
func (o *Options) Refresh(ctx context.Context, languages []string) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	eg.Go(func() error {
		_, err := o.source.Languages(egCtx)
		return err
	})
	for _, lang := range languages {
		for _, typ := range []metadata.MediaType{metadata.MediaMovie, metadata.MediaSeries} {
			eg.Go(func() error {
				_, err := o.source.Genres(egCtx, typ, lang)
				return err
			})
		}
	}
	return eg.Wait()
}

func languageName(l tmdb.Language) string {
	if l.ISO6391 == "xx" {
		return ""
	}
	if l.EnglishName != "" {
		return l.EnglishName
	}
	return l.Name
}

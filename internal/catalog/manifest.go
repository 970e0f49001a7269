package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/metadata/mdblist"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

// Catalog id prefixes.
const (
	PrefixTMDB      = "tmdb."
	PrefixStreaming = "streaming."
	PrefixList      = "mdblist."
)

const namePrefix = "TMDB - "

// Manifest is the addon manifest served to clients.
type Manifest struct {
	ID            string        `json:"id"`
	Version       string        `json:"version"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Logo          string        `json:"logo,omitempty"`
	Resources     []string      `json:"resources"`
	Types         []string      `json:"types"`
	IDPrefixes    []string      `json:"idPrefixes"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
	Catalogs      []Catalog     `json:"catalogs"`
}

// BehaviorHints tells clients how the addon may be configured.
type BehaviorHints struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// Catalog is one manifest catalog entry.
type Catalog struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	PageSize int     `json:"pageSize"`
	Extra    []Extra `json:"extra"`
}

// Extra declares a filter a catalog accepts.
type Extra struct {
	Name       string   `json:"name"`
	Options    []string `json:"options,omitempty"`
	IsRequired bool     `json:"isRequired"`
}

// ListSource enumerates the lists behind a list-provider key.
type ListSource interface {
	UserLists(ctx context.Context, apiKey string) ([]mdblist.List, error)
}

// Builder assembles manifests from user configurations.
type Builder struct {
	registry *Registry
	options  *Options
	lists    ListSource
	addon    config.AddonConfig
	logger   zerolog.Logger
}

// NewBuilder creates a manifest builder. lists may be nil.
func NewBuilder(registry *Registry, options *Options, lists ListSource, addon config.AddonConfig, logger zerolog.Logger) *Builder {
	return &Builder{
		registry: registry,
		options:  options,
		lists:    lists,
		addon:    addon,
		logger:   logger.With().Str("component", "manifest-builder").Logger(),
	}
}

// optionSet holds the provider-backed option lists for one build.
type optionSet struct {
	genres    map[metadata.MediaType][]string
	languages []string
	years     []string
	lists     []mdblist.List
}

// Build renders the manifest for cfg. Identical inputs and clock give an
// identical manifest.
func (b *Builder) Build(ctx context.Context, cfg userconfig.Config) *Manifest {
	opts := b.loadOptions(ctx, cfg)
	labels := b.registry.Translations(cfg.Language)

	catalogs := make([]Catalog, 0, len(cfg.Catalogs)+4)
	present := make(map[string]bool)

	for _, sel := range cfg.Catalogs {
		if !sel.Enabled {
			continue
		}
		typ, ok := metadata.ParseMediaType(sel.Type)
		if !ok {
			continue
		}
		cat, ok := b.selectionCatalog(sel, typ, cfg, labels, opts)
		if !ok {
			b.logger.Debug().Str("catalog", sel.ID).Str("type", sel.Type).Msg("Dropping unavailable catalog")
			continue
		}
		present[cat.ID+"/"+cat.Type] = true
		catalogs = append(catalogs, cat)
	}

	for _, l := range opts.lists {
		if !cfg.ListSelected(l.ID) {
			continue
		}
		for _, typ := range listTypes(l.MediaType) {
			id := PrefixList + strconv.Itoa(l.ID)
			if present[id+"/"+string(typ)] {
				continue
			}
			present[id+"/"+string(typ)] = true
			catalogs = append(catalogs, Catalog{
				ID:       id,
				Type:     string(typ),
				Name:     b.catalogName(l.Name, cfg),
				PageSize: PageSize,
				Extra:    []Extra{{Name: ExtraSkip}},
			})
		}
	}

	if cfg.SearchEnabled {
		for _, typ := range []metadata.MediaType{metadata.MediaMovie, metadata.MediaSeries} {
			catalogs = append(catalogs, Catalog{
				ID:       PrefixTMDB + "search",
				Type:     string(typ),
				Name:     b.catalogName(labels.Get("search"), cfg),
				PageSize: PageSize,
				Extra:    []Extra{{Name: ExtraSearch, IsRequired: true}},
			})
		}
	}

	idPrefixes := []string{metadata.PrefixTMDB}
	if cfg.ProvideIMDbID {
		idPrefixes = append(idPrefixes, metadata.PrefixIMDb)
	}

	return &Manifest{
		ID:          b.addon.ID,
		Version:     b.addon.Version,
		Name:        b.addon.Name,
		Description: b.description(cfg, len(catalogs)),
		Logo:        b.addon.Logo,
		Resources:   []string{"catalog", "meta"},
		Types:       []string{string(metadata.MediaMovie), string(metadata.MediaSeries)},
		IDPrefixes:  idPrefixes,
		BehaviorHints: BehaviorHints{
			Configurable:          b.addon.Configurable,
			ConfigurationRequired: false,
		},
		Catalogs: catalogs,
	}
}

func (b *Builder) loadOptions(ctx context.Context, cfg userconfig.Config) optionSet {
	opts := optionSet{
		genres: make(map[metadata.MediaType][]string, 2),
		years:  b.options.Years(),
	}
	var movieGenres, seriesGenres []string

	var eg errgroup.Group
	eg.Go(func() error {
		movieGenres = b.options.Genres(ctx, metadata.MediaMovie, cfg.Language)
		return nil
	})
	eg.Go(func() error {
		seriesGenres = b.options.Genres(ctx, metadata.MediaSeries, cfg.Language)
		return nil
	})
	eg.Go(func() error {
		opts.languages = b.options.Languages(ctx, cfg.Language)
		return nil
	})
	if cfg.MDBListKey != "" && b.lists != nil {
		eg.Go(func() error {
			lists, err := b.lists.UserLists(ctx, cfg.MDBListKey)
			if err != nil {
				b.logger.Warn().Err(err).Msg("Failed to enumerate user lists")
				return nil
			}
			opts.lists = lists
			return nil
		})
	}
	_ = eg.Wait()

	opts.genres[metadata.MediaMovie] = movieGenres
	opts.genres[metadata.MediaSeries] = seriesGenres
	return opts
}

func (b *Builder) selectionCatalog(sel userconfig.Selection, typ metadata.MediaType, cfg userconfig.Config, labels Translations, opts optionSet) (Catalog, bool) {
	if strings.HasPrefix(sel.ID, PrefixList) {
		if _, err := strconv.Atoi(strings.TrimPrefix(sel.ID, PrefixList)); err != nil {
			return Catalog{}, false
		}
		name := sel.Name
		if name == "" {
			name = sel.ID
		}
		return Catalog{
			ID:       sel.ID,
			Type:     string(typ),
			Name:     b.catalogName(name, cfg),
			PageSize: PageSize,
			Extra:    []Extra{{Name: ExtraSkip}},
		}, true
	}

	def, ok := b.registry.Lookup(sel.Family())
	if !ok || def.Group == GroupSearch {
		return Catalog{}, false
	}
	if def.RequiresAuth && !cfg.HasSession() {
		return Catalog{}, false
	}

	name := sel.Name
	if name == "" {
		name = labels.Get(def.NameKey)
	}

	extras := make([]Extra, 0, 2)
	if def.Supports(ExtraGenre) {
		extras = append(extras, Extra{
			Name:       ExtraGenre,
			Options:    b.filterOptions(def, typ, sel.ShowInHome, labels, opts),
			IsRequired: !sel.ShowInHome,
		})
	}
	if def.Supports(ExtraSkip) {
		extras = append(extras, Extra{Name: ExtraSkip})
	}

	return Catalog{
		ID:       sel.ID,
		Type:     string(typ),
		Name:     b.catalogName(name, cfg),
		PageSize: PageSize,
		Extra:    extras,
	}, true
}

func (b *Builder) filterOptions(def Definition, typ metadata.MediaType, showInHome bool, labels Translations, opts optionSet) []string {
	if len(def.DefaultOptions) > 0 {
		out := make([]string, 0, len(def.DefaultOptions))
		for _, o := range def.DefaultOptions {
			out = append(out, labels.Option(o))
		}
		return out
	}

	switch def.Discover.Filter {
	case metadata.FilterYear:
		return append([]string(nil), opts.years...)
	case metadata.FilterLanguage:
		return append([]string(nil), opts.languages...)
	}

	genres := opts.genres[typ]
	if showInHome {
		return append([]string(nil), genres...)
	}
	return append([]string{TopOption}, genres...)
}

func (b *Builder) catalogName(name string, cfg userconfig.Config) string {
	if cfg.TMDBPrefix {
		return namePrefix + name
	}
	return name
}

func (b *Builder) description(cfg userconfig.Config, active int) string {
	account := "Not Connected"
	if cfg.HasSession() {
		account = "Connected"
	}
	parts := []string{
		"Language: " + languageDisplay(cfg.Language),
		"TMDB Account: " + account,
		"IMDb Integration: " + enabled(cfg.ProvideIMDbID),
		"RPDB Integration: " + enabled(cfg.RPDBKey != ""),
		"Search: " + enabled(cfg.SearchEnabled),
		fmt.Sprintf("Active Catalogs: %d", active),
	}

	desc := strings.TrimSpace(b.addon.Description)
	summary := "Current settings: " + strings.Join(parts, " | ")
	if desc == "" {
		return summary
	}
	return desc + "\n\n" + summary
}

// listTypes maps a list's media type onto catalog types. Mixed lists get
// both.
func listTypes(mediaType string) []metadata.MediaType {
	switch mediaType {
	case mdblist.MediaMovie:
		return []metadata.MediaType{metadata.MediaMovie}
	case mdblist.MediaShow:
		return []metadata.MediaType{metadata.MediaSeries}
	default:
		return []metadata.MediaType{metadata.MediaMovie, metadata.MediaSeries}
	}
}

func languageDisplay(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}

func enabled(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}

// Package userconfig parses the opaque per-user configuration blob that
// addon clients carry in the first path segment of every request.
package userconfig

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when the blob names no language or an invalid one.
const DefaultLanguage = "en-US"

// Media types accepted in a catalog selection.
const (
	TypeMovie  = "movie"
	TypeSeries = "series"
)

// Config is the typed view over a user's configuration. A Config returned by
// Parse is fully defaulted and must be treated as read-only.
type Config struct {
	Language              string      `json:"language"`
	SessionID             string      `json:"sessionId,omitempty"`
	RPDBKey               string      `json:"rpdbkey,omitempty"`
	MDBListKey            string      `json:"mdblistkey,omitempty"`
	MDBListSelectedLists  []int       `json:"mdblistSelectedLists,omitempty"`
	SearchEnabled         bool        `json:"searchEnabled"`
	IncludeAdult          bool        `json:"includeAdult,omitempty"`
	ProvideIMDbID         bool        `json:"provideImdbId,omitempty"`
	TMDBPrefix            bool        `json:"tmdbPrefix,omitempty"`
	HideEpisodeThumbnails bool        `json:"hideEpisodeThumbnails,omitempty"`
	AgeRating             string      `json:"ageRating,omitempty"`
	Catalogs              []Selection `json:"catalogs"`
}

// Selection is one user-chosen catalog. Order within Config.Catalogs is
// significant and preserved verbatim.
type Selection struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Enabled    bool   `json:"enabled"`
	ShowInHome bool   `json:"showInHome"`
	Name       string `json:"name,omitempty"`
}

// Family returns the catalog family, the id segment after the provider
// prefix ("tmdb.top" -> "top", "streaming.nfx" -> "nfx").
func (s Selection) Family() string {
	return FamilyOf(s.ID)
}

// FamilyOf returns the family part of a catalog id.
func FamilyOf(id string) string {
	if _, family, ok := strings.Cut(id, "."); ok {
		return family
	}
	return id
}

// HasSession reports whether an authenticated provider session is present.
func (c Config) HasSession() bool {
	return c.SessionID != ""
}

// LanguageBase returns the ISO 639-1 part of the active language ("pt-BR" -> "pt").
func (c Config) LanguageBase() string {
	base, _, _ := strings.Cut(c.Language, "-")
	return strings.ToLower(base)
}

// Region returns the region part of the active language, or "" when absent.
func (c Config) Region() string {
	_, region, _ := strings.Cut(c.Language, "-")
	return strings.ToUpper(region)
}

// ListSelected reports whether a list-provider list should be surfaced.
// An empty selection means every list.
func (c Config) ListSelected(id int) bool {
	if len(c.MDBListSelectedLists) == 0 {
		return true
	}
	for _, sel := range c.MDBListSelectedLists {
		if sel == id {
			return true
		}
	}
	return false
}

// DefaultFamilies are the families surfaced when a blob selects no catalogs.
var DefaultFamilies = []string{"top", "year", "language", "trending"}

// DefaultSelections returns every default family for both media types,
// enabled and shown on the home board.
func DefaultSelections() []Selection {
	out := make([]Selection, 0, len(DefaultFamilies)*2)
	for _, family := range DefaultFamilies {
		for _, typ := range []string{TypeMovie, TypeSeries} {
			out = append(out, Selection{
				ID:         "tmdb." + family,
				Type:       typ,
				Enabled:    true,
				ShowInHome: true,
			})
		}
	}
	return out
}

// Default returns a fully defaulted Config.
func Default() Config {
	return Config{
		Language:      DefaultLanguage,
		SearchEnabled: true,
		Catalogs:      DefaultSelections(),
	}
}

// rawConfig mirrors the wire shape. Toggles arrive as JSON booleans or as the
// strings "true"/"false"; pointers distinguish absent from false.
type rawConfig struct {
	Language              string         `json:"language"`
	SessionID             string         `json:"sessionId"`
	RPDBKey               string         `json:"rpdbkey"`
	MDBListKey            string         `json:"mdblistkey"`
	MDBListSelectedLists  []flexInt      `json:"mdblistSelectedLists"`
	SearchEnabled         *flexBool      `json:"searchEnabled"`
	IncludeAdult          *flexBool      `json:"includeAdult"`
	ProvideIMDbID         *flexBool      `json:"provideImdbId"`
	TMDBPrefix            *flexBool      `json:"tmdbPrefix"`
	HideEpisodeThumbnails *flexBool      `json:"hideEpisodeThumbnails"`
	AgeRating             string         `json:"ageRating"`
	Catalogs              []rawSelection `json:"catalogs"`
}

type rawSelection struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Enabled    *flexBool `json:"enabled"`
	ShowInHome *flexBool `json:"showInHome"`
	Name       string    `json:"name"`
}

// Parse decodes a configuration blob. It never fails: a bare language tag is
// accepted as {language}, anything else unparseable yields Default().
func Parse(raw string) Config {
	raw = strings.TrimSpace(raw)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	if raw == "" {
		return Default()
	}

	if !strings.HasPrefix(raw, "{") {
		cfg := Default()
		if lang, ok := normalizeLanguage(raw); ok {
			cfg.Language = lang
		}
		return cfg
	}

	var rc rawConfig
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&rc); err != nil {
		return Default()
	}

	return rc.toConfig()
}

func (rc rawConfig) toConfig() Config {
	cfg := Default()

	if lang, ok := normalizeLanguage(rc.Language); ok {
		cfg.Language = lang
	}
	cfg.SessionID = strings.TrimSpace(rc.SessionID)
	cfg.RPDBKey = strings.TrimSpace(rc.RPDBKey)
	cfg.MDBListKey = strings.TrimSpace(rc.MDBListKey)
	cfg.AgeRating = strings.ToUpper(strings.TrimSpace(rc.AgeRating))

	for _, id := range rc.MDBListSelectedLists {
		if id > 0 {
			cfg.MDBListSelectedLists = append(cfg.MDBListSelectedLists, int(id))
		}
	}

	cfg.SearchEnabled = rc.SearchEnabled.or(true)
	cfg.IncludeAdult = rc.IncludeAdult.or(false)
	cfg.ProvideIMDbID = rc.ProvideIMDbID.or(false)
	cfg.TMDBPrefix = rc.TMDBPrefix.or(false)
	cfg.HideEpisodeThumbnails = rc.HideEpisodeThumbnails.or(false)

	if rc.Catalogs != nil {
		cfg.Catalogs = make([]Selection, 0, len(rc.Catalogs))
		for _, s := range rc.Catalogs {
			if s.ID == "" || (s.Type != TypeMovie && s.Type != TypeSeries) {
				continue
			}
			cfg.Catalogs = append(cfg.Catalogs, Selection{
				ID:         s.ID,
				Type:       s.Type,
				Enabled:    s.Enabled.or(true),
				ShowInHome: s.ShowInHome.or(false),
				Name:       s.Name,
			})
		}
	}

	return cfg
}

// normalizeLanguage validates a BCP 47 tag and returns it in
// provider form ("pt-br" -> "pt-BR").
func normalizeLanguage(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	if region, rconf := tag.Region(); rconf == language.Exact {
		return base.String() + "-" + region.String(), true
	}
	return base.String(), true
}

// flexBool accepts true, false, "true" and "false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseBool(s)
	if err != nil {
		// Unknown values read as false rather than failing the whole blob.
		*b = false
		return nil
	}
	*b = flexBool(v)
	return nil
}

func (b *flexBool) or(def bool) bool {
	if b == nil {
		return def
	}
	return bool(*b)
}

// flexInt accepts 12 and "12".
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	*i = flexInt(v)
	return nil
}

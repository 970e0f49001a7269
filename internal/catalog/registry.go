// Package catalog turns a user configuration into an addon manifest and
// resolves catalog page requests against the metadata adapters.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tmdbcat/tmdbcat/internal/metadata"
	"github.com/tmdbcat/tmdbcat/internal/userconfig"
)

//go:embed data/definitions.yaml
var definitionsYAML []byte

//go:embed data/translations.yaml
var translationsYAML []byte

// Extra filter names.
const (
	ExtraGenre  = "genre"
	ExtraSearch = "search"
	ExtraSkip   = "skip"
)

// Definition groups.
const (
	GroupDefault   = "default"
	GroupAuth      = "auth"
	GroupSearch    = "search"
	GroupStreaming = "streaming"
)

// Definition describes one catalog family. Definitions are immutable once
// loaded.
type Definition struct {
	Family         string               `yaml:"family"`
	Group          string               `yaml:"-"`
	NameKey        string               `yaml:"nameKey"`
	ExtraSupported []string             `yaml:"extraSupported"`
	DefaultOptions []string             `yaml:"defaultOptions"`
	RequiresAuth   bool                 `yaml:"requiresAuth"`
	Discover       metadata.DiscoverRow `yaml:"discover"`
}

// Supports reports whether the family accepts the named extra filter.
func (d Definition) Supports(extra string) bool {
	return slices.Contains(d.ExtraSupported, extra)
}

// Registry holds the catalog definitions and their label translations.
type Registry struct {
	definitions  map[string]Definition
	groups       map[string][]string
	translations map[string]Translations
}

// LoadRegistry parses the embedded definitions and translations.
func LoadRegistry() (*Registry, error) {
	return ParseRegistry(definitionsYAML, translationsYAML)
}

// MustLoadRegistry is LoadRegistry for package initialization.
func MustLoadRegistry() *Registry {
	r, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRegistry builds a registry from YAML documents.
func ParseRegistry(definitions, translations []byte) (*Registry, error) {
	var groups map[string][]Definition
	if err := yaml.Unmarshal(definitions, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse catalog definitions: %w", err)
	}

	r := &Registry{
		definitions:  make(map[string]Definition),
		groups:       make(map[string][]string),
		translations: make(map[string]Translations),
	}

	for group, defs := range groups {
		for _, def := range defs {
			if def.Family == "" || def.NameKey == "" {
				return nil, fmt.Errorf("catalog definition in group %q is missing family or nameKey", group)
			}
			if _, dup := r.definitions[def.Family]; dup {
				return nil, fmt.Errorf("duplicate catalog family %q", def.Family)
			}
			for _, extra := range def.ExtraSupported {
				switch extra {
				case ExtraGenre, ExtraSearch, ExtraSkip:
				default:
					return nil, fmt.Errorf("catalog family %q: unknown extra %q", def.Family, extra)
				}
			}
			if def.Discover.Filter == "" {
				def.Discover.Filter = metadata.FilterNone
			}
			def.Group = group
			r.definitions[def.Family] = def
			r.groups[group] = append(r.groups[group], def.Family)
		}
	}

	var labels map[string]map[string]string
	if err := yaml.Unmarshal(translations, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse catalog translations: %w", err)
	}
	if _, ok := labels[userconfig.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("catalog translations lack %s", userconfig.DefaultLanguage)
	}
	for lang, table := range labels {
		r.translations[lang] = Translations(table)
	}

	return r, nil
}

// Lookup returns the definition of a family.
func (r *Registry) Lookup(family string) (Definition, bool) {
	def, ok := r.definitions[family]
	return def, ok
}

// Families returns the families of a group in file order.
func (r *Registry) Families(group string) []string {
	return slices.Clone(r.groups[group])
}

// Languages returns every language with translations, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.translations))
	for lang := range r.translations {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Translations returns the labels for a language, falling back per key to
// the same base language and then to the default language.
func (r *Registry) Translations(lang string) Translations {
	merged := make(Translations)
	for k, v := range r.translations[userconfig.DefaultLanguage] {
		merged[k] = v
	}

	base, _, _ := strings.Cut(lang, "-")
	if base != "" && !strings.EqualFold(lang, userconfig.DefaultLanguage) {
		for _, candidate := range r.Languages() {
			if candidate != lang && strings.HasPrefix(candidate, base+"-") {
				for k, v := range r.translations[candidate] {
					merged[k] = v
				}
				break
			}
		}
	}
	for k, v := range r.translations[lang] {
		merged[k] = v
	}
	return merged
}

// Translations maps label keys to display text.
type Translations map[string]string

// Get returns the label for key, or key itself when untranslated.
func (t Translations) Get(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	return key
}

// Option renders a default option: "created_at.desc" becomes
// "Added (Newest First)", plain keys are translated directly.
func (t Translations) Option(option string) string {
	if field, order, ok := strings.Cut(option, "."); ok {
		f, fok := t[field]
		o, ook := t[order]
		if fok && ook {
			return fmt.Sprintf("%s (%s)", f, o)
		}
		return option
	}
	return t.Get(option)
}

// OptionKey maps a displayed option back to its key. Raw keys are accepted
// too; unknown labels return "".
func (t Translations) OptionKey(options []string, label string) string {
	for _, opt := range options {
		if opt == label || t.Option(opt) == label {
			return opt
		}
	}
	return ""
}

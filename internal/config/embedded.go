package config

// EmbeddedTMDBKey is injected at build time via ldflags and serves as the
// default API key when neither the config file nor the environment sets one.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/tmdbcat/tmdbcat/internal/config.EmbeddedTMDBKey=xxx'"
var EmbeddedTMDBKey string

package api

// Config holds server configuration.
type Config struct {
	Port               int
	SourcesDir         string   // directory of translation XML files
	DatabasePath       string   // SQLite path enabling the import endpoint ("" = disabled)
	DefaultTranslation string   // identifier served when none is requested ("" = first listed)
	DocumentCacheSize  int      // parsed documents kept in memory (0 = catalog default)
	AllowedOrigins     []string // CORS allowed origins (empty = allow all)
	TLS                TLSConfig
}

// TLSConfig holds TLS/HTTPS configuration.
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

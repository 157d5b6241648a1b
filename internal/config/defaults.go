package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/visado/data/db/dossier.db"
	}
	if cfg.Storage.OfficesIndexPath == "" {
		cfg.Storage.OfficesIndexPath = "/usr/local/var/visado/data/indices/offices"
	}
	if cfg.Dossier.VisaType == "" {
		cfg.Dossier.VisaType = "tourist"
	}
	if cfg.Dossier.DestinationRegion == "" {
		cfg.Dossier.DestinationRegion = "schengen"
	}
	if cfg.Vault.Extensions == nil {
		cfg.Vault.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Vault.Directories) > 0 && cfg.Vault.Recursive == nil {
		t := true
		cfg.Vault.Recursive = &t
	}
}

package config

// SiteConfig holds per-site overrides for a single hostname.
// This allows tuning crawl behavior for sites with known quirks without
// changing the global flags.
type SiteConfig struct {
	// IgnoreKeywords replaces the global ignore-keyword list for this site.
	IgnoreKeywords []string `yaml:"ignoreKeywords,omitempty"`

	// MaxDepth overrides the global path-depth bound for this site.
	// Zero means use the global value.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// MaxPagesPerPrefix overrides the global per-prefix quota.
	// Zero means use the global value.
	MaxPagesPerPrefix int `yaml:"maxPagesPerPrefix,omitempty"`

	// RenderJS forces the browser-based fetcher for this site.
	RenderJS bool `yaml:"renderJS,omitempty"`
}

// File represents the structure of the .contactscan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to all sites unless
	// overridden in the site-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a hostname, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if len(siteConfig.IgnoreKeywords) > 0 {
			result.IgnoreKeywords = siteConfig.IgnoreKeywords
		}
		if siteConfig.MaxDepth != 0 {
			result.MaxDepth = siteConfig.MaxDepth
		}
		if siteConfig.MaxPagesPerPrefix != 0 {
			result.MaxPagesPerPrefix = siteConfig.MaxPagesPerPrefix
		}
		if siteConfig.RenderJS {
			result.RenderJS = true
		}
	}

	return result
}

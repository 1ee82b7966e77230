package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing audit behavior per audited site, e.g. attaching
// a session cookie for a staging environment behind authentication.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when auditing this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// SkipDynamic disables browser-driven analysis for this site and
	// audits it with static analysis only. Useful for sites that block
	// headless browsers.
	SkipDynamic bool `yaml:"skipDynamic,omitempty"`

	// TimeoutSeconds overrides the global request timeout for this site.
	// If zero, the global timeout is used.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// File represents the structure of the .seoscan configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys should be the host without the scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.TimeoutSeconds != 0 {
			result.TimeoutSeconds = siteConfig.TimeoutSeconds
		}
		if siteConfig.SkipDynamic {
			result.SkipDynamic = true
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

package config

import "time"

// GitHubConfig holds GitHub-specific configuration
type GitHubConfig struct {
	Token      string
	APIBaseURL string
	Cache      CacheConfig
}

// CacheConfig holds search-response cache configuration
type CacheConfig struct {
	SearchTTL time.Duration
}

// DefaultGitHubConfig returns the default GitHub configuration
func DefaultGitHubConfig() *GitHubConfig {
	return &GitHubConfig{
		APIBaseURL: "https://api.github.com",
		Cache: CacheConfig{
			SearchTTL: 30 * time.Minute,
		},
	}
}

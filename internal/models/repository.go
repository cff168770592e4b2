package models

import "time"

// Repository is a GitHub repository as stored locally. GithubID is the
// immutable external identifier; FullName is "owner/name" and globally
// unique. Mutable fields are replaced wholesale on every sync.
type Repository struct {
	ID              int64     `json:"id"`
	GithubID        int64     `json:"githubId"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	FullName        string    `json:"fullName"`
	URL             string    `json:"url"`
	Description     *string   `json:"description"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazersCount"`
	ForksCount      int       `json:"forksCount"`
	OpenIssuesCount *int      `json:"openIssuesCount"`
	Topics          []string  `json:"topics"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	LastSyncedAt    time.Time `json:"lastSyncedAt"`
}

// RepositoryWithTrendingScore is a repository enriched with the trending
// score of its most recent snapshot for the requested time range.
type RepositoryWithTrendingScore struct {
	Repository
	TrendingScore float64 `json:"trendingScore"`
}

package models

// PaginationMeta describes the page window of a trending response.
type PaginationMeta struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	PageSize    int  `json:"pageSize"`
	TotalRepos  int  `json:"totalRepos"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// TrendingResponse is the paginated ranking view served to clients.
// LastUpdated is the most recent lastSyncedAt across the whole store,
// independent of the requested time range or filters.
type TrendingResponse struct {
	Repos       []RepositoryWithTrendingScore `json:"repos"`
	Pagination  PaginationMeta                `json:"pagination"`
	LastUpdated string                        `json:"lastUpdated"`
}

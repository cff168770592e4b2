package models

import "time"

// Snapshot is one period's trend measurement for one repository. Within a
// period window (identified by PeriodStartDate) the snapshot is refreshed in
// place; when the window advances a new snapshot is created and the old one
// is kept for history. StarsAtStart and ForksAtStart are set on creation and
// never modified afterwards.
type Snapshot struct {
	ID              int64     `json:"id"`
	RepositoryID    int64     `json:"repositoryId"`
	Period          TimeRange `json:"period"`
	PeriodStartDate time.Time `json:"periodStartDate"`
	StarsAtStart    int       `json:"starsAtStart"`
	StarsAtEnd      int       `json:"starsAtEnd"`
	ForksAtStart    int       `json:"forksAtStart"`
	ForksAtEnd      int       `json:"forksAtEnd"`
	TrendingScore   float64   `json:"trendingScore"`
	SnapshotDate    time.Time `json:"snapshotDate"`
}

// SnapshotWithRepository pairs a snapshot with its owning repository row,
// as returned by the ranking query.
type SnapshotWithRepository struct {
	Snapshot
	Repository Repository `json:"repository"`
}

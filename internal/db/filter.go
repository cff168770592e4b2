package db

import (
	"fmt"
	"strings"
)

// RepositoryFilter narrows repository rows. Language is an exact,
// conjunctive match. Search is a disjunctive group: a case-insensitive
// contains match over name, full name, description and owner, or an exact
// match of the lowercased text against one topic tag.
type RepositoryFilter struct {
	Language string
	Search   string
}

// IsZero reports whether the filter applies no predicate at all.
func (f *RepositoryFilter) IsZero() bool {
	return f == nil || (f.Language == "" && f.Search == "")
}

// Clause renders the filter as a SQL fragment over the repositories table
// aliased as alias, with argument placeholders starting at argIndex. An
// empty fragment is returned when no predicate applies.
func (f *RepositoryFilter) Clause(alias string, argIndex int) (string, []interface{}) {
	if f.IsZero() {
		return "", nil
	}

	var conds []string
	var args []interface{}

	if f.Language != "" {
		conds = append(conds, fmt.Sprintf("%s.language = $%d", alias, argIndex))
		args = append(args, f.Language)
		argIndex++
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, fmt.Sprintf(
			"(%[1]s.name ILIKE $%[2]d OR %[1]s.full_name ILIKE $%[3]d OR %[1]s.description ILIKE $%[4]d OR %[1]s.owner ILIKE $%[5]d OR $%[6]d = ANY(%[1]s.topics))",
			alias, argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4))
		args = append(args, pattern, pattern, pattern, pattern, strings.ToLower(f.Search))
	}

	return strings.Join(conds, " AND "), args
}

package query

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/blackwell-systems/hubctl/internal/hub"
)

// SortVersions orders rows by semantic version within the page, newest
// first when desc is set. Unparseable versions sort after valid ones in
// input order.
func SortVersions(rows []hub.CollectionVersionSearch, desc bool) {
	parsed := make(map[string]*semver.Version, len(rows))
	for _, r := range rows {
		v := r.CollectionVersion.Version
		if _, seen := parsed[v]; seen {
			continue
		}
		sv, err := semver.NewVersion(v)
		if err != nil {
			sv = nil
		}
		parsed[v] = sv
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := parsed[rows[i].CollectionVersion.Version], parsed[rows[j].CollectionVersion.Version]
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case desc:
			return a.GreaterThan(b)
		default:
			return a.LessThan(b)
		}
	})
}

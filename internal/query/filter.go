package query

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/hub"
)

// Filter narrows an already fetched page client-side, for the --filter
// quick filter; list commands filter server-side through Params.
type Filter struct {
	Tag    string
	Search string // matches namespace, name, version or any tag
	Signed string
}

// Apply returns the subset of rows matching all non-empty filter fields.
func (f Filter) Apply(rows []hub.CollectionVersionSearch) []hub.CollectionVersionSearch {
	var out []hub.CollectionVersionSearch
	for _, r := range rows {
		if f.Tag != "" && !hasTag(r.CollectionVersion, f.Tag) {
			continue
		}
		if f.Signed != "" && (f.Signed == "true") != r.IsSigned {
			continue
		}
		if f.Search != "" && !matchesSearch(r.CollectionVersion, f.Search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ParseFilter reads a --filter expression. "tag:<name>" and
// "signed:true|false" terms set those fields; remaining words form Search.
func ParseFilter(s string) (Filter, error) {
	var f Filter
	var words []string
	for _, term := range strings.Fields(s) {
		k, v, found := strings.Cut(term, ":")
		switch {
		case found && k == "tag":
			f.Tag = v
		case found && k == "signed":
			if v != "true" && v != "false" {
				return Filter{}, fmt.Errorf("invalid filter %q: signed must be true or false", term)
			}
			f.Signed = v
		default:
			words = append(words, term)
		}
	}
	f.Search = strings.Join(words, " ")
	return f, nil
}

func hasTag(v hub.CollectionVersion, tag string) bool {
	for _, t := range v.Tags {
		if strings.EqualFold(t.Name, tag) {
			return true
		}
	}
	return false
}

func matchesSearch(v hub.CollectionVersion, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(v.FQCN()), q) {
		return true
	}
	if strings.Contains(v.Version, q) {
		return true
	}
	for _, t := range v.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

// Package query maps user-facing filters, pagination and sort onto hub API
// parameters.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Defaults for list views.
const (
	DefaultPageSize = 10
	DefaultSort     = "-pulp_created"
)

// SortFields are the fields the search endpoint can order by.
var SortFields = []string{"namespace", "name", "version", "pulp_created"}

// Params are the user-facing list parameters.
type Params struct {
	Keywords   string
	Namespace  string
	Name       string
	Repository string
	Tags       []string
	// Signed is "", "true" or "false".
	Signed string
	// Pipeline filters by the repository pipeline label.
	Pipeline string
	// Deprecated is "", "true" or "false".
	Deprecated string
	// HighestOnly restricts results to the highest version per collection.
	HighestOnly bool

	Page     int
	PageSize int
	Sort     string
}

// Normalize fills defaults and clamps the page.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	return p
}

// Validate rejects malformed values before any request is made.
func (p Params) Validate() error {
	if err := validBool("signed", p.Signed); err != nil {
		return err
	}
	if err := validBool("deprecated", p.Deprecated); err != nil {
		return err
	}
	if p.Sort != "" {
		field := strings.TrimPrefix(p.Sort, "-")
		ok := false
		for _, f := range SortFields {
			if f == field {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("invalid sort %q (valid: %s, prefix with - for descending)", p.Sort, strings.Join(SortFields, ", "))
		}
	}
	return nil
}

func validBool(name, v string) error {
	switch v {
	case "", "true", "false":
		return nil
	}
	return fmt.Errorf("invalid %s value %q (want true or false)", name, v)
}

// Values renders the collection-version search parameters. Pages map to
// offset/limit.
func (p Params) Values() url.Values {
	p = p.Normalize()
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("keywords", p.Keywords)
	set("namespace", p.Namespace)
	set("name", p.Name)
	set("repository_name", p.Repository)
	set("is_signed", p.Signed)
	set("is_deprecated", p.Deprecated)
	if p.Pipeline != "" {
		v.Set("repository_label", "pipeline="+p.Pipeline)
	}
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			v.Add("tags", t)
		}
	}
	if p.HighestOnly {
		v.Set("is_highest", "true")
	}
	v.Set("order_by", p.Sort)
	v.Set("offset", strconv.Itoa((p.Page-1)*p.PageSize))
	v.Set("limit", strconv.Itoa(p.PageSize))
	return v
}

// Filtered reports whether any narrowing filter is set.
func (p Params) Filtered() bool {
	return p.Keywords != "" || p.Namespace != "" || p.Name != "" ||
		p.Repository != "" || len(p.Tags) > 0 || p.Signed != ""
}

// PageCount returns the number of pages for count results.
func (p Params) PageCount(count int) int {
	p = p.Normalize()
	if count <= 0 {
		return 1
	}
	return (count + p.PageSize - 1) / p.PageSize
}

package distro_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLister returns a fixed page and records every call.
type stubLister struct {
	results []hub.Distribution
	err     error
	calls   []url.Values
}

func (s *stubLister) ListDistributions(_ context.Context, params url.Values) (*hub.PulpPage[hub.Distribution], error) {
	s.calls = append(s.calls, params)
	if s.err != nil {
		return nil, s.err
	}
	return &hub.PulpPage[hub.Distribution]{Count: len(s.results), Results: s.results}, nil
}

func row(repoHref, repoName, name string) hub.CollectionVersionSearch {
	return hub.CollectionVersionSearch{
		CollectionVersion: hub.CollectionVersion{Namespace: "acme", Name: name, Version: "1.0.0"},
		Repository:        hub.Repository{PulpHref: repoHref, Name: repoName},
	}
}

func TestJoin_PrefersDistributionNamedLikeRepository(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "other", BasePath: "other", Repository: "/repo/1/"},
		{Name: "published", BasePath: "published", Repository: "/repo/1/"},
		{Name: "third", BasePath: "third", Repository: "/repo/1/"},
	}}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	out, err := j.Join(context.Background(), []hub.CollectionVersionSearch{row("/repo/1/", "published", "tools")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Distribution)
	assert.Equal(t, "published", out[0].Distribution.BasePath)
}

func TestJoin_FallsBackToFirstCandidate(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "first", BasePath: "first", Repository: "/repo/1/"},
		{Name: "second", BasePath: "second", Repository: "/repo/1/"},
	}}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	out, err := j.Join(context.Background(), []hub.CollectionVersionSearch{row("/repo/1/", "published", "tools")})
	require.NoError(t, err)
	assert.Equal(t, "first", out[0].Distribution.Name)
}

func TestJoin_EmptyInputSkipsResolver(t *testing.T) {
	l := &stubLister{}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	out, err := j.Join(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, l.calls, "resolver should not be called for empty input")
}

func TestJoin_NoDistributionGivesNil(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "published", BasePath: "published", Repository: "/repo/1/"},
	}}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	rows := []hub.CollectionVersionSearch{
		row("/repo/1/", "published", "a"),
		row("/repo/2/", "staging", "b"),
		row("/repo/2/", "staging", "c"),
	}
	out, err := j.Join(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NotNil(t, out[0].Distribution)
	assert.Nil(t, out[1].Distribution)
	assert.Nil(t, out[2].Distribution)
}

func TestJoin_DistributionBelongsToRowRepository(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "x", Repository: "/repo/1/"},
		{Name: "y", Repository: "/repo/2/"},
		{Name: "z", Repository: "/repo/1/"},
	}}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	rows := []hub.CollectionVersionSearch{row("/repo/1/", "r1", "a"), row("/repo/2/", "r2", "b")}
	out, err := j.Join(context.Background(), rows)
	require.NoError(t, err)
	for _, a := range out {
		if a.Distribution != nil && a.Distribution.Repository != a.Repository.PulpHref {
			t.Errorf("row %s joined with distribution of %s", a.Repository.PulpHref, a.Distribution.Repository)
		}
	}
}

func TestJoin_Idempotent(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "a", BasePath: "a", Repository: "/repo/1/"},
		{Name: "b", BasePath: "b", Repository: "/repo/2/"},
	}}
	j := distro.NewJoiner(distro.NewResolver(l, 0))
	rows := []hub.CollectionVersionSearch{row("/repo/1/", "r1", "x"), row("/repo/2/", "b", "y")}

	first, err := j.Join(context.Background(), rows)
	require.NoError(t, err)
	second, err := j.Join(context.Background(), rows)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Join not idempotent (-first +second):\n%s", diff)
	}
}

func TestJoin_ResolverFailureReturnsNoRows(t *testing.T) {
	l := &stubLister{err: errors.New("connection reset")}
	j := distro.NewJoiner(distro.NewResolver(l, 0))

	out, err := j.Join(context.Background(), []hub.CollectionVersionSearch{row("/repo/1/", "r", "x")})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, hub.KindNetwork, hub.KindOf(err))
}

func TestResolve_DedupesAndBoundsPageSize(t *testing.T) {
	l := &stubLister{}
	r := distro.NewResolver(l, 0)

	_, err := r.Resolve(context.Background(), []string{"/repo/2/", "/repo/1/", "/repo/2/", ""})
	require.NoError(t, err)
	require.Len(t, l.calls, 1)
	assert.Equal(t, "/repo/1/,/repo/2/", l.calls[0].Get("repository__in"))
	assert.Equal(t, "999", l.calls[0].Get("page_size"))
}

func TestTable_LookupReturnsLast(t *testing.T) {
	l := &stubLister{results: []hub.Distribution{
		{Name: "first", Repository: "/repo/1/"},
		{Name: "last", Repository: "/repo/1/"},
	}}
	table, err := distro.NewResolver(l, 10).Resolve(context.Background(), []string{"/repo/1/"})
	require.NoError(t, err)
	assert.Equal(t, "last", table.Lookup("/repo/1/").Name)
	assert.Nil(t, table.Lookup("/repo/9/"))
	assert.Equal(t, "10", l.calls[0].Get("page_size"))
}

func TestBasePath(t *testing.T) {
	repo := hub.Repository{PulpHref: "/repo/1/", Name: "published"}
	cases := []struct {
		name       string
		candidates []hub.Distribution
		want       string
	}{
		{"none uses repo name", nil, "published"},
		{"name match", []hub.Distribution{{Name: "x", BasePath: "x"}, {Name: "published", BasePath: "pub"}}, "pub"},
		{"first otherwise", []hub.Distribution{{Name: "x", BasePath: "x-path"}, {Name: "y", BasePath: "y-path"}}, "x-path"},
	}
	for _, c := range cases {
		if got := distro.BasePath(c.candidates, repo); got != c.want {
			t.Errorf("%s: BasePath = %q, want %q", c.name, got, c.want)
		}
	}
}

package hub_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *hub.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return hub.New("secret", srv.URL+"/api/galaxy/")
}

func TestListCollectionVersions_SendsAuthAndParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/v3/plugin/ansible/search/collection-versions/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "-pulp_created", r.URL.Query().Get("order_by"))
		_, _ = io.WriteString(w, `{
			"meta": {"count": 1},
			"links": {"first": "f", "last": "l"},
			"data": [{
				"collection_version": {"namespace": "acme", "name": "tools", "version": "1.0.0"},
				"repository": {"pulp_href": "/repo/1/", "name": "staging", "pulp_labels": {"pipeline": "staging"}},
				"is_highest": true,
				"is_signed": false
			}]
		}`)
	})

	page, err := c.ListCollectionVersions(context.Background(), url.Values{"order_by": {"-pulp_created"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Meta.Count)
	row := page.Data[0]
	assert.Equal(t, "acme.tools:1.0.0", row.CollectionVersion.String())
	assert.Equal(t, "staging", row.Repository.Pipeline())
	assert.True(t, row.IsHighest)
}

func TestMoveCollectionVersion_PathAndSignFlag(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/galaxy/v3/collections/acme/tools/versions/1.0.0/move/staging/published/", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"copy_task_id": "c1", "remove_task_id": "r1"}`)
	})

	res, err := c.MoveCollectionVersion(context.Background(), "acme", "tools", "1.0.0", "staging", "published", hub.MoveOptions{Sign: true})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.RemoveTaskID)
	assert.Equal(t, true, gotBody["sign"])
}

func TestCheckStatus_TypedErrors(t *testing.T) {
	cases := []struct {
		status int
		target error
		kind   hub.Kind
	}{
		{http.StatusNotFound, hub.ErrNotFound, hub.KindNotFound},
		{http.StatusUnauthorized, hub.ErrUnauthorized, hub.KindUnauthorized},
		{http.StatusForbidden, hub.ErrForbidden, hub.KindForbidden},
		{http.StatusConflict, hub.ErrConflict, hub.KindConflict},
		{http.StatusInternalServerError, hub.ErrNetwork, hub.KindNetwork},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", tc.status)
		})
		_, err := c.GetTask(context.Background(), "abc")
		if !errors.Is(err, tc.target) {
			t.Errorf("status %d: errors.Is(%v, target) = false", tc.status, err)
		}
		if !errors.Is(err, hub.ErrNetwork) {
			t.Errorf("status %d: every HTTP failure should match ErrNetwork", tc.status)
		}
		if got := hub.KindOf(err); got != tc.kind {
			t.Errorf("status %d: KindOf = %q, want %q", tc.status, got, tc.kind)
		}
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := hub.New("", base)
	_, err := c.ListDistributions(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, hub.ErrNetwork)
	assert.Equal(t, hub.KindNetwork, hub.KindOf(err))
}

func TestDescribe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.GetTask(context.Background(), "abc")
	assert.Equal(t, "Error 502 - Bad Gateway", hub.Describe(err))
	assert.Equal(t, "plain", hub.Describe(errors.New("plain")))
	assert.Equal(t, "", hub.Describe(nil))
}

func TestGetTask_AcceptsHref(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/pulp/api/v3/tasks/0188/", r.URL.Path)
		_, _ = io.WriteString(w, `{"pulp_href": "/tasks/0188/", "state": "completed"}`)
	})
	task, err := c.GetTask(context.Background(), "/api/galaxy/pulp/api/v3/tasks/0188/")
	require.NoError(t, err)
	assert.True(t, task.Terminal())
	assert.True(t, task.Succeeded())
}

func TestRepositoryByName_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "staging", r.URL.Query().Get("name"))
		_, _ = io.WriteString(w, `{"count": 0, "results": []}`)
	})
	_, err := c.RepositoryByName(context.Background(), "staging")
	assert.ErrorIs(t, err, hub.ErrNotFound)
}

func TestUploadSignature_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/pulp/api/v3/content/ansible/collection_signatures/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "/repo/staging/", r.FormValue("repository"))
		assert.Equal(t, "/cv/1/", r.FormValue("signed_collection"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "sig.asc", hdr.Filename)
		assert.Equal(t, "SIGNATURE", string(data))
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"task": "/api/galaxy/pulp/api/v3/tasks/77/"}`)
	})

	ref, err := c.UploadSignature(context.Background(), strings.NewReader("SIGNATURE"), "sig.asc", "/repo/staging/", "/cv/1/")
	require.NoError(t, err)
	assert.Equal(t, "77", ref.ID())
}

func TestListRoles_TranslatesSort(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "galaxy.", q.Get("name__startswith"))
		assert.Equal(t, "name", q.Get("ordering"))
		assert.Empty(t, q.Get("sort"))
		_, _ = io.WriteString(w, `{"count": 1, "results": [{"name": "galaxy.collection_admin", "permissions": ["a"]}]}`)
	})
	page, err := c.ListRoles(context.Background(), url.Values{"sort": {"name"}})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "galaxy.collection_admin", page.Results[0].Name)
}

func TestParsePulpID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/api/galaxy/pulp/api/v3/tasks/abc/", "abc"},
		{"/tasks/abc", "abc"},
		{"abc", "abc"},
	}
	for _, c := range cases {
		if got := hub.ParsePulpID(c.in); got != c.want {
			t.Errorf("ParsePulpID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPublishedCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/v3/plugin/ansible/content/published/collections/index/", r.URL.Path)
		_, _ = io.WriteString(w, `{"meta": {"count": 42}, "data": []}`)
	})
	n, err := c.PublishedCount(context.Background(), "published")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestUploadCollection_DigestFollowsFile(t *testing.T) {
	var order []string
	var sha, body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/v3/artifacts/collections/", r.URL.Path)
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(p)
			order = append(order, p.FormName())
			switch p.FormName() {
			case "file":
				assert.Equal(t, "acme-tools-1.0.0.tar.gz", p.FileName())
				body = string(data)
			case "sha256":
				sha = string(data)
			}
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"task": "/api/pulp/api/v3/tasks/abc/"}`)
	})

	read := 0
	r := strings.NewReader("tarball")
	digest := func() string {
		read = int(r.Size()) - r.Len()
		return "cafe"
	}
	ref, err := c.UploadCollection(context.Background(), r, "acme-tools-1.0.0.tar.gz", digest)
	require.NoError(t, err)
	assert.Equal(t, "abc", ref.ID())
	assert.Equal(t, []string{"file", "sha256"}, order)
	assert.Equal(t, "tarball", body)
	assert.Equal(t, "cafe", sha)
	assert.Equal(t, len("tarball"), read)
}

func TestUploadCollection_EmptyDigestOmitsField(t *testing.T) {
	var names []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			names = append(names, p.FormName())
		}
		_, _ = io.WriteString(w, `{"task": "/tasks/1/"}`)
	})
	_, err := c.UploadCollection(context.Background(), strings.NewReader("x"), "acme-tools-1.0.0.tar.gz", func() string { return "" })
	require.NoError(t, err)
	assert.Equal(t, []string{"file"}, names)
}

func TestGetVersionContent_MetadataHidesSupportCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galaxy/v3/plugin/ansible/content/published/collections/index/acme/tools/versions/1.0.0/", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"name": "tools", "version": "1.0.0",
			"download_url": "http://hub/acme-tools-1.0.0.tar.gz",
			"artifact": {"filename": "acme-tools-1.0.0.tar.gz", "sha256": "abc", "size": 10},
			"metadata": {
				"contents": [
					{"name": "ping", "content_type": "module"},
					{"name": "common", "content_type": "module_utils"},
					{"name": "auth", "content_type": "doc_fragments"},
					{"name": "inventory", "content_type": "role"}
				],
				"dependencies": {"acme.base": ">=1.0.0"}
			}
		}`)
	})

	vc, err := c.GetVersionContent(context.Background(), "published", "acme", "tools", "1.0.0")
	require.NoError(t, err)
	assert.Len(t, vc.Metadata.Contents, 4)
	assert.Equal(t, []hub.ContentItem{
		{Name: "ping", ContentType: "module"},
		{Name: "inventory", ContentType: "role"},
	}, vc.Metadata.VisibleContents())
	assert.Equal(t, map[string]string{"acme.base": ">=1.0.0"}, vc.Metadata.Dependencies)
}

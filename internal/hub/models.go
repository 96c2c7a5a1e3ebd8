package hub

import (
	"encoding/json"
	"time"
)

// Page is the galaxy API list envelope.
type Page[T any] struct {
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
	Data  []T   `json:"data"`
}

// Meta carries the total result count of a galaxy page.
type Meta struct {
	Count int `json:"count"`
}

// Links are the pagination links of a galaxy page.
type Links struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// PulpPage is the Pulp API list envelope.
type PulpPage[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}

// CollectionVersion identifies one published version of a collection.
type CollectionVersion struct {
	PulpHref    string    `json:"pulp_href"`
	Namespace   string    `json:"namespace"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	PulpCreated time.Time `json:"pulp_created"`
	Description string    `json:"description,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
}

// FQCN returns "namespace.name".
func (v CollectionVersion) FQCN() string { return v.Namespace + "." + v.Name }

// String returns "namespace.name:version".
func (v CollectionVersion) String() string { return v.FQCN() + ":" + v.Version }

// Tag is a collection tag.
type Tag struct {
	Name string `json:"name"`
}

// Repository is a Pulp ansible repository.
type Repository struct {
	PulpHref    string            `json:"pulp_href"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	PulpLabels  map[string]string `json:"pulp_labels,omitempty"`
}

// Pipeline returns the repository's pipeline label, or "".
func (r Repository) Pipeline() string { return r.PulpLabels["pipeline"] }

// CollectionVersionSearch is one row of the collection-version search API.
type CollectionVersionSearch struct {
	CollectionVersion CollectionVersion `json:"collection_version"`
	Repository        Repository        `json:"repository"`
	IsHighest         bool              `json:"is_highest"`
	IsSigned          bool              `json:"is_signed"`
	IsDeprecated      bool              `json:"is_deprecated"`
	Signatures        []json.RawMessage `json:"signatures,omitempty"`
	NamespaceMetadata json.RawMessage   `json:"namespace_metadata,omitempty"`
}

// Distribution is a Pulp ansible distribution.
type Distribution struct {
	PulpHref   string `json:"pulp_href"`
	Name       string `json:"name"`
	BasePath   string `json:"base_path"`
	Repository string `json:"repository"`
}

// Task is a Pulp task.
type Task struct {
	PulpHref         string     `json:"pulp_href"`
	Name             string     `json:"name,omitempty"`
	State            string     `json:"state"`
	Error            *TaskError `json:"error,omitempty"`
	CreatedResources []string   `json:"created_resources,omitempty"`
}

// TaskError is the error payload of a failed task.
type TaskError struct {
	Description string `json:"description"`
	Traceback   string `json:"traceback,omitempty"`
}

// Pulp task states.
const (
	TaskWaiting   = "waiting"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskCanceled  = "canceled"
	TaskCanceling = "canceling"
	TaskSkipped   = "skipped"
)

// Terminal reports whether the task will not change state again.
func (t Task) Terminal() bool {
	switch t.State {
	case TaskCompleted, TaskSkipped, TaskFailed, TaskCanceled:
		return true
	}
	return false
}

// Succeeded reports a successful terminal state.
func (t Task) Succeeded() bool {
	return t.State == TaskCompleted || t.State == TaskSkipped
}

// MoveResult is the response of the move endpoint.
type MoveResult struct {
	CopyTaskID   string `json:"copy_task_id"`
	RemoveTaskID string `json:"remove_task_id"`
}

// TaskRef is returned by endpoints that spawn a single task.
type TaskRef struct {
	Task string `json:"task"`
}

// ID returns the task UUID.
func (r TaskRef) ID() string { return ParsePulpID(r.Task) }

// FeatureFlags are the hub feature switches the workflow depends on.
type FeatureFlags struct {
	CanUploadSignatures     bool `json:"can_upload_signatures" mapstructure:"can_upload_signatures" yaml:"can_upload_signatures"`
	RequireUploadSignatures bool `json:"require_upload_signatures" mapstructure:"require_upload_signatures" yaml:"require_upload_signatures"`
	CollectionAutoSign      bool `json:"collection_auto_sign" mapstructure:"collection_auto_sign" yaml:"collection_auto_sign"`
	DisplaySignatures       bool `json:"display_signatures" mapstructure:"display_signatures" yaml:"display_signatures"`
}

// VersionContent is the content API view of one collection version.
type VersionContent struct {
	Namespace   json.RawMessage `json:"namespace,omitempty"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	DownloadURL string          `json:"download_url"`
	Artifact    Artifact        `json:"artifact"`
	Href        string          `json:"href,omitempty"`
	Metadata    VersionMetadata `json:"metadata"`
}

// VersionMetadata is the subset of galaxy.yml metadata hubctl shows.
type VersionMetadata struct {
	Contents     []ContentItem     `json:"contents"`
	Dependencies map[string]string `json:"dependencies"`
	Authors      []string          `json:"authors,omitempty"`
	License      []string          `json:"license,omitempty"`
	Repository   string            `json:"repository,omitempty"`
}

// ContentItem is one plugin, module or role shipped in a collection.
type ContentItem struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Description string `json:"description,omitempty"`
}

// hiddenContent lists content types that are support code, not user-facing.
var hiddenContent = map[string]bool{"doc_fragments": true, "module_utils": true}

// VisibleContents returns Contents without doc_fragments and module_utils.
func (m VersionMetadata) VisibleContents() []ContentItem {
	var out []ContentItem
	for _, c := range m.Contents {
		if !hiddenContent[c.ContentType] {
			out = append(out, c)
		}
	}
	return out
}

// Artifact describes a collection tarball.
type Artifact struct {
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
}

// Role is a Pulp RBAC role.
type Role struct {
	PulpHref    string   `json:"pulp_href"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	Locked      bool     `json:"locked"`
}

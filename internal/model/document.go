package model

import "time"

// Classification is the coarse bucket a document's media type falls into.
type Classification string

const (
	ClassPresentation Classification = "presentation"
	ClassDocument     Classification = "document"
	ClassImage        Classification = "image"
	ClassVideo        Classification = "video"
	ClassOther        Classification = "other"
)

// Document represents a stored file attached to exactly one project.
// This is a pure domain model; persistence tags are limited to json and bson field names.
// StorageKey is set once at upload time and never changes.
type Document struct {
	ID               string         `json:"id" bson:"_id"`
	ProjectID        string         `json:"project_id" bson:"project_id"`
	Name             string         `json:"name" bson:"name"`
	OriginalFilename string         `json:"original_filename" bson:"original_filename"`
	ContentType      string         `json:"content_type" bson:"content_type"`
	Classification   Classification `json:"classification" bson:"classification"`
	Size             int64          `json:"size" bson:"size"`
	StorageKey       string         `json:"storage_key" bson:"storage_key"`
	URL              *string        `json:"url,omitempty" bson:"url,omitempty"`
	Tags             []string       `json:"tags" bson:"tags"`
	UploadedBy       string         `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt       time.Time      `json:"uploaded_at" bson:"uploaded_at"`
	LastAccessed     *time.Time     `json:"last_accessed,omitempty" bson:"last_accessed,omitempty"`
}

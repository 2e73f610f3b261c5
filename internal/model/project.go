package model

import (
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Project is a named unit of work, optionally owned by a company, holding a set of documents.
type Project struct {
	ID          string        `json:"id" bson:"_id"`
	CompanyID   *string       `json:"company_id,omitempty" bson:"company_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Slug        string        `json:"slug" bson:"slug"`
	Description string        `json:"description" bson:"description"`
	Status      ProjectStatus `json:"status" bson:"status"`
	DocumentIDs []string      `json:"documents" bson:"document_ids"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// NewProject is the input for project creation.
type NewProject struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CompanyID   *string       `json:"company_id"`
}

// Validate checks required fields and defaults the status.
func (n *NewProject) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required")
	}
	if n.Status == "" {
		n.Status = ProjectPlanning
	}
	if !n.Status.Valid() {
		return fmt.Errorf("invalid status %q", n.Status)
	}
	return nil
}

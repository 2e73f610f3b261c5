package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ProjectPatch lists the only fields a project update may touch.
// A nil field is left unchanged. An empty CompanyID detaches the project from its company.
type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status"`
	CompanyID   *string        `json:"company_id"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil && p.CompanyID == nil
}

// Validate checks the values present in the patch.
func (p ProjectPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("patch has no fields")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status %q", *p.Status)
	}
	return nil
}

// Apply copies the present fields onto pr and reports whether the name changed.
func (p ProjectPatch) Apply(pr *Project) (nameChanged bool) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		nameChanged = name != pr.Name
		pr.Name = name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.CompanyID != nil {
		if *p.CompanyID == "" {
			pr.CompanyID = nil
		} else {
			id := *p.CompanyID
			pr.CompanyID = &id
		}
	}
	return nameChanged
}

// CompanyPatch lists the only fields a company update may touch.
type CompanyPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
}

// Empty reports whether the patch changes nothing.
func (p CompanyPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Website == nil
}

// Validate checks the values present in the patch.
func (p CompanyPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("patch has no fields")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	return nil
}

// Apply copies the present fields onto c and reports whether the name changed.
func (p CompanyPatch) Apply(c *Company) (nameChanged bool) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		nameChanged = name != c.Name
		c.Name = name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	return nameChanged
}

// DecodeStrict unmarshals a JSON object into v and fails on any field v does not declare.
func DecodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

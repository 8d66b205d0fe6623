package models

import "time"

type Project struct {
	ID          int64
	Title       string
	Description *string
	ImageURL    *string
	ProjectURL  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProject carries the fields collected by the add-project flow. Nil pointers
// are stored as NULL.
type NewProject struct {
	Title       string
	Description *string
	ImageURL    *string
	ProjectURL  *string
}

// ProjectPatch describes a merge update: nil fields keep their stored value.
type ProjectPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	ProjectURL  *string
}

func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil && p.ProjectURL == nil
}

// Apply returns a copy of project with the non-nil patch fields applied.
func (p ProjectPatch) Apply(project Project) Project {
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Description != nil {
		project.Description = p.Description
	}
	if p.ImageURL != nil {
		project.ImageURL = p.ImageURL
	}
	if p.ProjectURL != nil {
		project.ProjectURL = p.ProjectURL
	}
	return project
}

func StringPtr(s string) *string {
	return &s
}

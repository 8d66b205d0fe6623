package models

// Field names a project attribute collected or edited by a conversation.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldProjectURL  Field = "project_url"
	FieldImage       Field = "image"
)

// ProjectFields lists the fields in the order the add-project flow asks for them.
var ProjectFields = []Field{FieldTitle, FieldDescription, FieldProjectURL, FieldImage}

func (f Field) Valid() bool {
	switch f {
	case FieldTitle, FieldDescription, FieldProjectURL, FieldImage:
		return true
	}
	return false
}

// Patch builds a ProjectPatch that sets only this field.
func (f Field) Patch(value string) ProjectPatch {
	switch f {
	case FieldTitle:
		return ProjectPatch{Title: &value}
	case FieldDescription:
		return ProjectPatch{Description: &value}
	case FieldProjectURL:
		return ProjectPatch{ProjectURL: &value}
	case FieldImage:
		return ProjectPatch{ImageURL: &value}
	}
	return ProjectPatch{}
}

package fsm

import "github.com/ad/go-portfolio-admin/internal/models"

// FSM states of the admin panel conversation.
//
// Add Project Flow:
//   StateIdle -> StateAwaitingTitle (via "add project" button)
//   StateAwaitingTitle -> StateAwaitingDescription (via title text)
//   StateAwaitingDescription -> StateAwaitingProjectURL (via text or /skip)
//   StateAwaitingProjectURL -> StateAwaitingImage (via text or /skip)
//   StateAwaitingImage -> StateIdle (via photo or /skip, project is stored)
//
// Edit Field Flow:
//   StateIdle -> StateEditing* (via field button on the edit menu)
//   StateEditing* -> StateIdle (via text, or photo for the image)
//
// Admin Flows:
//   StateIdle -> StateAddingAdmin -> StateIdle (via digits)
//   StateIdle -> StateEditingAdmin -> StateIdle (via digits)
//   Deletion is stateless: list -> confirmation screen -> execution.
//
// Cancel:
//   Any state -> StateIdle (via cancel button or /cancel)

const (
	StateIdle = "idle"

	StateAwaitingTitle       = "awaiting_title"
	StateAwaitingDescription = "awaiting_description"
	StateAwaitingProjectURL  = "awaiting_project_url"
	StateAwaitingImage       = "awaiting_image"

	StateEditingTitle       = "editing_title"
	StateEditingDescription = "editing_description"
	StateEditingProjectURL  = "editing_project_url"
	StateEditingImage       = "editing_image"

	StateAddingAdmin  = "adding_admin"
	StateEditingAdmin = "editing_admin"
)

// States lists every state, idle first.
var States = []string{
	StateIdle,
	StateAwaitingTitle,
	StateAwaitingDescription,
	StateAwaitingProjectURL,
	StateAwaitingImage,
	StateEditingTitle,
	StateEditingDescription,
	StateEditingProjectURL,
	StateEditingImage,
	StateAddingAdmin,
	StateEditingAdmin,
}

// IsIdle treats the empty string as idle so zero-value sessions need no setup.
func IsIdle(state string) bool {
	return state == "" || state == StateIdle
}

// EditingState returns the state that edits the given project field.
func EditingState(field models.Field) string {
	switch field {
	case models.FieldTitle:
		return StateEditingTitle
	case models.FieldDescription:
		return StateEditingDescription
	case models.FieldProjectURL:
		return StateEditingProjectURL
	case models.FieldImage:
		return StateEditingImage
	}
	return StateIdle
}

// EditedField is the inverse of EditingState.
func EditedField(state string) (models.Field, bool) {
	switch state {
	case StateEditingTitle:
		return models.FieldTitle, true
	case StateEditingDescription:
		return models.FieldDescription, true
	case StateEditingProjectURL:
		return models.FieldProjectURL, true
	case StateEditingImage:
		return models.FieldImage, true
	}
	return "", false
}

// CollectedField returns the field an add-project state is waiting for.
func CollectedField(state string) (models.Field, bool) {
	switch state {
	case StateAwaitingTitle:
		return models.FieldTitle, true
	case StateAwaitingDescription:
		return models.FieldDescription, true
	case StateAwaitingProjectURL:
		return models.FieldProjectURL, true
	case StateAwaitingImage:
		return models.FieldImage, true
	}
	return "", false
}

package fsm

import "github.com/ad/go-portfolio-admin/internal/models"

// Kind identifies an event type in the transition table.
type Kind string

const (
	KindStart        Kind = "start"
	KindMainMenu     Kind = "main_menu"
	KindCancel       Kind = "cancel"
	KindNoop         Kind = "noop"
	KindSelfRegister Kind = "self_register"

	KindViewProjects         Kind = "view_projects"
	KindViewProject          Kind = "view_project"
	KindAddProject           Kind = "add_project"
	KindEditProject          Kind = "edit_project"
	KindEditTitle            Kind = "edit_title"
	KindEditDescription      Kind = "edit_description"
	KindEditProjectURL       Kind = "edit_project_url"
	KindEditImage            Kind = "edit_image"
	KindDeleteProject        Kind = "delete_project"
	KindConfirmDeleteProject Kind = "confirm_delete_project"

	KindManageAdmins        Kind = "manage_admins"
	KindListAdminsForEdit   Kind = "list_admins_edit"
	KindListAdminsForDelete Kind = "list_admins_delete"
	KindAddAdmin            Kind = "add_admin"
	KindEditAdmin           Kind = "edit_admin"
	KindDeleteAdmin         Kind = "delete_admin"
	KindConfirmDeleteAdmin  Kind = "confirm_delete_admin"

	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindSkip  Kind = "skip"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindStart, KindMainMenu, KindCancel, KindNoop, KindSelfRegister,
	KindViewProjects, KindViewProject, KindAddProject, KindEditProject,
	KindEditTitle, KindEditDescription, KindEditProjectURL, KindEditImage,
	KindDeleteProject, KindConfirmDeleteProject,
	KindManageAdmins, KindListAdminsForEdit, KindListAdminsForDelete,
	KindAddAdmin, KindEditAdmin, KindDeleteAdmin, KindConfirmDeleteAdmin,
	KindText, KindPhoto, KindSkip,
}

// IsInput reports whether the kind carries user input for a flow state rather
// than a navigation request.
func (k Kind) IsInput() bool {
	return k == KindText || k == KindPhoto || k == KindSkip
}

// Event is an inbound interaction decoded once at the transport boundary.
type Event interface {
	Kind() Kind
}

type Start struct{}

type MainMenu struct{}

type Cancel struct{}

type Noop struct{}

// SelfRegister is the /add_admin command; an empty Arg registers the sender.
type SelfRegister struct{ Arg string }

type ViewProjects struct{ Page int }

type ViewProject struct{ ProjectID int64 }

type AddProject struct{}

type EditProject struct{ ProjectID int64 }

type EditField struct {
	ProjectID int64
	Field     models.Field
}

type DeleteProject struct{ ProjectID int64 }

type ConfirmDeleteProject struct{ ProjectID int64 }

type ManageAdmins struct{}

type ListAdmins struct{ ForDelete bool }

type AddAdmin struct{}

type EditAdmin struct{ AdminID string }

type DeleteAdmin struct{ AdminID string }

type ConfirmDeleteAdmin struct{ AdminID string }

type Text struct{ Body string }

// Photo carries the largest size of an inbound photo.
type Photo struct {
	FileID       string
	FileUniqueID string
}

type Skip struct{}

func (Start) Kind() Kind                { return KindStart }
func (MainMenu) Kind() Kind             { return KindMainMenu }
func (Cancel) Kind() Kind               { return KindCancel }
func (Noop) Kind() Kind                 { return KindNoop }
func (SelfRegister) Kind() Kind         { return KindSelfRegister }
func (ViewProjects) Kind() Kind         { return KindViewProjects }
func (ViewProject) Kind() Kind          { return KindViewProject }
func (AddProject) Kind() Kind           { return KindAddProject }
func (EditProject) Kind() Kind          { return KindEditProject }
func (DeleteProject) Kind() Kind        { return KindDeleteProject }
func (ConfirmDeleteProject) Kind() Kind { return KindConfirmDeleteProject }
func (ManageAdmins) Kind() Kind         { return KindManageAdmins }
func (AddAdmin) Kind() Kind             { return KindAddAdmin }
func (EditAdmin) Kind() Kind            { return KindEditAdmin }
func (DeleteAdmin) Kind() Kind          { return KindDeleteAdmin }
func (ConfirmDeleteAdmin) Kind() Kind   { return KindConfirmDeleteAdmin }
func (Text) Kind() Kind                 { return KindText }
func (Photo) Kind() Kind                { return KindPhoto }
func (Skip) Kind() Kind                 { return KindSkip }

func (e EditField) Kind() Kind {
	switch e.Field {
	case models.FieldTitle:
		return KindEditTitle
	case models.FieldDescription:
		return KindEditDescription
	case models.FieldProjectURL:
		return KindEditProjectURL
	case models.FieldImage:
		return KindEditImage
	}
	return KindNoop
}

func (e ListAdmins) Kind() Kind {
	if e.ForDelete {
		return KindListAdminsForDelete
	}
	return KindListAdminsForEdit
}

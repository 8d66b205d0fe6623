package fsm

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ad/go-portfolio-admin/internal/models"
)

var ErrUnknownCallback = errors.New("unknown callback data")

const (
	cbMainMenu = "menu"
	cbCancel   = "cancel"
	cbNoop     = "noop"
	cbSkip     = "skip"

	cbProjectPrefix = "prj"
	cbAdminPrefix   = "adm"
)

// EncodeCallback renders a button event as callback data. Events that only
// arrive as messages encode to an empty string.
func EncodeCallback(e Event) string {
	switch ev := e.(type) {
	case MainMenu:
		return cbMainMenu
	case Cancel:
		return cbCancel
	case Noop:
		return cbNoop
	case Skip:
		return cbSkip
	case ViewProjects:
		return join(cbProjectPrefix, "page", strconv.Itoa(ev.Page))
	case ViewProject:
		return join(cbProjectPrefix, "view", id(ev.ProjectID))
	case AddProject:
		return join(cbProjectPrefix, "add")
	case EditProject:
		return join(cbProjectPrefix, "edit", id(ev.ProjectID))
	case EditField:
		return join(cbProjectPrefix, "field", id(ev.ProjectID), string(ev.Field))
	case DeleteProject:
		return join(cbProjectPrefix, "del", id(ev.ProjectID))
	case ConfirmDeleteProject:
		return join(cbProjectPrefix, "delok", id(ev.ProjectID))
	case ManageAdmins:
		return join(cbAdminPrefix, "menu")
	case ListAdmins:
		if ev.ForDelete {
			return join(cbAdminPrefix, "list", "del")
		}
		return join(cbAdminPrefix, "list", "edit")
	case AddAdmin:
		return join(cbAdminPrefix, "add")
	case EditAdmin:
		return join(cbAdminPrefix, "edit", ev.AdminID)
	case DeleteAdmin:
		return join(cbAdminPrefix, "del", ev.AdminID)
	case ConfirmDeleteAdmin:
		return join(cbAdminPrefix, "delok", ev.AdminID)
	}
	return ""
}

// DecodeCallback parses callback data produced by EncodeCallback.
func DecodeCallback(data string) (Event, error) {
	switch data {
	case cbMainMenu:
		return MainMenu{}, nil
	case cbCancel:
		return Cancel{}, nil
	case cbNoop:
		return Noop{}, nil
	case cbSkip:
		return Skip{}, nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return nil, errors.Wrapf(ErrUnknownCallback, "%q", data)
	}

	var (
		ev  Event
		err error
	)
	switch parts[0] {
	case cbProjectPrefix:
		ev, err = decodeProject(parts[1:])
	case cbAdminPrefix:
		ev, err = decodeAdmin(parts[1:])
	default:
		err = ErrUnknownCallback
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%q", data)
	}
	return ev, nil
}

func decodeProject(parts []string) (Event, error) {
	if parts[0] == "add" && len(parts) == 1 {
		return AddProject{}, nil
	}
	if len(parts) < 2 {
		return nil, ErrUnknownCallback
	}

	if parts[0] == "page" && len(parts) == 2 {
		page, err := strconv.Atoi(parts[1])
		if err != nil || page < 0 {
			return nil, ErrUnknownCallback
		}
		return ViewProjects{Page: page}, nil
	}

	projectID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || projectID <= 0 {
		return nil, ErrUnknownCallback
	}

	if parts[0] == "field" {
		if len(parts) != 3 {
			return nil, ErrUnknownCallback
		}
		field := models.Field(parts[2])
		if !field.Valid() {
			return nil, ErrUnknownCallback
		}
		return EditField{ProjectID: projectID, Field: field}, nil
	}

	if len(parts) != 2 {
		return nil, ErrUnknownCallback
	}
	switch parts[0] {
	case "view":
		return ViewProject{ProjectID: projectID}, nil
	case "edit":
		return EditProject{ProjectID: projectID}, nil
	case "del":
		return DeleteProject{ProjectID: projectID}, nil
	case "delok":
		return ConfirmDeleteProject{ProjectID: projectID}, nil
	}
	return nil, ErrUnknownCallback
}

func decodeAdmin(parts []string) (Event, error) {
	switch len(parts) {
	case 1:
		switch parts[0] {
		case "menu":
			return ManageAdmins{}, nil
		case "add":
			return AddAdmin{}, nil
		}
	case 2:
		if parts[0] == "list" {
			switch parts[1] {
			case "edit":
				return ListAdmins{}, nil
			case "del":
				return ListAdmins{ForDelete: true}, nil
			}
			return nil, ErrUnknownCallback
		}

		adminID := parts[1]
		if !isDigits(adminID) {
			return nil, ErrUnknownCallback
		}
		switch parts[0] {
		case "edit":
			return EditAdmin{AdminID: adminID}, nil
		case "del":
			return DeleteAdmin{AdminID: adminID}, nil
		case "delok":
			return ConfirmDeleteAdmin{AdminID: adminID}, nil
		}
	}
	return nil, ErrUnknownCallback
}

// DecodeMessage turns an inbound message into an event. photoFileID is the
// file id of the largest photo size, or empty for text messages.
func DecodeMessage(text, photoFileID, photoUniqueID string) Event {
	if photoFileID != "" {
		return Photo{FileID: photoFileID, FileUniqueID: photoUniqueID}
	}

	command, arg, ok := splitCommand(text)
	if ok {
		switch command {
		case "start":
			return Start{}
		case "menu":
			return MainMenu{}
		case "cancel":
			return Cancel{}
		case "skip":
			return Skip{}
		case "add_admin":
			return SelfRegister{Arg: arg}
		}
	}

	return Text{Body: text}
}

// splitCommand splits "/cmd@bot arg" into "cmd" and "arg".
func splitCommand(text string) (command, arg string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

package fsm

// Action names the handler the engine runs for a transition.
type Action string

const (
	ActShowWelcome  Action = "show_welcome"
	ActShowMainMenu Action = "show_main_menu"
	ActCancel       Action = "cancel"
	ActNoop         Action = "noop"
	ActSelfRegister Action = "self_register"

	ActListProjects     Action = "list_projects"
	ActShowProject      Action = "show_project"
	ActStartAddProject  Action = "start_add_project"
	ActShowEditMenu     Action = "show_edit_menu"
	ActStartEditField   Action = "start_edit_field"
	ActAskDeleteProject Action = "ask_delete_project"
	ActDeleteProject    Action = "delete_project"

	ActShowAdminMenu  Action = "show_admin_menu"
	ActListAdmins     Action = "list_admins"
	ActStartAddAdmin  Action = "start_add_admin"
	ActStartEditAdmin Action = "start_edit_admin"
	ActAskDeleteAdmin Action = "ask_delete_admin"
	ActDeleteAdmin    Action = "delete_admin"

	// ActCollectField stores one add-project answer and asks for the next.
	ActCollectField Action = "collect_field"
	// ActFinishProject stores the last answer and creates the project.
	ActFinishProject Action = "finish_project"
	ActSaveField     Action = "save_field"
	ActSaveAdmin     Action = "save_admin"
	// ActReject re-prompts without leaving the state.
	ActReject Action = "reject"
)

// Transition is a row of the state table. Reset drops the data collected by
// the flow being left before Action runs.
type Transition struct {
	Next   string
	Action Action
	Reset  bool
}

var idleRows = map[Kind]Transition{
	KindStart:        {Next: StateIdle, Action: ActShowWelcome},
	KindMainMenu:     {Next: StateIdle, Action: ActShowMainMenu},
	KindSelfRegister: {Next: StateIdle, Action: ActSelfRegister},

	KindViewProjects:         {Next: StateIdle, Action: ActListProjects},
	KindViewProject:          {Next: StateIdle, Action: ActShowProject},
	KindAddProject:           {Next: StateAwaitingTitle, Action: ActStartAddProject},
	KindEditProject:          {Next: StateIdle, Action: ActShowEditMenu},
	KindEditTitle:            {Next: StateEditingTitle, Action: ActStartEditField},
	KindEditDescription:      {Next: StateEditingDescription, Action: ActStartEditField},
	KindEditProjectURL:       {Next: StateEditingProjectURL, Action: ActStartEditField},
	KindEditImage:            {Next: StateEditingImage, Action: ActStartEditField},
	KindDeleteProject:        {Next: StateIdle, Action: ActAskDeleteProject},
	KindConfirmDeleteProject: {Next: StateIdle, Action: ActDeleteProject},

	KindManageAdmins:        {Next: StateIdle, Action: ActShowAdminMenu},
	KindListAdminsForEdit:   {Next: StateIdle, Action: ActListAdmins},
	KindListAdminsForDelete: {Next: StateIdle, Action: ActListAdmins},
	KindAddAdmin:            {Next: StateAddingAdmin, Action: ActStartAddAdmin},
	KindEditAdmin:           {Next: StateEditingAdmin, Action: ActStartEditAdmin},
	KindDeleteAdmin:         {Next: StateIdle, Action: ActAskDeleteAdmin},
	KindConfirmDeleteAdmin:  {Next: StateIdle, Action: ActDeleteAdmin},
}

// inputRows holds what each flow state does with text, photos and /skip.
var inputRows = map[string]map[Kind]Transition{
	StateAwaitingTitle: {
		KindText:  {Next: StateAwaitingDescription, Action: ActCollectField},
		KindPhoto: reject(StateAwaitingTitle),
		KindSkip:  reject(StateAwaitingTitle),
	},
	StateAwaitingDescription: {
		KindText:  {Next: StateAwaitingProjectURL, Action: ActCollectField},
		KindSkip:  {Next: StateAwaitingProjectURL, Action: ActCollectField},
		KindPhoto: reject(StateAwaitingDescription),
	},
	StateAwaitingProjectURL: {
		KindText:  {Next: StateAwaitingImage, Action: ActCollectField},
		KindSkip:  {Next: StateAwaitingImage, Action: ActCollectField},
		KindPhoto: reject(StateAwaitingProjectURL),
	},
	StateAwaitingImage: {
		KindPhoto: {Next: StateIdle, Action: ActFinishProject},
		KindSkip:  {Next: StateIdle, Action: ActFinishProject},
		KindText:  reject(StateAwaitingImage),
	},

	StateEditingTitle: {
		KindText:  {Next: StateIdle, Action: ActSaveField},
		KindPhoto: reject(StateEditingTitle),
		KindSkip:  reject(StateEditingTitle),
	},
	StateEditingDescription: {
		KindText:  {Next: StateIdle, Action: ActSaveField},
		KindPhoto: reject(StateEditingDescription),
		KindSkip:  reject(StateEditingDescription),
	},
	StateEditingProjectURL: {
		KindText:  {Next: StateIdle, Action: ActSaveField},
		KindPhoto: reject(StateEditingProjectURL),
		KindSkip:  reject(StateEditingProjectURL),
	},
	StateEditingImage: {
		KindPhoto: {Next: StateIdle, Action: ActSaveField},
		KindText:  reject(StateEditingImage),
		KindSkip:  reject(StateEditingImage),
	},

	StateAddingAdmin: {
		KindText:  {Next: StateIdle, Action: ActSaveAdmin},
		KindPhoto: reject(StateAddingAdmin),
		KindSkip:  reject(StateAddingAdmin),
	},
	StateEditingAdmin: {
		KindText:  {Next: StateIdle, Action: ActSaveAdmin},
		KindPhoto: reject(StateEditingAdmin),
		KindSkip:  reject(StateEditingAdmin),
	},
}

func reject(state string) Transition {
	return Transition{Next: state, Action: ActReject}
}

// Lookup returns the transition for an event arriving in state.
//
// Cancel is accepted everywhere. Navigation from a flow state abandons the
// flow (Reset) and behaves as it would from idle. Input in idle has no
// transition and is ignored.
func Lookup(state string, kind Kind) (Transition, bool) {
	if IsIdle(state) {
		state = StateIdle
	}

	switch kind {
	case KindCancel:
		return Transition{Next: StateIdle, Action: ActCancel, Reset: state != StateIdle}, true
	case KindNoop:
		return Transition{Next: state, Action: ActNoop}, true
	}

	if kind.IsInput() {
		t, ok := inputRows[state][kind]
		return t, ok
	}

	t, ok := idleRows[kind]
	if !ok {
		return Transition{}, false
	}
	if state != StateIdle {
		t.Reset = true
	}
	return t, true
}

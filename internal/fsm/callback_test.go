package fsm

import (
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ad/go-portfolio-admin/internal/models"
)

func TestCallbackRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		projectID := rapid.Int64Range(1, 1<<40).Draw(rt, "projectID")
		adminID := strconv.FormatInt(rapid.Int64Range(1, 1<<40).Draw(rt, "adminID"), 10)
		page := rapid.IntRange(0, 500).Draw(rt, "page")
		field := rapid.SampledFrom(models.ProjectFields).Draw(rt, "field")

		events := []Event{
			MainMenu{}, Cancel{}, Noop{}, Skip{},
			ViewProjects{Page: page},
			ViewProject{ProjectID: projectID},
			AddProject{},
			EditProject{ProjectID: projectID},
			EditField{ProjectID: projectID, Field: field},
			DeleteProject{ProjectID: projectID},
			ConfirmDeleteProject{ProjectID: projectID},
			ManageAdmins{},
			ListAdmins{}, ListAdmins{ForDelete: true},
			AddAdmin{},
			EditAdmin{AdminID: adminID},
			DeleteAdmin{AdminID: adminID},
			ConfirmDeleteAdmin{AdminID: adminID},
		}
		ev := rapid.SampledFrom(events).Draw(rt, "event")

		data := EncodeCallback(ev)
		if len(data) > 64 {
			rt.Fatalf("callback data too long: %q", data)
		}

		decoded, err := DecodeCallback(data)
		if err != nil {
			rt.Fatalf("decode %q: %v", data, err)
		}
		if decoded != ev {
			rt.Fatalf("round trip changed %#v into %#v", ev, decoded)
		}
	})
}

func TestDecodeCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"prj",
		"prj:view",
		"prj:view:abc",
		"prj:view:-3",
		"prj:view:0",
		"prj:field:5",
		"prj:field:5:created_at",
		"prj:page:-1",
		"prj:unknown:5",
		"adm:edit:12a",
		"adm:del:",
		"adm:list:all",
		"adm:menu:1:2",
		"post:view:1",
	} {
		_, err := DecodeCallback(data)
		require.Error(t, err, "data %q", data)
		assert.True(t, errors.Is(err, ErrUnknownCallback), "data %q", data)
	}
}

func TestEncodeMessageOnlyEvents(t *testing.T) {
	assert.Empty(t, EncodeCallback(Start{}))
	assert.Empty(t, EncodeCallback(Text{Body: "hi"}))
	assert.Empty(t, EncodeCallback(Photo{FileID: "x"}))
	assert.Empty(t, EncodeCallback(SelfRegister{}))
}

func TestDecodeMessage(t *testing.T) {
	cases := []struct {
		text  string
		photo string
		want  Event
	}{
		{"/start", "", Start{}},
		{"/start deep-link", "", Start{}},
		{"/start@portfolio_bot", "", Start{}},
		{"/cancel", "", Cancel{}},
		{"/skip", "", Skip{}},
		{" /skip ", "", Skip{}},
		{"/menu", "", MainMenu{}},
		{"/add_admin", "", SelfRegister{}},
		{"/add_admin 12345", "", SelfRegister{Arg: "12345"}},
		{"/ADD_ADMIN@bot  777 ", "", SelfRegister{Arg: "777"}},
		{"Demo project", "", Text{Body: "Demo project"}},
		{"/unknown", "", Text{Body: "/unknown"}},
		{"/", "", Text{Body: "/"}},
		{"caption", "file-1", Photo{FileID: "file-1", FileUniqueID: "u-1"}},
	}
	for _, c := range cases {
		unique := ""
		if c.photo != "" {
			unique = "u-1"
		}
		assert.Equal(t, c.want, DecodeMessage(c.text, c.photo, unique), "text %q", c.text)
	}
}

func TestEventKindsMatchTable(t *testing.T) {
	assert.Equal(t, KindEditImage, EditField{Field: models.FieldImage}.Kind())
	assert.Equal(t, KindEditProjectURL, EditField{Field: models.FieldProjectURL}.Kind())
	assert.Equal(t, KindNoop, EditField{Field: "bogus"}.Kind())
	assert.Equal(t, KindListAdminsForDelete, ListAdmins{ForDelete: true}.Kind())
	assert.Equal(t, KindListAdminsForEdit, ListAdmins{}.Kind())
}

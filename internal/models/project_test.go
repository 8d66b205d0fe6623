package models

import (
	"testing"

	"pgregory.net/rapid"
)

func TestProjectPatchApplyKeepsUntouchedFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		desc := rapid.StringMatching(`[a-zA-Zа-яА-Я0-9 ]{0,40}`).Draw(rt, "description")
		image := rapid.StringMatching(`https://i\.example/[a-z]{1,10}\.png`).Draw(rt, "image")
		project := Project{
			ID:          rapid.Int64Range(1, 1000).Draw(rt, "id"),
			Title:       rapid.StringMatching(`[a-zA-Z ]{1,30}`).Draw(rt, "title"),
			Description: &desc,
			ImageURL:    &image,
		}

		field := rapid.SampledFrom(ProjectFields).Draw(rt, "field")
		value := rapid.StringMatching(`[a-z]{1,20}`).Draw(rt, "value")

		updated := field.Patch(value).Apply(project)

		if field != FieldTitle && updated.Title != project.Title {
			rt.Fatalf("title changed by %s patch", field)
		}
		if field != FieldDescription && updated.Description != project.Description {
			rt.Fatalf("description changed by %s patch", field)
		}
		if field != FieldImage && updated.ImageURL != project.ImageURL {
			rt.Fatalf("image changed by %s patch", field)
		}
		if field != FieldProjectURL && updated.ProjectURL != nil {
			rt.Fatalf("project url set by %s patch", field)
		}
	})
}

func TestProjectPatchEmpty(t *testing.T) {
	if !(ProjectPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if FieldTitle.Patch("x").Empty() {
		t.Error("title patch should not be empty")
	}
	if !Field("unknown").Patch("x").Empty() {
		t.Error("unknown field should produce an empty patch")
	}
}

func TestSessionResetKeepsPendingMessages(t *testing.T) {
	s := NewSession(SessionKey{ChatID: 1, UserID: 2}, "awaiting_description")
	s.Resolve(FieldTitle, StringPtr("Demo"))
	s.Resolve(FieldDescription, nil)
	s.SubjectID = 7
	s.AdminTarget = "42"
	s.PendingMessageIDs = []int{10, 11}

	if v, ok := s.Value(FieldDescription); !ok || v != nil {
		t.Fatalf("expected skipped description, got %v %v", v, ok)
	}

	s.Reset()

	if len(s.Fields) != 0 || s.SubjectID != 0 || s.AdminTarget != "" {
		t.Errorf("reset left flow data behind: %+v", s)
	}
	if len(s.PendingMessageIDs) != 2 {
		t.Errorf("expected pending ids to survive reset, got %v", s.PendingMessageIDs)
	}
	if s.Key().String() != "1:2" {
		t.Errorf("unexpected key %s", s.Key())
	}
}

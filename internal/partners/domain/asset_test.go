package domain

import (
	"slices"
	"testing"
)

func TestBuildChecklist(t *testing.T) {
	cl := BuildChecklist([]AssetState{
		{Channel: ChannelEmail, IsComplete: true, Feedback: FeedbackApproved},
		{Channel: ChannelDisplay, IsComplete: true, Feedback: FeedbackNeedsRevision},
		{Channel: ChannelSocial, IsComplete: false},
		{Channel: "radio", IsComplete: true},
	})

	if cl.Total != 6 || cl.Complete != 2 || cl.Approved != 1 {
		t.Fatalf("unexpected checklist %+v", cl)
	}
	want := []string{ChannelSocial, ChannelSearch, ChannelPrint, ChannelVideo}
	if !slices.Equal(cl.Missing, want) {
		t.Fatalf("missing = %v, want %v", cl.Missing, want)
	}
}

func TestBuildChecklistEmpty(t *testing.T) {
	cl := BuildChecklist(nil)
	if cl.Complete != 0 || len(cl.Missing) != len(Channels()) {
		t.Fatalf("unexpected checklist %+v", cl)
	}
}

// Package domain holds the partner onboarding vocabularies: creative asset
// channels and review states.
package domain

import "slices"

// Creative channels a partner supplies assets for.
const (
	ChannelEmail   = "email"
	ChannelDisplay = "display"
	ChannelSocial  = "social"
	ChannelSearch  = "search"
	ChannelPrint   = "print"
	ChannelVideo   = "video"
)

// Review states of an asset.
const (
	FeedbackPending       = "pending"
	FeedbackApproved      = "approved"
	FeedbackNeedsRevision = "needs_revision"
)

var channels = []string{ChannelEmail, ChannelDisplay, ChannelSocial, ChannelSearch, ChannelPrint, ChannelVideo}

var feedbackStatuses = []string{FeedbackPending, FeedbackApproved, FeedbackNeedsRevision}

func Channels() []string         { return slices.Clone(channels) }
func FeedbackStatuses() []string { return slices.Clone(feedbackStatuses) }

func IsChannel(c string) bool         { return slices.Contains(channels, c) }
func IsFeedbackStatus(s string) bool { return slices.Contains(feedbackStatuses, s) }

// Checklist is a partner's asset collection progress over all channels.
type Checklist struct {
	Complete int
	Total    int
	Approved int
	// Missing lists channels without a completed asset, in channel order.
	Missing []string
}

// AssetState is the part of an asset the checklist needs.
type AssetState struct {
	Channel    string
	IsComplete bool
	Feedback   string
}

// BuildChecklist counts completed and approved channels. Assets for unknown
// channels are ignored.
func BuildChecklist(assets []AssetState) Checklist {
	byChannel := make(map[string]AssetState, len(assets))
	for _, a := range assets {
		byChannel[a.Channel] = a
	}

	cl := Checklist{Total: len(channels), Missing: []string{}}
	for _, ch := range channels {
		a, ok := byChannel[ch]
		if !ok || !a.IsComplete {
			cl.Missing = append(cl.Missing, ch)
			continue
		}
		cl.Complete++
		if a.Feedback == FeedbackApproved {
			cl.Approved++
		}
	}
	return cl
}

// Package domain provides the stage model for the sales pipeline and the
// partner campaign funnel.
package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Prospect stages in canonical board order.
const (
	ProspectStageProspecting  = "prospecting"
	ProspectStageInitialPitch = "initial_pitch"
	ProspectStageNegotiation  = "negotiation"
	ProspectStageContractSent = "contract_sent"
	ProspectStageClosedWon    = "closed_won"
	ProspectStageClosedLost   = "closed_lost"
)

// Campaign stages in canonical order. Values outside this list (for example
// the legacy internal_review and concluded) are reported as unknown.
const (
	CampaignStageAssetCollection = "asset_collection"
	CampaignStageNewSubmission   = "new_submission"
	CampaignStageCreativeReview  = "creative_review"
	CampaignStagePartnerReview   = "partner_review"
	CampaignStageReadyForLaunch  = "ready_for_launch"
	CampaignStageLive            = "live"
)

// Campaign priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var prospectStages = []string{
	ProspectStageProspecting,
	ProspectStageInitialPitch,
	ProspectStageNegotiation,
	ProspectStageContractSent,
	ProspectStageClosedWon,
	ProspectStageClosedLost,
}

var campaignStages = []string{
	CampaignStageAssetCollection,
	CampaignStageNewSubmission,
	CampaignStageCreativeReview,
	CampaignStagePartnerReview,
	CampaignStageReadyForLaunch,
	CampaignStageLive,
}

var priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// ErrStageUnknown is matched by StageUnknownError via errors.Is.
var ErrStageUnknown = errors.New("stage unknown")

// StageUnknownError reports a stage value outside the canonical order.
type StageUnknownError struct {
	Stage string
}

func (e *StageUnknownError) Error() string {
	return fmt.Sprintf("stage unknown: %q", e.Stage)
}

func (e *StageUnknownError) Is(target error) bool {
	return target == ErrStageUnknown
}

func ProspectStages() []string { return slices.Clone(prospectStages) }
func CampaignStages() []string { return slices.Clone(campaignStages) }
func Priorities() []string     { return slices.Clone(priorities) }

func IsProspectStage(stage string) bool { return slices.Contains(prospectStages, stage) }
func IsCampaignStage(stage string) bool { return slices.Contains(campaignStages, stage) }
func IsPriority(p string) bool          { return slices.Contains(priorities, p) }

// Progress is the position of a campaign in its funnel.
type Progress struct {
	Index   int
	Total   int
	Percent float64
}

// CampaignProgress returns (index+1)/total for stage. Unknown stages return a
// *StageUnknownError instead of a degenerate percentage.
func CampaignProgress(stage string) (Progress, error) {
	idx := slices.Index(campaignStages, stage)
	if idx < 0 {
		return Progress{}, &StageUnknownError{Stage: stage}
	}
	total := len(campaignStages)
	return Progress{
		Index:   idx,
		Total:   total,
		Percent: float64(idx+1) / float64(total) * 100,
	}, nil
}

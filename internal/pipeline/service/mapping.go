package service

import (
	"campaign_portal_backend/internal/pipeline/domain"
	"campaign_portal_backend/internal/pipeline/repository"
	"campaign_portal_backend/internal/pipeline/transport"
)

func mapProspect(p repository.Prospect) transport.ProspectResponse {
	return transport.ProspectResponse{
		ID:             p.ID,
		CompanyName:    p.CompanyName,
		ContactName:    p.ContactName,
		ContactEmail:   p.ContactEmail,
		ContactPhone:   p.ContactPhone,
		EstimatedValue: p.EstimatedValue,
		Stage:          p.Stage,
		Notes:          p.Notes,
		Source:         p.Source,
		Industry:       p.Industry,
		CreatedBy:      p.CreatedBy,
		AssignedTo:     p.AssignedTo,
		StageUpdatedAt: p.StageUpdatedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func mapProspects(items []repository.Prospect) []transport.ProspectResponse {
	out := make([]transport.ProspectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, mapProspect(p))
	}
	return out
}

func mapCampaign(cs repository.CampaignStatus) transport.CampaignStatusResponse {
	resp := transport.CampaignStatusResponse{
		PartnerID:       cs.PartnerID,
		Priority:        cs.Priority,
		Stage:           cs.Stage,
		TotalStages:     len(domain.CampaignStages()),
		LaunchDate:      cs.LaunchDate,
		NextMeetingDate: cs.NextMeetingDate,
		ConclusionDate:  cs.ConclusionDate,
		UpdatedAt:       cs.UpdatedAt,
	}
	if progress, err := domain.CampaignProgress(cs.Stage); err == nil {
		resp.StageKnown = true
		resp.ProgressPercent = &progress.Percent
		resp.StageIndex = &progress.Index
	}
	return resp
}

func mapCard(card repository.CampaignCard) transport.CampaignCardResponse {
	resp := transport.CampaignCardResponse{
		PartnerID:   card.PartnerID,
		CompanyName: card.CompanyName,
		ContactName: card.ContactName,
	}
	if card.Status != nil {
		status := mapCampaign(*card.Status)
		resp.Status = &status
	}
	return resp
}

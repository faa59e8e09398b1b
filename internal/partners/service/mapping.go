package service

import (
	"campaign_portal_backend/internal/partners/repository"
	"campaign_portal_backend/internal/partners/transport"
)

func mapPartner(p repository.Partner) transport.PartnerResponse {
	return transport.PartnerResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		CompanyName:  p.CompanyName,
		ContactName:  p.ContactName,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
		ProspectID:   p.ProspectID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func mapAsset(a repository.CreativeAsset) transport.AssetResponse {
	resp := transport.AssetResponse{
		ID:         a.ID,
		PartnerID:  a.PartnerID,
		Channel:    a.Channel,
		FileURLs:   a.FileURLs,
		IsComplete: a.IsComplete,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.Feedback != nil {
		resp.Feedback = &transport.FeedbackResponse{
			Status:     a.Feedback.Status,
			Notes:      a.Feedback.Notes,
			ReviewedBy: a.Feedback.ReviewedBy,
			UpdatedAt:  a.Feedback.UpdatedAt,
		}
	}
	return resp
}

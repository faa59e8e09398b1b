// Package service implements partner records, creative asset collection and
// asset review.
package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"campaign_portal_backend/internal/adapters/storage"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/internal/partners/domain"
	"campaign_portal_backend/internal/partners/repository"
	"campaign_portal_backend/internal/partners/transport"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/phone"
	"campaign_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Service provides business logic for partners.
type Service struct {
	repo        repository.Store
	eventBus    events.Bus
	storage     storage.StorageService
	assetBucket string
	log         *logger.Logger
	now         func() time.Time
}

// New creates a new partners service. storageSvc may be nil when object
// storage is not configured; upload and download URLs are then unavailable.
func New(repo repository.Store, eventBus events.Bus, storageSvc storage.StorageService, assetBucket string, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		eventBus:    eventBus,
		storage:     storageSvc,
		assetBucket: assetBucket,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, req transport.CreatePartnerRequest) (transport.PartnerResponse, error) {
	now := s.now()
	partner := repository.Partner{
		ID:           uuid.New(),
		UserID:       req.UserID,
		CompanyName:  sanitize.Text(req.CompanyName),
		ContactName:  sanitize.Text(req.ContactName),
		ContactEmail: normalizeEmail(req.ContactEmail),
		ContactPhone: normalizePhone(req.ContactPhone),
		ProspectID:   req.ProspectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if partner.CompanyName == "" || partner.ContactName == "" {
		return transport.PartnerResponse{}, apperr.Validation("company and contact name are required")
	}

	created, err := s.repo.Create(ctx, partner)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(created), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(partner), nil
}

// Mine returns the partner record linked to a partner user.
func (s *Service) Mine(ctx context.Context, userID uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(partner), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdatePartnerRequest) (transport.PartnerResponse, error) {
	update := repository.PartnerUpdate{
		ID:          id,
		UserID:      req.UserID,
		CompanyName: sanitize.TextPtr(req.CompanyName),
		ContactName: sanitize.TextPtr(req.ContactName),
	}
	if req.ContactEmail != nil {
		email := normalizeEmail(*req.ContactEmail)
		update.ContactEmail = &email
	}
	if req.ContactPhone != nil {
		update.ContactPhone = normalizePhone(*req.ContactPhone)
	}

	partner, err := s.repo.Update(ctx, update)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(partner), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, req transport.ListPartnersRequest) (transport.ListPartnersResponse, error) {
	result, err := s.repo.List(ctx, repository.ListParams{
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return transport.ListPartnersResponse{}, err
	}

	items := make([]transport.PartnerResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, mapPartner(p))
	}
	return transport.ListPartnersResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// OwnPartnerID resolves the partner a partner user acts for.
func (s *Service) OwnPartnerID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	partner, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return partner.ID, nil
}

// Assets lists a partner's creative assets with the collection checklist.
func (s *Service) Assets(ctx context.Context, partnerID uuid.UUID) (transport.AssetsResponse, error) {
	if _, err := s.repo.GetByID(ctx, partnerID); err != nil {
		return transport.AssetsResponse{}, err
	}

	assets, err := s.repo.ListAssets(ctx, partnerID)
	if err != nil {
		return transport.AssetsResponse{}, err
	}

	states := make([]domain.AssetState, 0, len(assets))
	resp := transport.AssetsResponse{Assets: make([]transport.AssetResponse, 0, len(assets))}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, mapAsset(a))
		state := domain.AssetState{Channel: a.Channel, IsComplete: a.IsComplete}
		if a.Feedback != nil {
			state.Feedback = a.Feedback.Status
		}
		states = append(states, state)
	}

	cl := domain.BuildChecklist(states)
	resp.Checklist = transport.ChecklistResponse{
		Complete: cl.Complete,
		Total:    cl.Total,
		Approved: cl.Approved,
		Missing:  cl.Missing,
	}
	return resp, nil
}

// UpsertAsset replaces the files of the partner's asset for a channel.
func (s *Service) UpsertAsset(ctx context.Context, partnerID uuid.UUID, channel string, req transport.UpsertAssetRequest) (transport.AssetResponse, error) {
	if !domain.IsChannel(channel) {
		return transport.AssetResponse{}, apperr.Validation("invalid asset channel")
	}

	urls := make([]string, 0, len(req.FileURLs))
	for _, u := range req.FileURLs {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if req.IsComplete && len(urls) == 0 {
		return transport.AssetResponse{}, apperr.Validation("a complete asset needs at least one file")
	}

	var previous []string
	if existing, err := s.repo.GetAssetByChannel(ctx, partnerID, channel); err == nil {
		previous = existing.FileURLs
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return transport.AssetResponse{}, err
	}

	asset, err := s.repo.UpsertAsset(ctx, repository.AssetUpsert{
		PartnerID:  partnerID,
		Channel:    channel,
		FileURLs:   urls,
		IsComplete: req.IsComplete,
		At:         s.now(),
	})
	if err != nil {
		return transport.AssetResponse{}, err
	}

	s.deleteRemovedFiles(ctx, partnerID, channel, previous, urls)
	return mapAsset(asset), nil
}

// deleteRemovedFiles drops stored objects that are no longer referenced by
// the asset. Only keys inside the partner's channel folder are touched.
// Failures are logged and do not fail the upsert.
func (s *Service) deleteRemovedFiles(ctx context.Context, partnerID uuid.UUID, channel string, previous, current []string) {
	if s.storage == nil {
		return
	}
	folder := assetFolder(partnerID, channel) + "/"
	for _, key := range previous {
		if slices.Contains(current, key) || !strings.HasPrefix(key, folder) || strings.Contains(key, "..") {
			continue
		}
		if err := s.storage.DeleteObject(ctx, s.assetBucket, key); err != nil {
			s.log.Warn("failed to delete replaced asset file",
				"partnerId", partnerID, "channel", channel, "bucket", s.assetBucket, "key", key, "error", err)
		}
	}
}

// PresignUpload returns a presigned PUT URL under the partner's channel folder.
func (s *Service) PresignUpload(ctx context.Context, partnerID uuid.UUID, channel string, req transport.PresignUploadRequest) (transport.PresignUploadResponse, error) {
	if s.storage == nil {
		return transport.PresignUploadResponse{}, apperr.Unavailable("file storage is not configured", nil)
	}
	if !domain.IsChannel(channel) {
		return transport.PresignUploadResponse{}, apperr.Validation("invalid asset channel")
	}
	if _, err := s.repo.GetByID(ctx, partnerID); err != nil {
		return transport.PresignUploadResponse{}, err
	}

	presigned, err := s.storage.GenerateUploadURL(ctx, s.assetBucket, assetFolder(partnerID, channel),
		req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignUploadResponse{}, err
	}

	return transport.PresignUploadResponse{
		UploadURL: presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt.Unix(),
	}, nil
}

// DownloadURL presigns a GET for a file key inside the partner's channel folder.
func (s *Service) DownloadURL(ctx context.Context, partnerID uuid.UUID, channel, fileKey string) (transport.DownloadResponse, error) {
	if s.storage == nil {
		return transport.DownloadResponse{}, apperr.Unavailable("file storage is not configured", nil)
	}
	if !domain.IsChannel(channel) {
		return transport.DownloadResponse{}, apperr.Validation("invalid asset channel")
	}
	if !strings.HasPrefix(fileKey, assetFolder(partnerID, channel)+"/") || strings.Contains(fileKey, "..") {
		return transport.DownloadResponse{}, apperr.Forbidden("file does not belong to this partner")
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.assetBucket, fileKey)
	if err != nil {
		return transport.DownloadResponse{}, err
	}
	return transport.DownloadResponse{
		DownloadURL: presigned.URL,
		ExpiresAt:   presigned.ExpiresAt.Unix(),
	}, nil
}

// SetFeedback records an admin review of an asset.
func (s *Service) SetFeedback(ctx context.Context, actorID, assetID uuid.UUID, req transport.SetFeedbackRequest) (transport.AssetResponse, error) {
	if !domain.IsFeedbackStatus(req.Status) {
		return transport.AssetResponse{}, apperr.Validation("invalid feedback status")
	}

	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return transport.AssetResponse{}, err
	}

	fb, err := s.repo.UpsertFeedback(ctx, repository.AssetFeedback{
		AssetID:    assetID,
		Status:     req.Status,
		Notes:      sanitize.TextPtr(req.Notes),
		ReviewedBy: &actorID,
		UpdatedAt:  s.now(),
	})
	if err != nil {
		return transport.AssetResponse{}, err
	}
	asset.Feedback = &fb

	s.eventBus.Publish(ctx, events.AssetFeedbackUpdated{
		BaseEvent:  events.NewBaseEvent(),
		AssetID:    assetID,
		PartnerID:  asset.PartnerID,
		Status:     fb.Status,
		ReviewedBy: actorID,
	})

	return mapAsset(asset), nil
}

func assetFolder(partnerID uuid.UUID, channel string) string {
	return "partners/" + partnerID.String() + "/" + channel
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizePhone(raw string) *string {
	normalized := phone.NormalizeE164(raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"salesops/internal/caching"
	"salesops/internal/common"
	"salesops/internal/config"
	"salesops/internal/jobs"
	"salesops/internal/models"
	"salesops/internal/repositories"
	"salesops/internal/services"
)

const (
	analysisCacheTTL    = time.Hour
	recordingLinkExpiry = 15 * time.Minute
	uploadFileField     = "file"
)

type CallHandlers struct {
	cfg        *config.Config
	calls      repositories.CallRepository
	analyses   repositories.AnalysisRepository
	storage    services.RecordingStorage
	dispatcher *jobs.Dispatcher
	cache      caching.CacheService
	log        zerolog.Logger
}

func NewCallHandlers(
	cfg *config.Config,
	calls repositories.CallRepository,
	analyses repositories.AnalysisRepository,
	storage services.RecordingStorage,
	dispatcher *jobs.Dispatcher,
	cache caching.CacheService,
	log zerolog.Logger,
) *CallHandlers {
	return &CallHandlers{
		cfg:        cfg,
		calls:      calls,
		analyses:   analyses,
		storage:    storage,
		dispatcher: dispatcher,
		cache:      cache,
		log:        log,
	}
}

// Upload accepts a call recording, stores it, creates the call record and
// runs the pipeline synchronously. The response carries the call in its final
// state, so a client sees analyzed (or a 500 for a failed pipeline) directly.
func (h *CallHandlers) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	fileHeader, err := c.FormFile(uploadFileField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}

	// Size and media type gates run before any row or object is created, so a
	// rejected upload leaves no trace.
	if fileHeader.Size > h.cfg.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !h.cfg.MediaTypeAllowed(contentType) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported media type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	callID := uuid.New()
	storageKey := fmt.Sprintf("%s/calls/%s%s", user.OrganizationID, callID, filepath.Ext(fileHeader.Filename))

	if err := h.storage.Upload(ctx, storageKey, src, fileHeader.Size, contentType); err != nil {
		h.log.Error().Err(err).Str("storage_key", storageKey).Msg("recording upload failed")
		return common.SendServerError(c, "Failed to store recording")
	}

	call := &models.Call{
		ID:             callID,
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		FileName:       fileHeader.Filename,
		StorageKey:     storageKey,
		Status:         models.CallStatusUploaded,
	}
	if err := h.calls.Create(ctx, call); err != nil {
		h.log.Error().Err(err).Str("call_id", callID.String()).Msg("call insert failed")
		// The object is orphaned without a row pointing at it.
		if removeErr := h.storage.Remove(ctx, storageKey); removeErr != nil {
			h.log.Warn().Err(removeErr).Str("storage_key", storageKey).Msg("orphaned recording cleanup failed")
		}
		return common.SendServerError(c, "Failed to create call")
	}

	if err := h.dispatcher.Run(ctx, callID); err != nil {
		h.log.Error().Err(err).Str("call_id", callID.String()).Msg("pipeline run failed")
		return common.SendServerError(c, "Call processing failed")
	}

	processed, err := h.calls.GetByID(ctx, user.OrganizationID, callID)
	if err != nil {
		return toHTTPError(err)
	}
	if processed.Status == models.CallStatusFailed {
		return common.SendServerError(c, "Call processing failed")
	}

	return c.JSON(http.StatusOK, processed)
}

// List returns the organization's calls, newest first.
func (h *CallHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	calls, err := h.calls.List(ctx, user.OrganizationID, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"calls":  calls,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns one call. A call belonging to another organization yields the
// same 404 as a missing one.
func (h *CallHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	callID, err := common.ValidateUUID(c.Param("id"), "call id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	call, err := h.calls.GetByID(ctx, user.OrganizationID, callID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, call)
}

// GetAnalysis returns the analysis payload for an analyzed call, read through
// the cache.
func (h *CallHandlers) GetAnalysis(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	callID, err := common.ValidateUUID(c.Param("id"), "call id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if payload, err := h.cache.GetAnalysis(ctx, user.OrganizationID, callID); err == nil && payload != nil {
		return c.JSONBlob(http.StatusOK, payload)
	}

	record, err := h.analyses.GetByCallID(ctx, user.OrganizationID, callID)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.cache.SetAnalysis(ctx, user.OrganizationID, callID, record.Payload, analysisCacheTTL); err != nil {
		h.log.Warn().Err(err).Str("call_id", callID.String()).Msg("analysis cache write failed")
	}
	return c.JSONBlob(http.StatusOK, record.Payload)
}

// GetRecording returns a short-lived presigned download link for the raw
// recording. The object store is never exposed directly.
func (h *CallHandlers) GetRecording(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	callID, err := common.ValidateUUID(c.Param("id"), "call id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	call, err := h.calls.GetByID(ctx, user.OrganizationID, callID)
	if err != nil {
		return toHTTPError(err)
	}

	url, err := h.storage.PresignedURL(ctx, call.StorageKey, recordingLinkExpiry)
	if err != nil {
		h.log.Error().Err(err).Str("call_id", callID.String()).Msg("presign failed")
		return common.SendServerError(c, "Failed to generate recording link")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"url":        url,
		"expires_in": int(recordingLinkExpiry.Seconds()),
	})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kasuboski/medialink/pkg/ledger"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/manager"
	"github.com/kasuboski/medialink/pkg/pagination"
	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"go.uber.org/zap"
)

// FileResponse is a ledger row as served over the api
type FileResponse struct {
	ID              int32    `json:"id"`
	SourceFile      string   `json:"sourceFile"`
	DestFile        *string  `json:"destFile"`
	FileSize        int64    `json:"fileSize"`
	MediaType       string   `json:"mediaType"`
	Status          string   `json:"status"`
	Reason          *string  `json:"reason,omitempty"`
	TmdbID          *int32   `json:"tmdbId,omitempty"`
	ImdbID          *string  `json:"imdbId,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Year            *int32   `json:"year,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	SeasonNumber    *int32   `json:"seasonNumber,omitempty"`
	EpisodeNumber   *int32   `json:"episodeNumber,omitempty"`
	EpisodeNumber2  *int32   `json:"episodeNumber2,omitempty"`
	VersionUpdated  int32    `json:"versionUpdated"`
	UpdateToVersion int32    `json:"updateToVersion"`
}

type ListFilesResponse struct {
	Files []FileResponse  `json:"files"`
	Meta  pagination.Meta `json:"meta"`
}

// ResyncRequest optionally rebinds a file before it is relinked
type ResyncRequest struct {
	TmdbID  *int32 `json:"tmdbId,omitempty"`
	Season  *int32 `json:"season,omitempty"`
	Episode *int32 `json:"episode,omitempty"`
}

func newFileResponse(f *model.ScannedFile) FileResponse {
	return FileResponse{
		ID:              f.ID,
		SourceFile:      f.SourceFile,
		DestFile:        f.DestFile,
		FileSize:        f.FileSize,
		MediaType:       f.MediaType,
		Status:          f.Status,
		Reason:          f.Reason,
		TmdbID:          f.TmdbID,
		ImdbID:          f.ImdbID,
		Title:           f.Title,
		Year:            f.Year,
		Genres:          ledger.DecodeGenres(f.Genres),
		SeasonNumber:    f.SeasonNumber,
		EpisodeNumber:   f.EpisodeNumber,
		EpisodeNumber2:  f.EpisodeNumber2,
		VersionUpdated:  f.VersionUpdated,
		UpdateToVersion: f.UpdateToVersion,
	}
}

// ListFiles lists ledger rows filtered by status, media type and tmdb id
func (s Server) ListFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		params, err := ParsePaginationParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		filter, err := parseFileFilter(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		files, err := s.storage.ListScannedFiles(r.Context(), filter)
		if err != nil {
			log.Errorw("failed to list files", zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, errors.New("failed to list files"))
			return
		}

		page, meta := pagination.Slice(files, params)
		resp := ListFilesResponse{
			Files: make([]FileResponse, 0, len(page)),
			Meta:  meta,
		}
		for _, f := range page {
			resp.Files = append(resp.Files, newFileResponse(f))
		}

		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: resp}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

func parseFileFilter(r *http.Request) (storage.ScannedFileFilter, error) {
	qp := r.URL.Query()
	filter := storage.ScannedFileFilter{
		Status:    storage.FileStatus(qp.Get("status")),
		MediaType: storage.MediaType(qp.Get("mediaType")),
	}

	switch filter.Status {
	case "", storage.FileStatusProcessing, storage.FileStatusSuccess, storage.FileStatusFailed, storage.FileStatusDuplicate:
	default:
		return filter, fmt.Errorf("invalid status %q", filter.Status)
	}

	if raw := qp.Get("tmdbId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filter, fmt.Errorf("invalid tmdbId parameter: %w", err)
		}
		tmdbID := int32(id)
		filter.TmdbID = &tmdbID
	}

	return filter, nil
}

// GetFile returns a single ledger row
func (s Server) GetFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		id, err := pathInt32(r, "id")
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		file, err := s.storage.GetScannedFile(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeErrorResponse(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			log.Errorw("failed to get file", zap.Int32("id", id), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, errors.New("failed to get file"))
			return
		}

		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: newFileResponse(file)}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

// ResyncFile rebinds a file if the body asks for it and relinks it immediately
func (s Server) ResyncFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		id, err := pathInt32(r, "id")
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}

		var request ResyncRequest
		b, err := io.ReadAll(r.Body)
		if err != nil {
			log.Debugw("invalid request body", zap.Error(err))
			writeErrorResponse(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		if len(b) > 0 {
			if err := json.Unmarshal(b, &request); err != nil {
				log.Debugw("invalid request body", zap.ByteString("body", b))
				writeErrorResponse(w, http.StatusBadRequest, errors.New("invalid request body"))
				return
			}
		}

		file, err := s.manager.ResyncFile(r.Context(), id, storage.ResyncRequest{
			TmdbID:        request.TmdbID,
			SeasonNumber:  request.Season,
			EpisodeNumber: request.Episode,
		})
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeErrorResponse(w, http.StatusNotFound, err)
			return
		case errors.Is(err, manager.ErrNoMapping):
			writeErrorResponse(w, http.StatusConflict, err)
			return
		case err != nil:
			log.Errorw("failed to resync file", zap.Int32("id", id), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, errors.New("failed to resync file"))
			return
		}

		if err := writeResponse(w, http.StatusOK, GenericResponse{Response: newFileResponse(file)}); err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

func pathInt32(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return int32(v), nil
}

// internal/api/handlers/songs/songs_handlers.go
package songs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/lib/response"
	"musiccatalog/internal/models"
	"musiccatalog/internal/service"
	"musiccatalog/internal/storage"
)

type SongHandlers struct {
	songService     *service.SongService
	metadataService *service.MetadataService
}

func NewSongHandlers(songService *service.SongService, metadataService *service.MetadataService) *SongHandlers {
	return &SongHandlers{
		songService:     songService,
		metadataService: metadataService,
	}
}

// @Summary List songs
// @Description Get one page of the catalog wrapped in a count/next/previous envelope.
// @Tags songs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Songs per page" default(10)
// @Success 200 {object} models.Page
// @Router /songs [get]
func (h *SongHandlers) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("GetSongsHandler called")

	queryParams := r.URL.Query()
	page, _ := strconv.Atoi(queryParams.Get("page"))
	pageSize, _ := strconv.Atoi(queryParams.Get("page_size"))

	pagination := models.NewPagination(page, pageSize)

	songPage, err := h.songService.GetSongs(r.Context(), pagination)
	if err != nil {
		utils.Logger.Error("GetSongsHandler - songService.GetSongs failed", zap.Error(err), zap.Any("pagination", pagination))
		response.Error(w, http.StatusInternalServerError, "Failed to get songs")
		return
	}

	response.JSON(w, http.StatusOK, songPage)
	utils.Logger.Debug("GetSongsHandler - songs retrieved", zap.Int("count", songPage.Count))
}

// @Summary Add a new song
// @Description Add a song; text fields are lowercased and a title+album+artist duplicate is rejected.
// @Tags songs
// @Accept json
// @Produce json
// @Param body body models.SongPayload true "Song to add"
// @Success 201 {object} models.Song
// @Failure 400 {string} string "Bad Request"
// @Failure 409 {string} string "Conflict"
// @Failure 500 {string} string "Internal Server Error"
// @Router /songs [post]
func (h *SongHandlers) AddSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("AddSongHandler called")
	var payload models.SongPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Logger.Warn("AddSongHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	addedSong, err := h.songService.AddSong(r.Context(), &payload)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, service.ErrDuplicateSong) {
			response.Error(w, http.StatusConflict, "Song already exists")
			return
		}
		utils.Logger.Error("AddSongHandler - songService.AddSong failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to add song")
		return
	}

	response.JSON(w, http.StatusCreated, addedSong)
	utils.Logger.Info("AddSongHandler - song added successfully", zap.String("song_id", addedSong.ID.String()), zap.String("title", addedSong.Title))
}

func songIDFromRequest(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	return uuid.Parse(vars["id"])
}

// @Summary Get song by ID
// @Tags songs
// @Produce json
// @Param id path string true "Song ID"
// @Success 200 {object} models.Song
// @Failure 404 {string} string "Not Found"
// @Router /songs/{id} [get]
func (h *SongHandlers) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("GetSongHandler called")
	id, err := songIDFromRequest(r)
	if err != nil {
		utils.Logger.Warn("GetSongHandler - invalid song ID", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	song, err := h.songService.GetSong(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, "Song not found")
			return
		}
		utils.Logger.Error("GetSongHandler - songService.GetSong failed", zap.Error(err), zap.String("id", id.String()))
		response.Error(w, http.StatusInternalServerError, "Failed to get song")
		return
	}

	response.JSON(w, http.StatusOK, song)
	utils.Logger.Debug("GetSongHandler - song retrieved", zap.String("song_id", song.ID.String()))
}

// @Summary Update song by ID
// @Description Re-validate, re-normalize and store the song, then rebuild metadata.
// @Tags songs
// @Accept json
// @Produce json
// @Param id path string true "Song ID"
// @Param body body models.SongPayload true "Song fields"
// @Success 200 {object} models.Song
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Not Found"
// @Failure 500 {string} string "Internal Server Error"
// @Router /songs/{id} [put]
func (h *SongHandlers) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("UpdateSongHandler called")
	id, err := songIDFromRequest(r)
	if err != nil {
		utils.Logger.Warn("UpdateSongHandler - invalid song ID", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	var payload models.SongPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Logger.Warn("UpdateSongHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updatedSong, err := h.songService.UpdateSong(r.Context(), id, &payload)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, "Song not found")
			return
		}
		utils.Logger.Error("UpdateSongHandler - songService.UpdateSong failed", zap.Error(err), zap.String("id", id.String()))
		response.Error(w, http.StatusInternalServerError, "Failed to update song")
		return
	}

	response.JSON(w, http.StatusOK, updatedSong)
	utils.Logger.Info("UpdateSongHandler - song updated successfully", zap.String("song_id", updatedSong.ID.String()))
}

// @Summary Delete song by ID
// @Tags songs
// @Produce json
// @Param id path string true "Song ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not Found"
// @Failure 500 {string} string "Internal Server Error"
// @Router /songs/{id} [delete]
func (h *SongHandlers) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("DeleteSongHandler called")
	id, err := songIDFromRequest(r)
	if err != nil {
		utils.Logger.Warn("DeleteSongHandler - invalid song ID", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid song ID")
		return
	}

	err = h.songService.DeleteSong(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			response.Error(w, http.StatusNotFound, "Song not found")
			return
		}
		utils.Logger.Error("DeleteSongHandler - songService.DeleteSong failed", zap.Error(err), zap.String("id", id.String()))
		response.Error(w, http.StatusInternalServerError, "Failed to delete song")
		return
	}

	w.WriteHeader(http.StatusNoContent)
	utils.Logger.Info("DeleteSongHandler - song deleted successfully", zap.String("song_id", id.String()))
}

// @Summary Filter songs
// @Description OR-combined filtering: exact album/year match, substring match on artists, genre, language and tags.
// @Tags songs
// @Accept json
// @Produce json
// @Param body body models.FilterRequest true "Filter values"
// @Success 200 {array} models.Song
// @Failure 400 {string} string "Bad Request"
// @Router /filter [post]
func (h *SongHandlers) FilterSongsHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("FilterSongsHandler called")
	var req models.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Logger.Warn("FilterSongsHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	songs, err := h.songService.FilterSongs(r.Context(), &req.Filter)
	if err != nil {
		utils.Logger.Error("FilterSongsHandler - songService.FilterSongs failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to filter songs")
		return
	}
	if songs == nil {
		songs = []models.Song{}
	}

	response.JSON(w, http.StatusOK, songs)
	utils.Logger.Debug("FilterSongsHandler - songs filtered", zap.Int("count", len(songs)))
}

// @Summary Bulk create songs
// @Description Create many songs at once; invalid and duplicate items are reported per index, survivors are stored in one batch.
// @Tags songs
// @Accept json
// @Produce json
// @Param body body []models.SongPayload true "Song payloads"
// @Success 200 {object} models.BulkCreateResult
// @Success 201 {object} models.BulkCreateResult
// @Failure 400 {string} string "Bad Request"
// @Router /bulk_create [post]
func (h *SongHandlers) BulkCreateHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("BulkCreateHandler called")
	var payloads []models.SongPayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		utils.Logger.Warn("BulkCreateHandler - invalid request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.songService.BulkCreate(r.Context(), payloads)
	if err != nil {
		utils.Logger.Error("BulkCreateHandler - songService.BulkCreate failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to bulk create songs")
		return
	}

	status := http.StatusCreated
	if len(result.Created) == 0 {
		status = http.StatusOK
	}
	response.JSON(w, status, result)
	utils.Logger.Info("BulkCreateHandler - bulk create finished",
		zap.Int("created", len(result.Created)), zap.Int("skipped", len(result.Skipped)))
}

// @Summary Search songs by title
// @Tags songs
// @Produce json
// @Param q query string true "Title substring"
// @Success 200 {array} models.Song
// @Failure 400 {string} string "Bad Request"
// @Router /search [get]
func (h *SongHandlers) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("SearchSongsHandler called")
	query := r.URL.Query().Get("q")
	if query == "" {
		utils.Logger.Warn("SearchSongsHandler - missing q parameter")
		response.Error(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	songs, err := h.songService.SearchSongs(r.Context(), query)
	if err != nil {
		utils.Logger.Error("SearchSongsHandler - songService.SearchSongs failed", zap.Error(err), zap.String("q", query))
		response.Error(w, http.StatusInternalServerError, "Failed to search songs")
		return
	}
	if songs == nil {
		songs = []models.Song{}
	}

	response.JSON(w, http.StatusOK, songs)
	utils.Logger.Debug("SearchSongsHandler - songs found", zap.Int("count", len(songs)))
}

// @Summary Get catalog metadata
// @Description The derived summary of distinct albums, artists, genres, languages, tags and years.
// @Tags metadata
// @Produce json
// @Success 200 {object} models.Metadata
// @Failure 404 {string} string "Not Found"
// @Router /metadata [get]
func (h *SongHandlers) GetMetadataHandler(w http.ResponseWriter, r *http.Request) {
	utils.Logger.Info("GetMetadataHandler called")

	meta, err := h.metadataService.Get(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoMetadata) {
			response.Error(w, http.StatusNotFound, "No metadata found")
			return
		}
		utils.Logger.Error("GetMetadataHandler - metadataService.Get failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to get metadata")
		return
	}

	response.JSON(w, http.StatusOK, meta)
}

func (h *SongHandlers) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

package handlers

import (
	"errors"
	"strconv"

	"itired-backend/domain"
	"itired-backend/internal/api/presenters"
	"itired-backend/pkg/music"
	"itired-backend/pkg/recommend"

	"github.com/gofiber/fiber/v2"
)

type (
	MusicHandler interface {
		GetRecommendations(c *fiber.Ctx) error
		Search(c *fiber.Ctx) error
		GetPlaylists(c *fiber.Ctx) error
		GetPlaylistTracks(c *fiber.Ctx) error
		GetLikedTracks(c *fiber.Ctx) error
		PlayTrack(c *fiber.Ctx) error
		GetListeningStats(c *fiber.Ctx) error
	}

	musicHandler struct {
		musicService     music.MusicService
		recommendService recommend.RecommendService
	}
)

func NewMusicHandler(musicService music.MusicService, recommendService recommend.RecommendService) MusicHandler {
	return &musicHandler{
		musicService:     musicService,
		recommendService: recommendService,
	}
}

func providerErrorStatus(err error) int {
	if errors.Is(err, domain.ErrProviderTokenMissing) || errors.Is(err, domain.ErrUnknownMusicService) {
		return fiber.StatusPreconditionFailed
	}
	if errors.Is(err, domain.ErrTrackNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadGateway
}

func (h *musicHandler) GetRecommendations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	tracks, err := h.recommendService.GetRecommendations(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedGetRecommendations, err)
	}

	return presenters.SuccessResponse(c, tracks, fiber.StatusOK, domain.MessageSuccessGetRecommendations)
}

func (h *musicHandler) Search(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	query := c.Query("q")
	if query == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSearch, errors.New("query parameter q is required"))
	}

	tracks, err := h.musicService.Search(c.Context(), userID, query)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedSearch, err)
	}

	return presenters.SuccessResponse(c, tracks, fiber.StatusOK, domain.MessageSuccessSearch)
}

func (h *musicHandler) GetPlaylists(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	playlists, err := h.musicService.GetPlaylists(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedGetPlaylists, err)
	}

	return presenters.SuccessResponse(c, playlists, fiber.StatusOK, domain.MessageSuccessGetPlaylists)
}

func (h *musicHandler) GetPlaylistTracks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	playlistID := c.Params("id")

	tracks, err := h.musicService.GetPlaylistTracks(c.Context(), userID, playlistID)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedGetPlaylistTracks, err)
	}

	return presenters.SuccessResponse(c, tracks, fiber.StatusOK, domain.MessageSuccessGetPlaylistTracks)
}

func (h *musicHandler) GetLikedTracks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	tracks, err := h.musicService.GetLikedTracks(c.Context(), userID, limit)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedGetLikedTracks, err)
	}

	return presenters.SuccessResponse(c, tracks, fiber.StatusOK, domain.MessageSuccessGetLikedTracks)
}

func (h *musicHandler) PlayTrack(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	trackID := c.Params("id")

	res, err := h.musicService.PlayTrack(c.Context(), userID, trackID)
	if err != nil {
		return presenters.ErrorResponse(c, providerErrorStatus(err), domain.MessageFailedPlayTrack, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPlayTrack)
}

func (h *musicHandler) GetListeningStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	stats, err := h.musicService.GetListeningStats(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetStats)
}

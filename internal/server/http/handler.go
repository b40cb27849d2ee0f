package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Handler serves the JSON API.
type Handler struct {
	users  *services.UserService
	lists  *services.ListService
	draws  *services.DrawService
	logger logging.Logger
}

func NewHandler(us *services.UserService, ls *services.ListService, ds *services.DrawService, l logging.Logger) *Handler {
	return &Handler{users: us, lists: ls, draws: ds, logger: l.With("module", "http_handler")}
}

// RegisterRoutes registers all API routes under /api.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		api.POST("/users/login", h.Login)
		api.GET("/users/:token/lists", h.UserLists)

		api.GET("/lists", h.UserLists)
		api.POST("/lists", h.CreateList)
		api.GET("/lists/:id", h.GetList)
		api.DELETE("/lists/:id", h.DeleteList)

		api.GET("/lists/:id/participants", h.GetParticipants)
		api.POST("/lists/:id/participants", h.AddParticipant)
		api.DELETE("/lists/:id/participants/:ref", h.RemoveParticipant)

		api.POST("/lists/:id/draw", h.Draw)
		api.POST("/lists/:id/draws/:drawID/resend", h.Resend)
		api.GET("/lists/:id/draws/:drawID/archive", h.Archive)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: codeInvalidRequestBody})
		return false
	}
	return true
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		ID:          res.User.ID,
		Email:       res.User.Email,
		Token:       res.Token,
		CreatedAt:   res.User.CreatedAt,
		LastLoginAt: res.User.LastLoginAt,
		ListIDs:     res.User.ListIDs,
	})
}

// UserLists returns the caller's lists. The token comes from the
// X-User-Token header, or from the path on /users/:token/lists.
func (h *Handler) UserLists(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		token = c.GetHeader(common.UserTokenHTTPHeader)
	}
	ls, err := h.lists.ListsForUser(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]listResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListResponse(l))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateList(c *gin.Context) {
	var req createListRequest
	if !h.bind(c, &req) {
		return
	}

	l, err := h.lists.CreateList(c.Request.Context(), req.Name, req.UserToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createListResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt})
}

func (h *Handler) GetList(c *gin.Context) {
	l, err := h.lists.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(l))
}

func (h *Handler) DeleteList(c *gin.Context) {
	token := c.GetHeader(common.UserTokenHTTPHeader)
	if err := h.lists.DeleteList(c.Request.Context(), c.Param("id"), token); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetParticipants(c *gin.Context) {
	l, err := h.lists.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, participantsResponse{Participants: toListResponse(l).Participants, Version: l.Version})
}

func (h *Handler) AddParticipant(c *gin.Context) {
	var req participantRequest
	if !h.bind(c, &req) {
		return
	}

	ps, err := h.lists.AddParticipant(c.Request.Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participantsResponse{Participants: ps})
}

// RemoveParticipant accepts either a position or a participant id as :ref.
// With a position, ?version= guards against a stale view of the list.
func (h *Handler) RemoveParticipant(c *gin.Context) {
	ctx := c.Request.Context()
	listID, ref := c.Param("id"), c.Param("ref")

	var expected int64
	if v := c.Query("version"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid version", Code: codeValidation})
			return
		}
		expected = n
	}

	var ps []models.Participant
	index, isIndex, err := parseIndex(ref)
	switch {
	case err != nil:
	case isIndex:
		ps, err = h.lists.RemoveParticipant(ctx, listID, index, expected)
	default:
		ps, err = h.lists.RemoveParticipantByID(ctx, listID, ref)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, participantsResponse{Participants: ps})
}

// parseIndex tells positional refs from participant ids. Any all-digit ref
// is an index; one that does not fit an int is out of range.
func parseIndex(ref string) (index int, isIndex bool, err error) {
	digits := strings.TrimPrefix(ref, "-")
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false, nil
	}
	index, err = strconv.Atoi(ref)
	if err != nil {
		return 0, true, fmt.Errorf("participant %s: %w", ref, common.ErrIndexOutOfRange)
	}
	return index, true, nil
}

func (h *Handler) Draw(c *gin.Context) {
	res, err := h.draws.Draw(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDrawResponse(res))
}

func (h *Handler) Resend(c *gin.Context) {
	res, err := h.draws.ResendFailed(c.Request.Context(), c.Param("id"), c.Param("drawID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDrawResponse(res))
}

func (h *Handler) Archive(c *gin.Context) {
	token := c.GetHeader(common.UserTokenHTTPHeader)
	url, err := h.draws.ArchiveURL(c.Request.Context(), c.Param("id"), c.Param("drawID"), token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, archiveResponse{URL: url})
}

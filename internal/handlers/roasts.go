package handlers

import (
	"errors"
	"net/http"

	"roastlog/internal/roastlog"
	"roastlog/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusDeleted = "deleted"

	errInternal     = "internal error"
	errUnauthorized = "unauthorized"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps domain errors to status codes; anything unknown is
// logged under logKey and hidden behind a 500.
func (h *Handler) respondServiceError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	var ve *roastlog.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": []string{ve.Field}})
	case errors.Is(err, service.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoastNotFound), errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}

// userOrAbort returns the authenticated user id, writing 401 if absent.
func userOrAbort(c *gin.Context) (int, bool) {
	id, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
	}
	return id, ok
}

// RoastRequest is the body of POST /roasts.
type RoastRequest struct {
	BeanProfile   string   `json:"bean_profile" binding:"max=200" example:"Ethiopia Guji"`
	RoastLevel    string   `json:"roast_level" binding:"max=100" example:"city+"`
	Machine       string   `json:"machine" binding:"max=100" example:"Aillio Bullet"`
	WeightBeforeG *float64 `json:"weight_before_g" binding:"omitempty,gte=0" example:"250"`
	WeightAfterG  *float64 `json:"weight_after_g" binding:"omitempty,gte=0" example:"212.5"`
}

// RoastPatchRequest is the body of PATCH /roasts/:id; absent fields are kept.
type RoastPatchRequest struct {
	BeanProfile   *string  `json:"bean_profile" binding:"omitempty,max=200"`
	RoastLevel    *string  `json:"roast_level" binding:"omitempty,max=100"`
	Machine       *string  `json:"machine" binding:"omitempty,max=100"`
	WeightBeforeG *float64 `json:"weight_before_g" binding:"omitempty,gte=0"`
	WeightAfterG  *float64 `json:"weight_after_g" binding:"omitempty,gte=0"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Create roast session
// @Tags         roasts
// @Accept       json
// @Produce      json
// @Param        body  body      RoastRequest  true  "Session"
// @Success      201   {object}  models.RoastSession
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/roasts [post]
// @Security     BearerAuth
func (h *Handler) createRoast(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	var req RoastRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	s, err := h.services.Sessions.Create(c.Request.Context(), userID, service.SessionInput{
		BeanProfile:   req.BeanProfile,
		RoastLevel:    req.RoastLevel,
		Machine:       req.Machine,
		WeightBeforeG: req.WeightBeforeG,
		WeightAfterG:  req.WeightAfterG,
	})
	if err != nil {
		h.respondServiceError(c, err, "roast_create_failed", "user_id", userID)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// @Summary      List own roast sessions
// @Tags         roasts
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, roasts"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/roasts [get]
// @Security     BearerAuth
func (h *Handler) listRoasts(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	list, err := h.services.Sessions.List(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err, "roast_list_failed", "user_id", userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(list),
		"roasts": list,
	})
}

// @Summary      Get roast session
// @Tags         roasts
// @Produce      json
// @Param        id   path      string  true  "Roast ID"
// @Success      200  {object}  models.RoastSession
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/roasts/{id} [get]
// @Security     BearerAuth
func (h *Handler) getRoast(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	s, err := h.services.Sessions.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "roast_get_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Update roast session
// @Tags         roasts
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Roast ID"
// @Param        body  body      RoastPatchRequest  true  "Fields to change"
// @Success      200   {object}  models.RoastSession
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/roasts/{id} [patch]
// @Security     BearerAuth
func (h *Handler) updateRoast(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	var req RoastPatchRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	s, err := h.services.Sessions.Update(c.Request.Context(), userID, c.Param("id"), service.SessionPatch{
		BeanProfile:   req.BeanProfile,
		RoastLevel:    req.RoastLevel,
		Machine:       req.Machine,
		WeightBeforeG: req.WeightBeforeG,
		WeightAfterG:  req.WeightAfterG,
	})
	if err != nil {
		h.respondServiceError(c, err, "roast_update_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Delete roast session and its events
// @Tags         roasts
// @Produce      json
// @Param        id   path      string  true  "Roast ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/roasts/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteRoast(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	if err := h.services.Sessions.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondServiceError(c, err, "roast_delete_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

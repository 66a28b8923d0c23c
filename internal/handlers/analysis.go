package handlers

import (
	"net/http"
	"strconv"

	"roastlog/internal/roastlog"
	"roastlog/internal/service"

	"github.com/gin-gonic/gin"
)

// parseCurveQuery reads ?mode=live|historical and ?ror=true.
func parseCurveQuery(c *gin.Context) (service.CurveQuery, error) {
	mode, err := roastlog.ParseMode(c.Query("mode"))
	if err != nil {
		return service.CurveQuery{}, err
	}
	q := service.CurveQuery{Mode: mode}
	if s := c.Query("ror"); s != "" {
		q.WithROR, err = strconv.ParseBool(s)
		if err != nil {
			return service.CurveQuery{}, err
		}
	}
	return q, nil
}

// @Summary      Roast summary
// @Description  Duration, milestones, development, weight loss, phase and rate of rise. Unknown values are {"seconds":null,"display":"N/A"}.
// @Tags         analysis
// @Produce      json
// @Param        id   path      string  true  "Roast ID"
// @Success      200  {object}  roastlog.Summary
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/roasts/{id}/summary [get]
// @Security     BearerAuth
func (h *Handler) getSummary(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	s, err := h.services.Analysis.Summary(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "roast_summary_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Roast curve
// @Description  Raw temperature samples plus event markers. Live mode also marks fan/heat changes.
// @Tags         analysis
// @Produce      json
// @Param        id    path      string  true   "Roast ID"
// @Param        mode  query     string  false  "Marker mode"  Enums(historical,live)
// @Param        ror   query     bool    false  "Include rate of rise"
// @Success      200   {object}  service.CurveView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/roasts/{id}/curve [get]
// @Security     BearerAuth
func (h *Handler) getCurve(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	q, err := parseCurveQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.services.Analysis.Curve(c.Request.Context(), userID, c.Param("id"), q)
	if err != nil {
		h.respondServiceError(c, err, "roast_curve_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, v)
}

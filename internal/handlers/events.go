package handlers

import (
	"net/http"

	"roastlog/internal/roastlog"

	"github.com/gin-gonic/gin"
)

// EventRequest is a roast event as submitted by a client. Offsets may
// arrive in any order; the log sorts on read.
type EventRequest struct {
	Kind              string   `json:"kind" binding:"required,roastkind" example:"FIRST_CRACK"`
	TimeOffsetSeconds *int     `json:"time_offset_seconds" binding:"required,min=0" example:"480"`
	TemperatureF      *float64 `json:"temperature_f" example:"385.5"`
	FanLevel          *int     `json:"fan_level" binding:"omitempty,level" example:"5"`
	HeatLevel         *int     `json:"heat_level" binding:"omitempty,level" example:"6"`
	Note              *string  `json:"note" binding:"omitempty,max=500"`
}

func (r EventRequest) input() roastlog.EventInput {
	return roastlog.EventInput{
		Kind:              r.Kind,
		TimeOffsetSeconds: r.TimeOffsetSeconds,
		TemperatureF:      r.TemperatureF,
		FanLevel:          r.FanLevel,
		HeatLevel:         r.HeatLevel,
		Note:              r.Note,
	}
}

// bindEvent binds an EventRequest, counting rejected fields.
func (h *Handler) bindEvent(c *gin.Context) (EventRequest, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		messages, fields := fieldErrors(err)
		for _, f := range fields {
			h.metrics.EventRejected(f)
		}
		body := gin.H{"error": joinMessages(messages)}
		if len(fields) > 0 {
			body["fields"] = fields
		}
		c.JSON(http.StatusBadRequest, body)
		return EventRequest{}, false
	}
	return req, true
}

// @Summary      List roast events
// @Description  Ordered by time offset; ties keep creation order.
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Roast ID"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/roasts/{id}/events [get]
// @Security     BearerAuth
func (h *Handler) listEvents(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	events, err := h.services.EventLog.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "roast_events_list_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Log a roast event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Roast ID"
// @Param        body  body      EventRequest  true  "Event"
// @Success      201   {object}  models.RoastEvent
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/roasts/{id}/events [post]
// @Security     BearerAuth
func (h *Handler) appendEvent(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	req, ok := h.bindEvent(c)
	if !ok {
		return
	}
	e, err := h.services.EventLog.Append(c.Request.Context(), userID, c.Param("id"), req.input())
	if err != nil {
		h.respondServiceError(c, err, "roast_event_append_failed", "roast_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusCreated, e)
}

// @Summary      Edit a roast event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Roast ID"
// @Param        eventId  path      string        true  "Event ID"
// @Param        body     body      EventRequest  true  "Replacement event"
// @Success      200      {object}  models.RoastEvent
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/v1/roasts/{id}/events/{eventId} [put]
// @Security     BearerAuth
func (h *Handler) editEvent(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	req, ok := h.bindEvent(c)
	if !ok {
		return
	}
	e, err := h.services.EventLog.Edit(c.Request.Context(), userID, c.Param("id"), c.Param("eventId"), req.input())
	if err != nil {
		h.respondServiceError(c, err, "roast_event_edit_failed", "roast_id", c.Param("id"), "event_id", c.Param("eventId"))
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Delete a roast event
// @Tags         events
// @Produce      json
// @Param        id       path      string  true  "Roast ID"
// @Param        eventId  path      string  true  "Event ID"
// @Success      200      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/v1/roasts/{id}/events/{eventId} [delete]
// @Security     BearerAuth
func (h *Handler) deleteEvent(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	if err := h.services.EventLog.Delete(c.Request.Context(), userID, c.Param("id"), c.Param("eventId")); err != nil {
		h.respondServiceError(c, err, "roast_event_delete_failed", "roast_id", c.Param("id"), "event_id", c.Param("eventId"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

// internal/server/events.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nexoprec/internal/common/errors"
	"nexoprec/internal/form"
	"nexoprec/internal/models"
	"nexoprec/internal/store"
)

const defaultEventTitle = "Untitled Event"

// mapError lifts store and form sentinels into standardized errors.
func mapError(err error, eventID string) error {
	switch {
	case errors.Is(err, store.ErrEventNotFound):
		return apperrors.NewEventNotFoundError(eventID)
	case errors.Is(err, store.ErrEventAccessDenied):
		return apperrors.NewEventAccessDeniedError(eventID)
	case errors.Is(err, store.ErrInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	case errors.Is(err, store.ErrQueryFailed):
		return apperrors.NewDatabaseQueryFailedError(err)
	case errors.Is(err, form.ErrSchemaInvalid):
		return apperrors.NewSchemaInvalidError(err.Error())
	default:
		return err
	}
}

func badRequest(details string) *apperrors.StandardError {
	return &apperrors.StandardError{
		Code:      apperrors.ErrCodeValidationFailed,
		Message:   "Invalid request body",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

type createEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	FormSchema  json.RawMessage `json:"formSchema,omitempty"`
	TemplateID  string          `json:"templateId,omitempty"`
}

func (s *Server) listTemplates(c *gin.Context) {
	if s.templates == nil {
		c.JSON(http.StatusOK, gin.H{"templates": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": s.templates.Templates})
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, badRequest(err.Error()))
		return
	}
	if req.Title == "" {
		req.Title = defaultEventTitle
	}

	var schema form.Schema
	switch {
	case req.TemplateID != "":
		tpl := s.templates.Find(req.TemplateID)
		if tpl == nil {
			s.renderError(c, badRequest("unknown template: "+req.TemplateID))
			return
		}
		schema = tpl.Schema.Clone()
	case len(req.FormSchema) > 0:
		parsed, err := form.ParseDocument(req.FormSchema)
		if err != nil {
			s.renderError(c, mapError(err, ""))
			return
		}
		schema = parsed
	}

	event, err := s.events.Create(c.Request.Context(), userID(c), req.Title, req.Description, schema)
	if err != nil {
		s.renderError(c, mapError(err, ""))
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.events.ListByOwner(c.Request.Context(), userID(c))
	if err != nil {
		s.renderError(c, mapError(err, ""))
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) getEvent(c *gin.Context) {
	eventID := c.Param("id")
	event, err := s.events.GetOwned(c.Request.Context(), eventID, userID(c))
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}
	c.JSON(http.StatusOK, event)
}

type updateEventRequest struct {
	Title           *string             `json:"title,omitempty"`
	Description     *string             `json:"description,omitempty"`
	FormSchema      json.RawMessage     `json:"formSchema,omitempty"`
	AIKnowledge     *string             `json:"aiKnowledge,omitempty"`
	TermsConditions *string             `json:"termsConditions,omitempty"`
	Status          *models.EventStatus `json:"status,omitempty"`
	StartDate       *time.Time          `json:"startDate,omitempty"`
	EndDate         *time.Time          `json:"endDate,omitempty"`
}

func (s *Server) updateEvent(c *gin.Context) {
	eventID := c.Param("id")

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, badRequest(err.Error()))
		return
	}

	update := models.EventUpdate{
		Title:           req.Title,
		Description:     req.Description,
		AIKnowledge:     req.AIKnowledge,
		TermsConditions: req.TermsConditions,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}

	if req.Status != nil {
		switch *req.Status {
		case models.EventStatusDraft, models.EventStatusPublished, models.EventStatusClosed:
			update.Status = req.Status
		default:
			s.renderError(c, badRequest("unknown event status: "+string(*req.Status)))
			return
		}
	}

	// Raw schema documents are validated before they reach the store.
	if len(req.FormSchema) > 0 {
		schema, err := form.ParseDocument(req.FormSchema)
		if err != nil {
			s.renderError(c, mapError(err, eventID))
			return
		}
		update.FormSchema = &schema
	}

	event, err := s.events.Update(c.Request.Context(), eventID, userID(c), update)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	s.cache.Invalidate(c.Request.Context(), eventID)
	c.JSON(http.StatusOK, event)
}

func (s *Server) deleteEvent(c *gin.Context) {
	eventID := c.Param("id")

	if err := s.events.Delete(c.Request.Context(), eventID, userID(c)); err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	s.cache.Invalidate(c.Request.Context(), eventID)
	if err := s.index.DeleteByEvent(c.Request.Context(), eventID); err != nil {
		s.logger.Warn("search index cleanup failed", map[string]interface{}{
			"eventId": eventID,
			"error":   err.Error(),
		})
	}
	c.Status(http.StatusNoContent)
}

// internal/server/public.go
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nexoprec/internal/assistant"
	apperrors "nexoprec/internal/common/errors"
	"nexoprec/internal/common/metrics"
	"nexoprec/internal/form"
	"nexoprec/internal/models"
)

// publicEvent is the applicant-facing projection of an event. Organizer
// notes for the assistant stay server-side.
type publicEvent struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	FormSchema      form.Schema `json:"formSchema"`
	TermsConditions string      `json:"termsConditions,omitempty"`
	StartDate       *time.Time  `json:"startDate,omitempty"`
	EndDate         *time.Time  `json:"endDate,omitempty"`
}

// loadPublishedEvent fetches a published event through the cache.
// Unpublished events are reported as not found so drafts never leak.
func (s *Server) loadPublishedEvent(c *gin.Context, eventID string) (*models.Event, error) {
	ctx := c.Request.Context()

	if cached := s.cache.Get(ctx, eventID); cached != nil {
		return cached, nil
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, mapError(err, eventID)
	}
	if event.Status != models.EventStatusPublished {
		return nil, apperrors.NewEventNotFoundError(eventID)
	}

	s.cache.Set(ctx, event)
	return event, nil
}

func (s *Server) getPublicForm(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.loadPublishedEvent(c, eventID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !event.RegistrationOpen(time.Now().UTC()) {
		s.renderError(c, apperrors.NewRegistrationClosedError(eventID))
		return
	}

	c.JSON(http.StatusOK, publicEvent{
		ID:              event.ID,
		Title:           event.Title,
		Description:     event.Description,
		FormSchema:      event.FormSchema,
		TermsConditions: event.TermsConditions,
		StartDate:       event.StartDate,
		EndDate:         event.EndDate,
	})
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

func (s *Server) submitForm(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.loadPublishedEvent(c, eventID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !event.RegistrationOpen(time.Now().UTC()) {
		metrics.SubmissionsRejected.WithLabelValues(eventID, string(apperrors.ErrCodeRegistrationClosed)).Inc()
		s.renderError(c, apperrors.NewRegistrationClosedError(eventID))
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, badRequest(err.Error()))
		return
	}

	// Visibility filtering and required checks run server-side; the
	// client's rendering is never trusted.
	collector := form.NewCollector()
	for fieldID, value := range req.Answers {
		collector.SetAnswer(fieldID, value)
	}
	answers, err := collector.BuildSubmission(event.FormSchema)
	if err != nil {
		switch {
		case errors.Is(err, form.ErrValidation):
			metrics.SubmissionsRejected.WithLabelValues(eventID, string(apperrors.ErrCodeValidationFailed)).Inc()
			s.renderError(c, apperrors.NewValidationFailedError(err.Error()))
		case errors.Is(err, form.ErrPendingUpload):
			metrics.SubmissionsRejected.WithLabelValues(eventID, string(apperrors.ErrCodePendingUpload)).Inc()
			s.renderError(c, apperrors.NewPendingUploadError(err.Error()))
		default:
			s.renderError(c, err)
		}
		return
	}

	sub, err := s.submissions.Create(c.Request.Context(), eventID, answers)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}
	metrics.SubmissionsAccepted.WithLabelValues(eventID).Inc()

	// Search indexing and organizer notification are best-effort.
	if err := s.index.Index(c.Request.Context(), event, sub); err != nil {
		s.logger.Warn("submission indexing failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err.Error(),
		})
	}
	if s.notifier != nil {
		// Detached from the request context so a fast client
		// disconnect cannot cancel the send.
		go s.notifier.SubmissionReceived(context.Background(), event, sub)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        sub.ID,
		"createdAt": sub.CreatedAt,
	})
}

func (s *Server) uploadFile(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.loadPublishedEvent(c, eventID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !event.RegistrationOpen(time.Now().UTC()) {
		s.renderError(c, apperrors.NewRegistrationClosedError(eventID))
		return
	}
	if s.uploader == nil {
		s.renderError(c, apperrors.NewStorageUploadFailedError(errors.New("file storage is not configured")))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.renderError(c, badRequest("multipart field 'file' is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, apperrors.NewStorageUploadFailedError(err))
		return
	}
	defer file.Close()

	metrics.UploadsActive.WithLabelValues(eventID).Inc()
	defer metrics.UploadsActive.WithLabelValues(eventID).Dec()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.uploader.Upload(c.Request.Context(), eventID, fileHeader.Filename, contentType, file)
	if err != nil {
		s.renderError(c, apperrors.NewStorageUploadFailedError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func newGuestSessionID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "GUEST-" + raw[:6]
}

func (s *Server) chat(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.loadPublishedEvent(c, eventID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, badRequest(err.Error()))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.renderError(c, badRequest("message must not be empty"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = newGuestSessionID()
	}

	ctx := c.Request.Context()
	session, err := s.chats.Get(ctx, eventID, req.SessionID)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	history := session.Messages
	now := time.Now().UTC()
	session.Append(models.ChatRoleUser, req.Message, now)

	answer := assistant.FallbackReply
	if s.assistant != nil {
		answer = s.assistant.Reply(ctx, event, history, req.Message)
	}
	if answer == assistant.FallbackReply {
		metrics.ChatMessagesTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.ChatMessagesTotal.WithLabelValues("answered").Inc()
	}
	session.Append(models.ChatRoleAssistant, answer, time.Now().UTC())

	if err := s.chats.Save(ctx, session); err != nil {
		// The applicant already has the answer; losing history is not
		// worth failing the request over.
		s.logger.Error("chat history save failed", map[string]interface{}{
			"eventId":   eventID,
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": req.SessionID,
		"answer":    answer,
	})
}

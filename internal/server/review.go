// internal/server/review.go
package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "nexoprec/internal/common/errors"
	"nexoprec/internal/form"
	"nexoprec/internal/models"
	"nexoprec/internal/search"
)

const defaultPageSize = 50

// submissionRow is one reconciled entry of the review feed: answers
// projected onto the event's current schema, blanks where a submission
// predates a field.
type submissionRow struct {
	ID          string   `json:"id"`
	SubmittedAt string   `json:"submittedAt"`
	Values      []string `json:"values"`
}

func (s *Server) listSubmissions(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.events.GetOwned(c.Request.Context(), eventID, userID(c))
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	// Free-text queries go through the search index.
	if query := c.Query("q"); query != "" {
		s.searchSubmissions(c, eventID, query)
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 0 {
		limit = defaultPageSize
	}

	page, err := s.submissions.ListByEvent(c.Request.Context(), eventID, offset, limit)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	rows := make([]submissionRow, 0, len(page.Submissions))
	for _, sub := range page.Submissions {
		values := make([]string, 0, len(event.FormSchema))
		for _, field := range event.FormSchema {
			values = append(values, sub.Answers[field.ID])
		}
		rows = append(rows, submissionRow{
			ID:          sub.ID,
			SubmittedAt: sub.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			Values:      values,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"labels": event.FormSchema.Labels(),
		"rows":   rows,
		"total":  page.Total,
		"offset": page.Offset,
		"limit":  page.Limit,
	})
}

func (s *Server) searchSubmissions(c *gin.Context, eventID, query string) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}

	results, total, err := s.index.Search(c.Request.Context(), eventID, query, offset, limit)
	if err != nil {
		s.renderError(c, apperrors.NewSearchQueryFailedError(err))
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

func (s *Server) exportCSV(c *gin.Context) {
	eventID := c.Param("id")

	event, err := s.events.GetOwned(c.Request.Context(), eventID, userID(c))
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	subs, err := s.submissions.AllByEvent(c.Request.Context(), eventID)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	var buf bytes.Buffer
	if err := form.WriteCSV(&buf, event.FormSchema, subs); err != nil {
		s.renderError(c, err)
		return
	}

	filename := form.ExportFilename(event.Title)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) listChats(c *gin.Context) {
	eventID := c.Param("id")

	if _, err := s.events.GetOwned(c.Request.Context(), eventID, userID(c)); err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}

	sessions, err := s.chats.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		s.renderError(c, mapError(err, eventID))
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

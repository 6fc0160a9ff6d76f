// internal/search/search.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrMissingIndex      = errors.New("index name is required")
)

// SubmissionIndex mirrors accepted submissions into Elasticsearch so
// organizers can full-text search applicant answers. Answers are
// flattened by field label at index time; the label is what organizers
// see on screen, so it is what they search by.
type SubmissionIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSubmissionIndex(client *elasticsearch.Client, index string, log logger.Logger) *SubmissionIndex {
	return &SubmissionIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "submission-index"}),
	}
}

// Document is the indexed shape of one submission.
type Document struct {
	SubmissionID string            `json:"submissionId"`
	EventID      string            `json:"eventId"`
	CreatedAt    string            `json:"createdAt"`
	Answers      map[string]string `json:"answers"`
	FullText     string            `json:"fullText"`
}

// BuildDocument flattens a submission's answers against the event's
// current schema. Answers whose field no longer exists are dropped.
func BuildDocument(event *models.Event, sub *models.Submission) Document {
	doc := Document{
		SubmissionID: sub.ID,
		EventID:      sub.EventID,
		CreatedAt:    sub.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Answers:      make(map[string]string),
	}

	var parts []string
	for _, field := range event.FormSchema {
		value, ok := sub.Answers[field.ID]
		if !ok {
			continue
		}
		doc.Answers[field.Label] = value
		if value != "" {
			parts = append(parts, value)
		}
	}
	doc.FullText = strings.Join(parts, " ")
	return doc
}

// Index writes one submission document. Failures are logged and
// returned but callers treat indexing as best-effort.
func (s *SubmissionIndex) Index(ctx context.Context, event *models.Event, sub *models.Submission) error {
	if s == nil || s.client == nil {
		return nil
	}

	doc := BuildDocument(event, sub)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal document: %v", ErrSearchQueryFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: sub.ID,
		Body:       strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		s.logger.Warn("submission indexing failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("%w: index submission: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index submission: %s", ErrSearchQueryFailed, res.Status())
	}
	return nil
}

// BuildSearchQuery builds the query body for a submission search. The
// query matches the flattened answer text; results are scoped to one
// event and ordered newest first.
func BuildSearchQuery(eventID, query string) (map[string]interface{}, error) {
	if eventID == "" {
		return nil, ErrMissingIndex
	}

	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"eventId": eventID},
		},
	}

	boolQuery := map[string]interface{}{
		"filter": filterClauses,
	}
	if query != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"match": map[string]interface{}{
					"fullText": map[string]interface{}{
						"query":     query,
						"fuzziness": "AUTO",
					},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}, nil
}

// Result is one search hit.
type Result struct {
	SubmissionID string            `json:"submissionId"`
	CreatedAt    string            `json:"createdAt"`
	Answers      map[string]string `json:"answers"`
	Score        float64           `json:"score"`
}

// Search runs a full-text query over one event's submissions.
func (s *SubmissionIndex) Search(ctx context.Context, eventID, query string, from, size int) ([]Result, int64, error) {
	if s == nil || s.client == nil {
		return nil, 0, nil
	}

	queryBody, err := BuildSearchQuery(eventID, query)
	if err != nil {
		return nil, 0, err
	}
	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: search submissions: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("%w: search submissions: %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  float64  `json:"_score"`
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("%w: decode search response: %v", ErrSearchQueryFailed, err)
	}

	results := make([]Result, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, Result{
			SubmissionID: hit.Source.SubmissionID,
			CreatedAt:    hit.Source.CreatedAt,
			Answers:      hit.Source.Answers,
			Score:        hit.Score,
		})
	}
	return results, parsed.Hits.Total.Value, nil
}

// Delete removes an event's documents after the event itself is deleted.
func (s *SubmissionIndex) DeleteByEvent(ctx context.Context, eventID string) error {
	if s == nil || s.client == nil {
		return nil
	}

	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"eventId": eventID},
		},
	})

	req := esapi.DeleteByQueryRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: delete event documents: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: delete event documents: %s", ErrSearchQueryFailed, res.Status())
	}
	return nil
}

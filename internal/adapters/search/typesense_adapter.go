package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	tsclient "github.com/zatekoja/patientqueue/internal/infrastructure/clients/typesense"
)

const defaultSearchLimit = 20

// TypesenseAdapter implements queue search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements QueueSearchRepository
var _ repositories.QueueSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a queue document
func (a *TypesenseAdapter) Index(ctx context.Context, queue *entities.Queue) error {
	_, err := a.client.Client().Collection(tsclient.QueuesCollection).Documents().Upsert(ctx, queueDocument(queue))
	if err != nil {
		return fmt.Errorf("failed to index queue: %w", err)
	}
	return nil
}

// Delete removes a queue from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, uuid string) error {
	_, err := a.client.Client().Collection(tsclient.QueuesCollection).Document(uuid).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete queue from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over queue names and descriptions
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.QueueSearchParams) ([]*entities.Queue, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,description"),
		PerPage: pointer.Int(limit),
	}
	if filter := buildFilter(params); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(tsclient.QueuesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search queues: %w", err)
	}

	queues := []*entities.Queue{}
	if result.Hits == nil {
		return queues, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		queues = append(queues, queueFromDocument(*hit.Document))
	}
	return queues, nil
}

func buildFilter(params repositories.QueueSearchParams) string {
	if params.LocationUUID == "" {
		return ""
	}
	return fmt.Sprintf("location_uuid:=`%s`", strings.ReplaceAll(params.LocationUUID, "`", ""))
}

func queueDocument(queue *entities.Queue) map[string]interface{} {
	doc := map[string]interface{}{
		"id":            queue.UUID,
		"queue_id":      queue.ID,
		"name":          queue.Name,
		"description":   queue.Description,
		"location_uuid": queue.LocationUUID,
		"created_at":    queue.CreatedAt.Unix(),
	}
	if queue.ServiceUUID != nil {
		doc["service_uuid"] = *queue.ServiceUUID
	}
	return doc
}

// queueFromDocument rebuilds the indexed part of a queue. Typesense
// decodes numbers as float64.
func queueFromDocument(doc map[string]interface{}) *entities.Queue {
	queue := &entities.Queue{}
	queue.UUID, _ = doc["id"].(string)
	queue.Name, _ = doc["name"].(string)
	queue.Description, _ = doc["description"].(string)
	queue.LocationUUID, _ = doc["location_uuid"].(string)
	if v, ok := doc["service_uuid"].(string); ok {
		queue.ServiceUUID = &v
	}
	if v, ok := doc["queue_id"].(float64); ok {
		queue.ID = int64(v)
	}
	if v, ok := doc["created_at"].(float64); ok {
		queue.CreatedAt = time.Unix(int64(v), 0).UTC()
	}
	return queue
}

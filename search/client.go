// search/client.go - Elasticsearch access for hackathon and project discovery
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
)

const (
	ActionIndex  = "index"
	ActionDelete = "delete"
)

// Action is one document write, tagged with the outbox event that caused it.
type Action struct {
	EventID uint
	Op      string
	Index   string
	ID      string
	Body    []byte
}

type Client struct {
	es *es.Client
}

func NewClient(addresses []string) (*Client, error) {
	urls := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			urls = append(urls, a)
		}
	}
	client, err := es.NewClient(es.Config{Addresses: urls})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	log.Println("✅ Elasticsearch client configured")
	return &Client{es: client}, nil
}

// EnsureIndices creates the versioned indices with strict mappings when missing.
func (c *Client) EnsureIndices(ctx context.Context) error {
	for index, mapping := range indexMappings {
		res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("check index %s: %w", index, err)
		}
		res.Body.Close()
		if res.StatusCode == 200 {
			continue
		}

		res, err = c.es.Indices.Create(index,
			c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
			c.es.Indices.Create.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("create index %s: %w", index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("create index %s: %s", index, res.Status())
		}
		log.Printf("📚 Created search index %s", index)
	}
	return nil
}

// Apply sends the actions through a bulk indexer and returns the failures keyed by event id.
func (c *Client) Apply(ctx context.Context, actions []Action) (map[uint]error, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.es,
		FlushBytes: 5 << 20,
		NumWorkers: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}

	var mu sync.Mutex
	failures := make(map[uint]error)

	for _, a := range actions {
		item := esutil.BulkIndexerItem{
			Action:     a.Op,
			Index:      a.Index,
			DocumentID: a.ID,
			OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				// deleting a document that was never indexed is fine
				if a.Op == ActionDelete && res.Status == 404 {
					return
				}
				if err == nil {
					err = fmt.Errorf("%s: %s (status %d)", res.Error.Type, res.Error.Reason, res.Status)
				}
				mu.Lock()
				failures[a.EventID] = err
				mu.Unlock()
			},
		}
		if len(a.Body) > 0 {
			item.Body = bytes.NewReader(a.Body)
		}
		if err := bi.Add(ctx, item); err != nil {
			mu.Lock()
			failures[a.EventID] = err
			mu.Unlock()
		}
	}

	if err := bi.Close(ctx); err != nil {
		return failures, fmt.Errorf("flush bulk indexer: %w", err)
	}
	stats := bi.Stats()
	log.Printf("🔎 bulk sync flushed=%d failed=%d", stats.NumFlushed, stats.NumFailed)
	return failures, nil
}

// SearchHackathons runs a full-text query and returns matching hackathon ids by relevance.
func (c *Client) SearchHackathons(ctx context.Context, query string, size int) ([]uuid.UUID, error) {
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(HackathonIndex),
		c.es.Search.WithBody(esutil.NewJSONReader(HackathonQuery(query))),
		c.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("search hackathons: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search hackathons: %s", res.Status())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HackathonQuery builds the multi_match body used by SearchHackathons.
func HackathonQuery(q string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "theme^2", "tags^2", "description", "location"},
				"fuzziness": "AUTO",
			},
		},
	}
}

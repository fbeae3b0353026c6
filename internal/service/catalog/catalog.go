package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/heimsharon/booksearch/internal/models"
)

// Search runs a fuzzy multi-field query against the book catalog index and
// returns the matching volumes in the upstream catalog's response shape.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Volume, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"volumeInfo.title^2", "volumeInfo.authors", "volumeInfo.description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("catalog search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("catalog search: %w", err)
	}

	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("catalog search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Volume `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("catalog search: decode response: %w", err)
	}

	volumes := make([]models.Volume, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		volumes[i] = hit.Source
	}
	return r.Hits.Total.Value, volumes, nil
}

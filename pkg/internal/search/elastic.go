package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

type ElasticConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

type ElasticSearcher struct {
	client *elasticsearch.Client
	prefix string
}

func NewElasticSearcher(cfg ElasticConfig) (*ElasticSearcher, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticSearcher{client: client, prefix: cfg.IndexPrefix}, nil
}

func (s *ElasticSearcher) name(index Index) string {
	return s.prefix + string(index)
}

func mappingOf(index Index) map[string]any {
	properties := map[string]any{
		"created_at": map[string]any{"type": "date"},
	}
	for _, f := range indexFields[index] {
		properties[f.name] = map[string]any{"type": "text"}
	}
	if index == IndexUsers {
		properties["username"] = map[string]any{
			"type":   "text",
			"fields": map[string]any{"raw": map[string]any{"type": "keyword"}},
		}
	}
	return map[string]any{"mappings": map[string]any{"properties": properties}}
}

// EnsureIndices creates the indices that do not exist yet.
func (s *ElasticSearcher) EnsureIndices(ctx context.Context) error {
	for _, index := range Indices {
		res, err := s.client.Indices.Exists([]string{s.name(index)}, s.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", index, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusNotFound {
			continue
		}

		data, err := jsoniter.Marshal(mappingOf(index))
		if err != nil {
			return fmt.Errorf("failed to marshal mapping: %w", err)
		}
		res, err = s.client.Indices.Create(
			s.name(index),
			s.client.Indices.Create.WithContext(ctx),
			s.client.Indices.Create.WithBody(bytes.NewReader(data)),
		)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", index, err)
		}
		if err := responseError(res); err != nil {
			return err
		}
	}
	return nil
}

func responseError(res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *ElasticSearcher) Put(ctx context.Context, doc Document) error {
	body := make(map[string]any, len(doc.Fields)+1)
	for key, value := range doc.Fields {
		body[key] = value
	}
	body["created_at"] = doc.CreatedAt

	data, err := jsoniter.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	res, err := s.client.Index(
		s.name(doc.Index),
		bytes.NewReader(data),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(docID(doc.ID)),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	return responseError(res)
}

// Remove treats a document that is already gone as removed.
func (s *ElasticSearcher) Remove(ctx context.Context, index Index, id uint) error {
	res, err := s.client.Delete(
		s.name(index),
		docID(id),
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return responseError(res)
}

func queryOf(index Index, query string) map[string]any {
	match := map[string]any{
		"multi_match": map[string]any{
			"query": query,
			"fields": lo.Map(indexFields[index], func(item field, _ int) string {
				if item.weight == 1 {
					return item.name
				}
				return item.name + "^" + strconv.FormatFloat(item.weight, 'f', -1, 64)
			}),
		},
	}
	compact := compactQuery(query)
	if index != IndexUsers || compact == "" {
		return match
	}
	return map[string]any{
		"bool": map[string]any{
			"should": []any{
				match,
				map[string]any{"wildcard": map[string]any{
					"username.raw": map[string]any{"value": "*" + compact + "*", "case_insensitive": true},
				}},
			},
			"minimum_should_match": 1,
		},
	}
}

type esResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticSearcher) Search(ctx context.Context, index Index, query string, offset, limit int) (Hits, error) {
	body := map[string]any{
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
		"_source":          false,
		"query":            queryOf(index, query),
		"sort": []any{
			map[string]any{"_score": "desc"},
			map[string]any{"created_at": "desc"},
		},
	}

	data, err := jsoniter.Marshal(body)
	if err != nil {
		return Hits{}, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.name(index)),
		s.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return Hits{}, fmt.Errorf("failed to search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return Hits{}, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esResponse
	if err := jsoniter.NewDecoder(res.Body).Decode(&result); err != nil {
		return Hits{}, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := Hits{IDs: make([]uint, 0, len(result.Hits.Hits)), Total: result.Hits.Total.Value}
	for _, hit := range result.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		hits.IDs = append(hits.IDs, uint(id))
	}
	return hits, nil
}

package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

type ElasticsearchConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
	Index    string `mapstructure:"index" yaml:"index"`
	// Template installs the sign-in index template before the first write.
	Template bool `mapstructure:"template" yaml:"template"`
}

// ElasticsearchSink indexes events with esutil's bulk indexer.
type ElasticsearchSink struct {
	client   *elasticsearch.Client
	index    string
	template bool
}

// NewElasticsearchSink connects and checks cluster info.
func NewElasticsearchSink(cfg ElasticsearchConfig) (*ElasticsearchSink, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Insecure,
		},
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchSink{client: client, index: index, template: cfg.Template}, nil
}

func (s *ElasticsearchSink) Name() string { return NameElasticsearch }

func (s *ElasticsearchSink) Write(ctx context.Context, events []signin.Event) (int, error) {
	if s.template {
		if err := s.putTemplate(ctx); err != nil {
			return 0, err
		}
		s.template = false
	}

	var fails failures

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: s.client,
		Index:  s.index,
		OnError: func(_ context.Context, err error) {
			fails.add(err.Error())
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for i := range events {
		data, err := json.Marshal(&events[i])
		if err != nil {
			fails.add(fmt.Sprintf("marshal event %s: %v", events[i].Event.ID, err))
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: events[i].Event.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					fails.add(err.Error())
				} else {
					fails.add(fmt.Sprintf("%s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason))
				}
			},
		})
		if err != nil {
			fails.add(fmt.Sprintf("add to bulk indexer: %v", err))
			break
		}
	}

	if err := bi.Close(ctx); err != nil {
		return int(bi.Stats().NumIndexed), fmt.Errorf("bulk indexer close: %w", err)
	}
	indexed := int(bi.Stats().NumIndexed)
	return indexed, fails.err(len(events))
}

func (s *ElasticsearchSink) putTemplate(ctx context.Context) error {
	body, err := indexTemplate(s.index)
	if err != nil {
		return err
	}

	res, err := s.client.Indices.PutIndexTemplate(
		templateName(s.index),
		bytes.NewReader(body),
		s.client.Indices.PutIndexTemplate.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index template: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index template: %s", res.String())
	}
	return nil
}

func (s *ElasticsearchSink) Close() error { return nil }

package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

type OpenSearchConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
	Index    string `mapstructure:"index" yaml:"index"`
	// Template installs the sign-in index template before the first write.
	Template bool `mapstructure:"template" yaml:"template"`
}

// OpenSearchSink indexes events through the _bulk API.
type OpenSearchSink struct {
	client   *opensearch.Client
	index    string
	template bool
}

// NewOpenSearchSink connects and pings the cluster.
func NewOpenSearchSink(cfg OpenSearchConfig) (*OpenSearchSink, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &OpenSearchSink{client: client, index: index, template: cfg.Template}, nil
}

func (s *OpenSearchSink) Name() string { return NameOpenSearch }

func (s *OpenSearchSink) Write(ctx context.Context, events []signin.Event) (int, error) {
	if s.template {
		if err := s.putTemplate(ctx); err != nil {
			return 0, err
		}
		s.template = false
	}

	var fails failures

	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
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

		err = bi.Add(ctx, opensearchutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: events[i].Event.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem, err error) {
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

func (s *OpenSearchSink) putTemplate(ctx context.Context) error {
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
		bodyBytes, _ := io.ReadAll(res.Body)
		return fmt.Errorf("failed to create index template: %s - %s", res.Status(), string(bodyBytes))
	}
	return nil
}

func (s *OpenSearchSink) Close() error { return nil }

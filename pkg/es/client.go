// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"blog-planner-go/internal/config"
	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// planMapping 是博客计划索引的结构，topics 按全文检索。
const planMapping = `{
	"mappings": {
		"properties": {
			"export_id": { "type": "long" },
			"user_id": { "type": "long" },
			"title": { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
			"description": { "type": "text" },
			"target_audience": { "type": "text" },
			"schedule": { "type": "keyword" },
			"topics": { "type": "text" },
			"exported_at": { "type": "date" }
		}
	}
}`

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(planMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// PlanIndex 读写单个博客计划索引。
type PlanIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewPlanIndex 创建一个绑定到 index 的 PlanIndex。
func NewPlanIndex(client *elasticsearch.Client, index string) *PlanIndex {
	return &PlanIndex{client: client, index: index}
}

// Index 以 ExportID 为文档 ID 写入计划，重复导出会覆盖旧文档。
func (p *PlanIndex) Index(ctx context.Context, doc model.PlanDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: strconv.FormatUint(uint64(doc.ExportID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引计划到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index plan")
	}
	return nil
}

// Search 在某个用户导出过的计划中做全文检索。
func (p *PlanIndex) Search(ctx context.Context, userID uint, query string, size int) ([]model.PlanSearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(userID, query, size)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[PlanIndex] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}
	return decodeSearchResponse(res.Body)
}

func buildSearchQuery(userID uint, query string, size int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^3", "topics^2", "description", "target_audience"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"size": size,
	}
}

func decodeSearchResponse(body io.Reader) ([]model.PlanSearchResult, error) {
	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.PlanDocument `json:"_source"`
				Score  float64            `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.PlanSearchResult, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.PlanSearchResult{
			ExportID:       hit.Source.ExportID,
			Title:          hit.Source.Title,
			Description:    hit.Source.Description,
			TargetAudience: hit.Source.TargetAudience,
			Schedule:       hit.Source.Schedule,
			Topics:         hit.Source.Topics,
			Score:          hit.Score,
		})
	}
	return results, nil
}

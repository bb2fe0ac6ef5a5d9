// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"context"
	"regexp"
	"strings"

	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/log"
)

// 单次搜索返回的最大条数。
const maxSearchResults = 50

var spaceRun = regexp.MustCompile(`\s+`)

// PlanSearcher 在已导出的计划索引中检索。
type PlanSearcher interface {
	Search(ctx context.Context, userID uint, query string, size int) ([]model.PlanSearchResult, error)
}

// SearchService 接口定义了搜索操作。
type SearchService interface {
	SearchPlans(ctx context.Context, userID uint, query string, topK int) ([]model.PlanSearchResult, error)
}

type searchService struct {
	searcher PlanSearcher
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(searcher PlanSearcher) SearchService {
	return &searchService{searcher: searcher}
}

// SearchPlans 在用户导出过的计划中全文检索，空查询直接返回空结果。
func (s *searchService) SearchPlans(ctx context.Context, userID uint, query string, topK int) ([]model.PlanSearchResult, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return []model.PlanSearchResult{}, nil
	}
	if topK <= 0 || topK > maxSearchResults {
		topK = maxSearchResults
	}

	log.Infof("[SearchService] 搜索计划, user: %d, query: '%s', topK: %d", userID, normalized, topK)
	results, err := s.searcher.Search(ctx, userID, normalized, topK)
	if err != nil {
		log.Errorf("[SearchService] 搜索失败: %v", err)
		return nil, err
	}
	return results, nil
}

// normalizeQuery 去掉首尾空白并合并连续空白。
func normalizeQuery(q string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(q, " "))
}

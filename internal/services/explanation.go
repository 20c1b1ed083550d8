package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/calebdunn/studypath-backend/internal/logger"
	"github.com/calebdunn/studypath-backend/internal/utils"
)

type ExplainRequest struct {
	NodeKey     string `json:"nodeKey" binding:"required"`
	Label       string `json:"label" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type Explanation struct {
	NodeKey string `json:"node_key"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Cached  bool   `json:"cached"`
}

type ExplanationService interface {
	// Explain answers a per-node helper request. Results are cached in redis
	// and concurrent requests for the same node collapse to one model call.
	Explain(ctx context.Context, req ExplainRequest) (Explanation, error)
}

type explanationService struct {
	db     *gorm.DB
	log    *logger.Logger
	client OpenAIClient
	rdb    *goredis.Client
	group  singleflight.Group
	ttl    time.Duration
}

func NewExplanationService(db *gorm.DB, log *logger.Logger, client OpenAIClient, rdb *goredis.Client) ExplanationService {
	l := log.With("service", "ExplanationService")
	ttlHours := utils.GetEnvAsInt("EXPLANATION_CACHE_TTL_HOURS", 24, l)
	return &explanationService{
		db:     db,
		log:    l,
		client: client,
		rdb:    rdb,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

var explainPrompts = map[string]string{
	"explain":       "Explain this topic to a learner in 2-3 short paragraphs.",
	"tips":          "Give 3-5 practical study tips for this topic as a short list.",
	"resources":     "Suggest 3-5 well known learning resources for this topic, with one line on each.",
	"prerequisites": "List what a learner should already know before this topic, briefly.",
	"projects":      "Suggest 2-3 small hands-on projects that exercise this topic.",
	"breakdown":     "Break this topic into an ordered list of subtopics to learn.",
}

func (s *explanationService) Explain(ctx context.Context, req ExplainRequest) (Explanation, error) {
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = "explain"
	}
	if _, ok := explainPrompts[typ]; !ok {
		return Explanation{}, fmt.Errorf("unknown explanation type %q", typ)
	}

	key := explanationCacheKey(req.NodeKey, typ)

	if content, ok := s.cacheGet(ctx, key); ok {
		return Explanation{NodeKey: req.NodeKey, Type: typ, Content: content, Cached: true}, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if content, ok := s.cacheGet(ctx, key); ok {
			return content, nil
		}
		content, err := s.client.Complete(ctx, explainSystemPrompt, explainUserPrompt(req, typ))
		if err != nil {
			return "", err
		}
		s.cacheSet(ctx, key, content)
		return content, nil
	})
	if err != nil {
		return Explanation{}, fmt.Errorf("explanation call failed: %w", err)
	}

	return Explanation{NodeKey: req.NodeKey, Type: typ, Content: v.(string), Cached: false}, nil
}

func (s *explanationService) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.rdb == nil {
		return "", false
	}
	content, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			s.log.Warn("Explanation cache read failed", "error", err, "key", key)
		}
		return "", false
	}
	return content, true
}

func (s *explanationService) cacheSet(ctx context.Context, key, content string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, key, content, s.ttl).Err(); err != nil {
		s.log.Warn("Explanation cache write failed", "error", err, "key", key)
	}
}

func explanationCacheKey(nodeKey, typ string) string {
	if typ == "explain" {
		return "ai-explanation-" + nodeKey
	}
	return "ai-explanation-" + nodeKey + ":" + typ
}

const explainSystemPrompt = "You are a concise tutor embedded in a study roadmap. " +
	"Answer about the given roadmap node only. Plain text, no markdown headers."

func explainUserPrompt(req ExplainRequest, typ string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Node: %s\n", req.Label)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	b.WriteString(explainPrompts[typ])
	return b.String()
}

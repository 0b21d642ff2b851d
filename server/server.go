// Package server 提供推荐结果的 HTTP 查询服务。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"matekit/core"
	"matekit/engine"
	"matekit/feature"
	"matekit/recall"
)

// Server 包装 Engine，暴露用户 feed 接口。
type Server struct {
	engine *engine.Engine
	router chi.Router
}

// Card 是 feed 中的一条推荐卡片。
type Card struct {
	UserID             string   `json:"user_id"`
	MatchID            string   `json:"match_id"`
	CompatibilityScore float64  `json:"compatibility_score"`
	Name               string   `json:"name,omitempty"`
	Age                int      `json:"age"`
	City               string   `json:"city"`
	Tags               []string `json:"tags,omitempty"`
	Scores             Scores   `json:"scores"`
	Filters            Filters  `json:"filters"`
	Vedic              Vedic    `json:"vedic"`
}

// Filters 回显本次推荐生效的硬过滤开关。
type Filters struct {
	Gender bool `json:"gender"`
	Age    bool `json:"age"`
	City   bool `json:"city"`
}

// Scores 是卡片的特征明细。
type Scores struct {
	Similarity      float64 `json:"similarity"`
	Overlap         float64 `json:"overlap"`
	AgeGap          float64 `json:"age_gap"`
	Complementarity float64 `json:"complementarity"`
}

// Vedic 是卡片的 vedic-lite 信号明细。
type Vedic struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

type feedResponse struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
	Cards  []Card `json:"cards"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// New 构造 Server 并装配路由。
func New(eng *engine.Engine) *Server {
	s := &Server{engine: eng}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/feed", s.handleFeed)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe 启动 HTTP 服务，ctx 取消时优雅关停。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "user_id is required",
			Code:  core.ErrorCodeInvalidInput,
		})
		return
	}

	topn := s.engine.Config.TopN
	if raw := r.URL.Query().Get("topn"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "topn must be a positive integer",
				Code:  core.ErrorCodeInvalidInput,
			})
			return
		}
		topn = n
	}

	matches, err := s.engine.RecommendForUser(r.Context(), userID, topn)
	if err != nil {
		if core.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error: err.Error(),
				Code:  core.ErrorCodeNotFound,
			})
			return
		}
		slog.Error("feed failed", "user_id", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal error",
			Code:  core.ErrorCodeInternalError,
		})
		return
	}

	cards := make([]Card, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, s.toCard(m))
	}
	writeJSON(w, http.StatusOK, feedResponse{UserID: userID, Count: len(cards), Cards: cards})
}

func (s *Server) toCard(m *core.Candidate) Card {
	card := Card{
		UserID:             m.UserID,
		MatchID:            m.CandidateID,
		CompatibilityScore: m.Score,
		Scores: Scores{
			Similarity:      m.Feature(recall.FeatureSimilarity),
			Overlap:         m.Feature(feature.FeatureOverlap),
			AgeGap:          m.Feature(feature.FeatureAgeGap),
			Complementarity: m.Feature(feature.FeatureComplementarity),
		},
		Filters: Filters{
			Gender: s.engine.Config.Filters.Gender,
			Age:    s.engine.Config.Filters.Age,
			City:   s.engine.Config.Filters.City,
		},
		Vedic: Vedic{
			Score:      m.Feature(feature.FeatureVedicLite),
			Confidence: m.Feature(feature.FeatureVedicConfidence),
		},
	}

	if u, ok := s.engine.Data.User(m.CandidateID); ok {
		card.Name = u.Name
		card.Age = u.Age
		card.City = u.City
		for tag := range u.Tags {
			card.Tags = append(card.Tags, tag)
		}
		sort.Strings(card.Tags)
	}
	return card
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "err", err)
	}
}

// requestLogger 记录每个请求的方法、路径、状态与耗时。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/usecase"
	"github.com/sauraha-lab/parkguide/pkg/utils/errutil"
	"github.com/sauraha-lab/parkguide/pkg/utils/logging"
	"github.com/sauraha-lab/parkguide/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	chatUC *usecase.ChatUseCase
}

type Options func(*Server)

func New(chatUC *usecase.ChatUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		chatUC: chatUC,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/clear", s.handleChatClear)
		r.Get("/chat/history", s.handleChatHistory)
		r.Get("/stats", s.handleStats)
	})

	r.Get("/health", handleHealth)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type chatRequest struct {
	Message            string `json:"message"`
	SessionID          string `json:"session_id,omitempty"`
	IncludeSuggestions *bool  `json:"include_suggestions,omitempty"`
	UseEmojis          *bool  `json:"use_emojis,omitempty"`
}

type chatResponse struct {
	Response    string   `json:"response"`
	SessionID   string   `json:"session_id"`
	Sources     []string `json:"sources"`
	Suggestions []string `json:"suggestions"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "malformed chat request"), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		errutil.HandleHTTP(r.Context(), w, goerr.New("message is required"), http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var opts []usecase.QueryOption
	if req.IncludeSuggestions != nil {
		opts = append(opts, usecase.WithSuggestions(*req.IncludeSuggestions))
	}
	if req.UseEmojis != nil {
		opts = append(opts, usecase.WithEmojis(*req.UseEmojis))
	}

	result := s.chatUC.Query(r.Context(), req.Message, opts...)

	writeJSON(w, r, chatResponse{
		Response:    result.Answer,
		SessionID:   sessionID,
		Sources:     result.Sources,
		Suggestions: result.Suggestions,
	})
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	s.chatUC.ClearMemory()
	writeJSON(w, r, map[string]string{"status": "cleared"})
}

type historyTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	history := s.chatUC.GetHistory()

	turns := make([]historyTurn, len(history))
	for i, turn := range history {
		turns[i] = historyTurn{
			Role:      turn.Role.String(),
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		}
	}

	writeJSON(w, r, map[string][]historyTurn{"history": turns})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.chatUC.GetStats())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/mutation"
)

type askRequest struct {
	UserMessage string      `json:"userMessage" binding:"required"`
	ChatHistory []chat.Turn `json:"chatHistory"`
	SessionID   string      `json:"sessionId"`

	// Credential carries the bearer token for clients that cannot set
	// the Authorization header.
	Credential string `json:"credential"`
}

type askResponse struct {
	Reply       string       `json:"reply"`
	SessionID   string       `json:"sessionId"`
	ChatHistory []chat.Turn  `json:"chatHistory"`
	Changes     []changeView `json:"changes,omitempty"`
}

type changeView struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// credential resolves the bearer token for a request: the Authorization
// header wins, the body field is the fallback.
func credential(c *gin.Context, body string) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return body
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "userMessage is required"})
		return
	}

	identity, err := s.inspector.Inspect(credential(c, req.Credential))
	if err != nil {
		if s.strict {
			c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credential"})
			return
		}
		s.logger.Warn("credential rejected, continuing as viewer", "error", err)
	}

	sessionID := req.SessionID
	if sessionID == "" && req.ChatHistory == nil {
		sessionID = uuid.NewString()
	}

	out, err := s.service.Ask(c.Request.Context(), chat.AskInput{
		Identity:   identity,
		SessionKey: sessionID,
		Message:    req.UserMessage,
		History:    req.ChatHistory,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "userMessage is required"})
			return
		}
		s.logger.Error("ask failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Reply:       out.Reply,
		SessionID:   sessionID,
		ChatHistory: out.History,
		Changes:     changeViews(out.Outcomes),
	})
}

func changeViews(outcomes []mutation.Outcome) []changeView {
	if len(outcomes) == 0 {
		return nil
	}
	views := make([]changeView, 0, len(outcomes))
	for _, o := range outcomes {
		views = append(views, changeView{
			Kind:   string(o.Statement.Kind),
			Status: string(o.Status),
			Detail: o.Detail,
		})
	}
	return views
}

func (s *Server) handleResetHistory(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "sessionId is required"})
		return
	}

	s.sessions.Reset(sessionID)
	c.JSON(http.StatusOK, gin.H{"greeting": chat.Greeting})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.collector.Snapshot())
}

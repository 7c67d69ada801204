package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/core/conversation"
	"github.com/agenthands/distill/internal/core/merge"
	apperrors "github.com/agenthands/distill/internal/errors"
)

type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// Extract pulls knowledge out of text and merges it. An unparseable model
// reply is not a failure: nothing is merged and a warning is returned.
func (s *Server) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	result, err := s.extractor.Extract(ctx, req.Text)
	if err != nil && apperrors.IsErrorType(err, apperrors.ErrorTypeTransport) {
		s.respondError(c, err, "Failed to extract knowledge")
		return
	}

	summary, mergeErr := merge.Apply(ctx, result, s.store)
	if mergeErr != nil {
		s.respondError(c, mergeErr, "Failed to merge knowledge")
		return
	}

	resp := gin.H{"extraction": result, "merged": summary}
	if err != nil {
		s.log.Warn("Extraction returned nothing usable", zap.Error(err))
		resp["warning"] = "No structured knowledge could be read from the model reply"
	}
	c.JSON(http.StatusOK, resp)
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, pkg, err := s.engine.Answer(c.Request.Context(), req.Query, s.store)
	if err != nil {
		s.log.Error("Failed to answer query", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to answer query", "detail": err.Error(), "retrieval": pkg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer, "retrieval": pkg})
}

type CreateSessionRequest struct {
	Domain string `json:"domain"`
	Audio  bool   `json:"audio"`
}

func (s *Server) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// an empty body is a session without a domain
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	state := conversation.NewState(req.Domain)
	if req.Audio {
		s.interviewer.SpeakGreeting(c.Request.Context(), state)
	}
	s.sessions[state.ID] = state
	c.JSON(http.StatusCreated, state)
}

func (s *Server) session(c *gin.Context) (*conversation.State, bool) {
	state, ok := s.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	}
	return state, ok
}

func (s *Server) GetSession(c *gin.Context) {
	if state, ok := s.session(c); ok {
		c.JSON(http.StatusOK, state)
	}
}

type MessageRequest struct {
	Content string `json:"content"`
}

// PostMessage runs one turn. "end" finishes the interview and extracts
// knowledge; an empty message or "auto" lets the model answer for the
// user.
func (s *Server) PostMessage(c *gin.Context) {
	state, ok := s.session(c)
	if !ok {
		return
	}
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	content := req.Content
	if conversation.IsAutoCommand(content) {
		generated, err := s.interviewer.GenerateUserReply(ctx, state)
		if err != nil {
			s.respondError(c, err, "No response generated")
			return
		}
		content = generated
	}

	if conversation.IsEndCommand(content) {
		s.endSession(c, state)
		return
	}

	reply, err := s.interviewer.Respond(ctx, state, content)
	if err != nil {
		s.respondError(c, err, "Failed to generate a reply")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "session": state})
}

func (s *Server) endSession(c *gin.Context, state *conversation.State) {
	res, err := s.interviewer.End(c.Request.Context(), state, s.extractor, s.store)
	// a transport failure answers like POST /extract; "end" can be sent again
	if res == nil || apperrors.IsErrorType(err, apperrors.ErrorTypeTransport) {
		s.respondError(c, err, "Failed to end conversation")
		return
	}
	resp := gin.H{"ended": true, "extraction": res.Extraction, "merged": res.Merged, "session": state}
	if err != nil {
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) PostAudio(c *gin.Context) {
	state, ok := s.session(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing audio file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable audio file"})
		return
	}
	defer f.Close()

	reply, err := s.interviewer.RespondAudio(c.Request.Context(), state, f, fh.Filename)
	if err != nil {
		s.respondError(c, err, "Failed to process audio")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "session": state})
}

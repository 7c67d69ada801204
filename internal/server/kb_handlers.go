package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/distill/internal/core/model"
)

func (s *Server) ExportKB(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Export())
}

func (s *Server) ImportKB(c *gin.Context) {
	var data model.KnowledgeData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid knowledge base document"})
		return
	}
	if err := s.store.Import(c.Request.Context(), &data); err != nil {
		s.respondError(c, err, "Failed to import knowledge base")
		return
	}
	c.JSON(http.StatusOK, s.store.Stats())
}

func (s *Server) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func (s *Server) GetConcept(c *gin.Context) {
	name := c.Param("name")
	attrs, ok := s.store.QueryConcept(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Concept not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "attributes": attrs})
}

func (s *Server) PutConcept(c *gin.Context) {
	var attrs model.Attributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attributes must be a JSON object"})
		return
	}
	name := c.Param("name")
	if err := s.store.AddConcept(c.Request.Context(), name, attrs); err != nil {
		s.respondError(c, err, "Failed to save concept")
		return
	}
	stored, _ := s.store.QueryConcept(name)
	c.JSON(http.StatusOK, gin.H{"name": name, "attributes": stored})
}

// ListConcepts lists every concept name, or with ?attribute=&value= the
// names whose attribute equals value. value is read as JSON when it parses
// (so 3 and true match numbers and booleans) and as a plain string
// otherwise.
func (s *Server) ListConcepts(c *gin.Context) {
	attribute := c.Query("attribute")
	if attribute == "" {
		c.JSON(http.StatusOK, gin.H{"concepts": s.store.ConceptNames()})
		return
	}
	raw := c.Query("value")
	var value interface{} = raw
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		value = decoded
	}
	c.JSON(http.StatusOK, gin.H{"concepts": s.store.QueryByAttribute(attribute, value)})
}

func (s *Server) ListRelationships(c *gin.Context) {
	concept := c.Query("concept")
	if concept == "" {
		c.JSON(http.StatusOK, gin.H{"relationships": s.store.Export().Relationships})
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": s.store.QueryRelationships(concept)})
}

type AddRelationshipRequest struct {
	Source   string `json:"source" binding:"required"`
	Relation string `json:"relation" binding:"required"`
	Target   string `json:"target" binding:"required"`
}

func (s *Server) AddRelationship(c *gin.Context) {
	var req AddRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.AddRelationship(c.Request.Context(), req.Source, req.Relation, req.Target); err != nil {
		s.respondError(c, err, "Failed to save relationship")
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": s.store.QueryRelationships(req.Source)})
}

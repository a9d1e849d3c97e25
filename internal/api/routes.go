package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/engine"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/shadow"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/store"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// APIHandler wires the engine to an HTTP/WebSocket surface. Every field
// is optional except wsHub; a nil cacheStore disables the /cache
// endpoints and a nil shadowRunner disables /shadow/compare.
type APIHandler struct {
	cacheStore   *store.Store
	wsHub        *Hub
	shadowRunner *shadow.Runner
}

func SetupRouter(cacheStore *store.Store, wsHub *Hub, shadowRunner *shadow.Runner) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://example.org
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		cacheStore:   cacheStore,
		wsHub:        wsHub,
		shadowRunner: shadowRunner,
	}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	// ── Protected endpoints (require bearer token if DEDUPE_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	{
		// Each call runs a whole blocking+scoring+assembly pass over the
		// posted records, so uploads get a much tighter bucket than a
		// cache lookup.
		uploadLimit := NewRateLimiter(10, 3).Middleware()
		auth.POST("/dedupe", uploadLimit, handler.handleDedupe)
		auth.POST("/dedupe/async", uploadLimit, handler.handleDedupeAsync)
		auth.POST("/shadow/compare", uploadLimit, handler.handleShadowCompare)

		// Reading back an already-persisted cache file is a single
		// point lookup — worth a looser bucket.
		readLimit := NewRateLimiter(60, 10).Middleware()
		auth.GET("/cache/:id", readLimit, handler.handleGetCacheFile)
		auth.POST("/cache/:id/reaudit", readLimit, handler.handleReaudit)
	}

	// Serve static reviewer dashboard, same way the teacher serves its
	// forensics dashboard.
	r.Static("/dashboard", "./public")

	return r
}

// handleHealth returns engine status for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "operational",
		"engine":         "Beneficiary Dedupe Engine",
		"storeConnected": h.cacheStore != nil,
		"capabilities": gin.H{
			"blocking":           true,
			"unionFind":          true,
			"deterministicSplit": true,
			"auditEngine":        true,
			"shadowCompare":      h.shadowRunner != nil,
		},
	})
}

// handleDedupe runs the full pipeline synchronously over the posted
// input, accumulating every streamed message and returning the whole
// sequence in one buffered JSON object ({"messages": [...]}, plus
// "error" when the run failed) for callers that don't want a websocket.
func (h *APIHandler) handleDedupe(c *gin.Context) {
	var input engine.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	var messages []engine.Message
	err := engine.Run(c.Request.Context(), input, func(m engine.Message) {
		messages = append(messages, m)
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"messages": messages, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// handleDedupeAsync launches the pipeline in the background and
// streams progress/pairwise-result/done/error over the websocket hub,
// returning immediately with an acknowledgement. This is the shape a
// reviewer dashboard uses for a large upload.
func (h *APIHandler) handleDedupeAsync(c *gin.Context) {
	var input engine.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	go func() {
		ctx := context.Background()
		err := engine.Run(ctx, input, func(m engine.Message) {
			h.wsHub.Broadcast(m)
		})
		if err != nil {
			log.Printf("dedupe run finished with error: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "dedupe_started",
		"hint":   "subscribe to /api/v1/stream for progress",
	})
}

// handleGetCacheFile returns a previously persisted cache file.
func (h *APIHandler) handleGetCacheFile(c *gin.Context) {
	if h.cacheStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cache store not configured"})
		return
	}
	cacheID := c.Param("id")
	cf, err := h.cacheStore.LoadCacheFile(c.Request.Context(), cacheID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cache file not found", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cf)
}

// handleReaudit re-runs the audit engine (C7) over a cache file's
// already-finished clusters without redoing blocking/scoring/assembly,
// and persists the refreshed findings.
func (h *APIHandler) handleReaudit(c *gin.Context) {
	if h.cacheStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cache store not configured"})
		return
	}
	cacheID := c.Param("id")
	cf, err := h.cacheStore.LoadCacheFile(c.Request.Context(), cacheID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cache file not found", "details": err.Error()})
		return
	}

	findings := engine.Reaudit(cf.Rows, cf.Clusters)
	if err := h.cacheStore.SaveAuditFindings(c.Request.Context(), cacheID, findings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist findings", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cacheId":  cacheID,
		"findings": findings,
	})
}

// handleShadowCompare accepts a candidate configuration and compares
// the clustering it would produce, over the posted records, against
// the production configuration.
func (h *APIHandler) handleShadowCompare(c *gin.Context) {
	if h.shadowRunner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Shadow comparison not configured"})
		return
	}

	var req struct {
		CacheID    string                `json:"cacheId"`
		Records    []map[string]any      `json:"records"`
		Mapping    map[string]string     `json:"mapping,omitempty"`
		Candidate  *models.ConfigOptions `json:"candidate"`
		Production *models.ConfigOptions `json:"production,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	records := engine.ResolveRecords(req.Records, req.Mapping)
	production := req.Production.Resolve()
	candidate := req.Candidate.Resolve()

	result, err := h.shadowRunner.Compare(c.Request.Context(), req.CacheID, records, production, candidate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Shadow comparison failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

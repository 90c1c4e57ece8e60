// Package observer is the read-only REST and websocket surface over a
// running hypergraph: the Visualizer's read path and the Observer's
// structured-event sink from spec.md §6, neither of which the core
// depends on or blocks for.
package observer

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/molten/internal/molten"
	"github.com/rawblock/molten/pkg/models"
)

// Handler serves the enumerative read surface over a single running
// hypergraph. It holds no domain logic of its own — every endpoint is
// a thin JSON wrapper around an existing Hypergraph accessor.
type Handler struct {
	graph *molten.Hypergraph[string]
	hub   *Hub
}

// NewHandler builds a Handler over graph. hub is stored alongside it,
// but no Handler endpoint uses it; events reach hub's websocket clients
// through Hub.Pump, not through the Handler.
func NewHandler(graph *molten.Hypergraph[string], hub *Hub) *Handler {
	return &Handler{graph: graph, hub: hub}
}

// SetupRouter builds the gin engine: an open CORS policy configurable
// via ALLOWED_ORIGINS, a public group (health check, event stream),
// and a bearer-token-gated, rate-limited group over the enumerative
// accessors.
func SetupRouter(graph *molten.Hypergraph[string], hub *Hub) *gin.Engine {
	r := gin.Default()

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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	handler := NewHandler(graph, hub)

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", hub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(60, 10).Middleware())
	{
		protected.GET("/nodes", handler.handleNodes)
		protected.GET("/edges", handler.handleEdges)
		protected.GET("/worlds", handler.handleWorlds)
		protected.GET("/isomorphics/:label", handler.handleIsomorphics)
	}

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{Status: "operational", Engine: "molten"})
}

// handleNodes returns every node label currently focused, optionally
// filtered to a single world via ?world=<label>. The world filter is
// applied after Nodes returns — Locate takes its own lock, and calling
// it from inside Nodes' filter callback would deadlock against the
// RLock Nodes already holds while iterating.
func (h *Handler) handleNodes(c *gin.Context) {
	labels := h.graph.Nodes(nil)

	raw := c.Query("world")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"nodes": nodeViews(labels)})
		return
	}

	world, err := parseLabel(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid world label"})
		return
	}

	filtered := make([]molten.Label, 0, len(labels))
	for _, l := range labels {
		if actual, err := h.graph.Locate(l); err == nil && actual == world {
			filtered = append(filtered, l)
		}
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodeViews(filtered)})
}

func nodeViews(labels []molten.Label) []models.NodeView {
	views := make([]models.NodeView, len(labels))
	for i, l := range labels {
		views[i] = models.NodeView{Label: uint64(l)}
	}
	return views
}

// handleEdges returns every edge label in the hypergraph, optionally
// filtered to edges touching any of the given source labels via
// repeated ?source=<label> query parameters.
func (h *Handler) handleEdges(c *gin.Context) {
	var sources []molten.Label
	for _, raw := range c.QueryArray("source") {
		label, err := parseLabel(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source label"})
			return
		}
		sources = append(sources, label)
	}

	if len(sources) == 0 {
		c.JSON(http.StatusOK, gin.H{"edges": h.edgeViews(h.graph.Edges(nil))})
		return
	}

	filter := func(e molten.Edge[string]) bool {
		for _, want := range sources {
			for _, have := range e.Source {
				if have == want {
					return true
				}
			}
		}
		return false
	}
	c.JSON(http.StatusOK, gin.H{"edges": h.edgeViews(h.graph.Edges(filter))})
}

// edgeViews re-fetches each edge label to flatten its source/sink
// label sets into the wire view; a label whose lookup fails is
// silently skipped rather than surfaced as an error. The hypergraph
// never removes edges, so a label returned by Edges() still resolves.
func (h *Handler) edgeViews(labels []molten.Label) []models.EdgeView {
	views := make([]models.EdgeView, 0, len(labels))
	for _, l := range labels {
		e, err := h.graph.Edge(l)
		if err != nil {
			continue
		}
		source := make([]uint64, len(e.Source))
		for i, s := range e.Source {
			source[i] = uint64(s)
		}
		sink := make([]uint64, len(e.Sink))
		for i, s := range e.Sink {
			sink[i] = uint64(s)
		}
		views = append(views, models.EdgeView{Label: uint64(e.Label), Source: source, Sink: sink})
	}
	return views
}

// handleWorlds returns the union-find partition as representative ->
// sorted member list, the Visualizer's world-coloring source.
func (h *Handler) handleWorlds(c *gin.Context) {
	groups := h.graph.United()
	views := make([]models.WorldView, len(groups))
	for i, g := range groups {
		members := make([]uint64, len(g.Members))
		for j, m := range g.Members {
			members[j] = uint64(m)
		}
		views[i] = models.WorldView{Representative: uint64(g.Representative), Members: members}
	}
	c.JSON(http.StatusOK, gin.H{"worlds": views})
}

// handleIsomorphics returns every node label whose particle is
// isomorphic to the given node's particle.
func (h *Handler) handleIsomorphics(c *gin.Context) {
	label, err := parseLabel(c.Param("label"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label"})
		return
	}
	node, err := h.graph.Node(label)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isomorphics": nodeViews(h.graph.Isomorphics(node.Particle))})
}

func parseLabel(raw string) (molten.Label, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return molten.Label(n), nil
}

package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// defaultUserID matches the HTTP layer's dev identity so a bare stdio
// transport talks about the same user as an unconfigured API client.
var defaultUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return defaultUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, gen *engine.Generator, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronPlan workout planning server. Preview training splits, generate sessions, and inspect load progression. All data is scoped to the authenticated user."),
	)

	h := &handlers{db: db, gen: gen, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolPlanDay, Handler: h.planDay},
		server.ServerTool{Tool: toolGenerateSession, Handler: h.generateSession},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolPreviewNextLoad, Handler: h.previewNextLoad},
		server.ServerTool{Tool: toolInterpretFeedback, Handler: h.interpretFeedback},
		server.ServerTool{Tool: toolGetSessionStats, Handler: h.getSessionStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSplitTable, Handler: h.splitTable},
		server.ServerResource{Resource: resUpcomingSessions, Handler: h.upcomingSessions},
		server.ServerResource{Resource: resProfile, Handler: h.profile},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db  *storage.DB
	gen *engine.Generator
	log *slog.Logger
}

// --- Resource definitions ---

var resSplitTable = mcp.NewResource(
	"ironplan://split_table",
	"Split Table",
	mcp.WithResourceDescription("Training split rotations for every experience level and weekly frequency"),
	mcp.WithMIMEType("application/json"),
)

var resUpcomingSessions = mcp.NewResource(
	"ironplan://upcoming_sessions",
	"Upcoming Sessions",
	mcp.WithResourceDescription("Planned workout sessions for the next 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resProfile = mcp.NewResource(
	"ironplan://profile",
	"User Profile",
	mcp.WithResourceDescription("The authenticated user's training profile: experience, goal, frequency, location, and injuries"),
	mcp.WithMIMEType("application/json"),
)

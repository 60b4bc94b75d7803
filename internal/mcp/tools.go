package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/models"
)

// defaultDateRange returns start/end defaulting to the coming 30 days, which
// is the window the planner's horizon fills.
func defaultDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = time.Now().AddDate(0, 0, -1)
	}

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = start.AddDate(0, 0, 31)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolPlanDay = mcp.NewTool("plan_day",
	mcp.WithDescription("Preview which split day a date falls on: label, division, and target muscle groups. Does not generate or store anything."),
	mcp.WithString("date", mcp.Description("Date to plan (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
)

var toolGenerateSession = mcp.NewTool("generate_session",
	mcp.WithDescription("Generate and persist the workout session for a date: exercise selection, sets, reps, target RPE, and loads. Idempotent — an existing valid session is returned unchanged."),
	mcp.WithString("date", mcp.Description("Date to generate (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query planned workout sessions including their prescriptions and completion state."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to yesterday.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to 31 days after start.")),
)

var toolPreviewNextLoad = mcp.NewTool("preview_next_load",
	mcp.WithDescription("Preview the next prescription for an exercise: the stored progression record and the adjustment the planner would apply. Falls back to the initial-load estimate when no history exists."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name (e.g. 'Bench Press')")),
	mcp.WithString("split_label", mcp.Description("Scope the history to one split day (e.g. 'B'). Defaults to the newest record across days.")),
)

var toolInterpretFeedback = mcp.NewTool("interpret_feedback",
	mcp.WithDescription("Pure calculator: given a prior load and feedback (or a legacy RPE report), return the adjustment the planner would make. No stored data is read or written."),
	mcp.WithNumber("load", mcp.Required(), mcp.Description("Prior working load in kg (0 for bodyweight work)")),
	mcp.WithString("feedback", mcp.Description("Qualitative feedback"), mcp.Enum("too_easy", "on_point", "too_hard")),
	mcp.WithNumber("rpe", mcp.Description("Legacy RPE report (1-10). Ignored when feedback is set.")),
	mcp.WithString("goal", mcp.Description("Training goal. Defaults to hypertrophy."), mcp.Enum("strength", "hypertrophy", "weight_loss", "conditioning")),
	mcp.WithNumber("step", mcp.Description("Equipment increment in kg. Defaults to 2.5.")),
	mcp.WithNumber("sets", mcp.Description("Prior set count (matters for bodyweight progressions). Defaults to 3.")),
	mcp.WithNumber("reps", mcp.Description("Prior rep count (matters for bodyweight progressions). Defaults to 10.")),
)

var toolGetSessionStats = mcp.NewTool("get_session_stats",
	mcp.WithDescription("Planned vs completed session counts over a date range."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to yesterday.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to 31 days after start.")),
)

// --- Tool handlers ---

func (h *handlers) planDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	date := time.Now()
	if raw := req.GetString("date", ""); raw != "" {
		parsed, err := parseFlexTime(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		date = parsed
	}

	profile, err := h.db.FetchUserProfile(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("profile lookup failed: " + err.Error()), nil
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	cycle, err := h.db.FetchPriorSessionCount(ctx, uid, day)
	if err != nil {
		return mcp.NewToolResultError("cycle lookup failed: " + err.Error()), nil
	}
	split, err := engine.PlanDay(profile, cycle)
	if err != nil {
		return mcp.NewToolResultError("planning failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"date":         day.Format("2006-01-02"),
		"training_day": engine.IsTrainingDay(profile.WeeklyFrequency, day.Weekday()),
		"division":     engine.Division(profile.WeeklyFrequency),
		"label":        split.Label,
		"groups":       split.Groups,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generateSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	date := time.Now()
	if raw := req.GetString("date", ""); raw != "" {
		parsed, err := parseFlexTime(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		date = parsed
	}

	session, err := h.gen.GenerateSession(ctx, uid, date)
	if err != nil {
		h.log.Error("mcp generate_session", "error", err)
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.db.FetchSessionsBetween(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewNextLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	ex, err := h.db.FetchExerciseByName(ctx, name)
	if err != nil {
		return mcp.NewToolResultError("exercise lookup failed: " + err.Error()), nil
	}
	profile, err := h.db.FetchUserProfile(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("profile lookup failed: " + err.Error()), nil
	}
	step, loadless, err := engine.Increment(ex.Equipment)
	if err != nil {
		return mcp.NewToolResultError("equipment not recognized: " + err.Error()), nil
	}

	var record *models.ProgressionRecord
	if label := req.GetString("split_label", ""); label != "" {
		record, err = h.db.FetchProgressionRecord(ctx, uid, ex.ID, label)
	} else {
		record, err = h.db.FetchLatestProgression(ctx, uid, ex.ID)
	}
	if err != nil {
		return mcp.NewToolResultError("progression lookup failed: " + err.Error()), nil
	}

	out := map[string]any{
		"exercise":     ex.Name,
		"muscle_group": ex.MuscleGroup,
		"loadless":     loadless,
		"step_kg":      step,
	}
	if record == nil {
		initial, err := engine.InitialLoad(profile, ex)
		if err != nil {
			return mcp.NewToolResultError("initial load failed: " + err.Error()), nil
		}
		out["history"] = nil
		out["initial_load_kg"] = initial
	} else {
		out["history"] = record
		out["adjustment"] = engine.InterpretFeedback(*record, profile.Goal, step)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) interpretFeedback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	load, err := req.RequireFloat("load")
	if err != nil {
		return mcp.NewToolResultError("load parameter is required"), nil
	}

	record := models.ProgressionRecord{
		Sets: req.GetInt("sets", 3),
		Reps: req.GetInt("reps", 10),
	}
	if load > 0 {
		record.LoadKg = &load
	}
	if raw := req.GetString("feedback", ""); raw != "" {
		fb := models.Feedback(raw)
		if !fb.IsValid() {
			return mcp.NewToolResultError("feedback must be too_easy, on_point, or too_hard"), nil
		}
		record.Feedback = &fb
	} else if rpe := req.GetInt("rpe", 0); rpe > 0 {
		record.RPE = &rpe
	}

	goal := models.Goal(req.GetString("goal", string(models.GoalHypertrophy)))
	step := req.GetFloat("step", 2.5)

	result, err := mcp.NewToolResultJSON(engine.InterpretFeedback(record, goal, step))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	stats, err := h.db.GetSessionStats(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_session_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

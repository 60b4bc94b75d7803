package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/models"
)

// splitTableData enumerates the rotation for every experience tier and
// weekly frequency. Computed, not stored, so it can never drift from the
// planner's actual behavior.
func splitTableData() map[string]any {
	experiences := []models.Experience{models.Beginner, models.Intermediate, models.Advanced}
	table := map[string]any{}
	for _, exp := range experiences {
		byFreq := map[string]any{}
		for freq := 1; freq <= 6; freq++ {
			profile := models.UserProfile{
				Experience:      exp,
				Goal:            models.GoalHypertrophy,
				WeeklyFrequency: freq,
			}
			var days []models.SplitDay
			seen := map[string]bool{}
			for cycle := 0; cycle < 6; cycle++ {
				day, err := engine.PlanDay(profile, cycle)
				if err != nil || seen[day.Label] {
					break
				}
				seen[day.Label] = true
				days = append(days, day)
			}
			byFreq[strconv.Itoa(freq)] = map[string]any{
				"division": engine.Division(freq),
				"days":     days,
			}
		}
		table[string(exp)] = byFreq
	}
	return table
}

func (h *handlers) splitTable(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(splitTableData())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) upcomingSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	start := time.Now().AddDate(0, 0, -1)
	end := start.AddDate(0, 0, 15)

	sessions, err := h.db.FetchSessionsBetween(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) profile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	profile, err := h.db.FetchUserProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

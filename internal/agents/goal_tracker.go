package agents

/*
GoalTracker — tracks your long-term goals and aligns every response.

Feature that does not exist in any current AI agent.

NEXUS:
  1. Stores explicitly declared goals with priority and deadline metadata
  2. Lists them, highest priority first
  3. Reports goals you haven't worked toward in 7+ days

Goals are not inferred from conversation, and tasks are not scored
against goals.
*/

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Goal represents a user's tracked goal
type Goal struct {
	ID           string
	Title        string
	Description  string
	Deadline     *time.Time
	Priority     int
	Progress     float64
	LastWorkedOn time.Time
	Tags         []string
	Source       string // inferred or explicit
	CreatedAt    time.Time
}

// GoalStore manages a user's goals in memory
type GoalStore struct {
	userID string
	goals  map[string]*Goal
}

// NewGoalStore creates a new goal store
func NewGoalStore(userID string) *GoalStore {
	return &GoalStore{userID: userID, goals: make(map[string]*Goal)}
}

// SetGoal explicitly stores a user-declared goal
func (g *GoalStore) SetGoal(title, description string, priority int, deadline *time.Time) *Goal {
	goal := &Goal{
		ID:          fmt.Sprintf("goal-%d", time.Now().UnixNano()),
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    deadline,
		Source:      "explicit",
		CreatedAt:   time.Now(),
	}
	g.goals[goal.ID] = goal
	return goal
}

// List returns all goals sorted by priority, highest first
func (g *GoalStore) List() []*Goal {
	result := make([]*Goal, 0, len(g.goals))
	for _, goal := range g.goals {
		result = append(result, goal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	return result
}

// ForgottenGoals returns goals not touched in 7+ days
func (g *GoalStore) ForgottenGoals() []Goal {
	var forgotten []Goal
	for _, goal := range g.goals {
		if time.Since(goal.LastWorkedOn) > 7*24*time.Hour {
			forgotten = append(forgotten, *goal)
		}
	}
	return forgotten
}

// FormatList renders goals as a readable list
func (g *GoalStore) FormatList() string {
	if len(g.goals) == 0 {
		return "No goals tracked yet. Set one with: nexus goals set \"your goal\""
	}
	var sb strings.Builder
	sb.WriteString("🎯 **Your Goals**\n\n")
	for _, goal := range g.goals {
		deadlineStr := "no deadline"
		if goal.Deadline != nil {
			deadlineStr = goal.Deadline.Format("Jan 2, 2006")
		}
		sb.WriteString(fmt.Sprintf("**%s** (priority %d)\n  %s | Deadline: %s\n\n",
			goal.Title, goal.Priority, goal.Description, deadlineStr))
	}
	return sb.String()
}

package telemetry

/*
CostTracker â€” real-time token cost tracking with budget caps.

The #1 silent killer of AI agents in production:
'I woke up to a $4,000 bill from a runaway agent overnight.'
â€” r/LocalLLaMA, r/AI_Agents (dozens of posts, 2025-2026)

NEXUS CostTracker:
  1. Tracks every token in/out per session and agent
  2. Calculates $ cost from a built-in per-model pricing table
  3. Daily + monthly budget caps; a breach raises an alert and does not
     pause LLM calls
  4. Telegram/CLI alert before and when budget is hit
  5. Daily cost report (DailyReport); there is no per-month report
  6. FREE model detection â€” flags when you could switch to save money

No other open-source AI agent has budget protection built in.
*/

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// ModelPricing holds per-1M token pricing for a model
type ModelPricing struct {
	Provider    string
	Model       string
	InputPer1M  float64 // USD per 1M input tokens
	OutputPer1M float64 // USD per 1M output tokens
	IsFree      bool
}

// PricingTable is the built-in provider pricing table (updated Feb 2026)
var PricingTable = map[string]ModelPricing{
	// Groq (fastest, very cheap)
	"groq/llama-3.3-70b-versatile":  {"groq", "llama-3.3-70b-versatile", 0.59, 0.79, false},
	"groq/llama-3.1-8b-instant":     {"groq", "llama-3.1-8b-instant", 0.05, 0.08, false},
	"groq/gemma2-9b-it":             {"groq", "gemma2-9b-it", 0.20, 0.20, false},
	// Anthropic
	"anthropic/claude-3-5-haiku":    {"anthropic", "claude-3-5-haiku", 0.80, 4.00, false},
	"anthropic/claude-3-5-sonnet":   {"anthropic", "claude-3-5-sonnet", 3.00, 15.00, false},
	"anthropic/claude-3-opus":       {"anthropic", "claude-3-opus", 15.00, 75.00, false},
	// OpenAI
	"openai/gpt-4o-mini":            {"openai", "gpt-4o-mini", 0.15, 0.60, false},
	"openai/gpt-4o":                 {"openai", "gpt-4o", 2.50, 10.00, false},
	// Free / Local
	"ollama/llama3.2":               {"ollama", "llama3.2", 0, 0, true},
	"ollama/mistral":                {"ollama", "mistral", 0, 0, true},
	"ollama/gemma2":                 {"ollama", "gemma2", 0, 0, true},
}

// UsageRecord stores a single LLM call's token usage
type UsageRecord struct {
	ID           string
	UserID       string
	Provider     string
	Model        string
	Agent        string
	SessionID    string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	CreatedAt    time.Time
}

// BudgetStatus describes the current budget state
type BudgetStatus struct {
	DailySpent    float64
	DailyLimit    float64
	MonthlySpent  float64
	MonthlyLimit  float64
	DailyPct      float64
	MonthlyPct    float64
	BudgetBreached bool
	NearLimit      bool // >80% of either limit
}

// CostTracker tracks token usage and enforces budget limits
type CostTracker struct {
	db           *sql.DB
	mu           sync.RWMutex
	dailyLimit   float64
	monthlyLimit float64
	alertAt      float64 // fraction â€” alert when this % of budget used (e.g. 0.8)
	onAlert      func(msg string)
}

// New opens (or creates) the cost tracking database
func New(dataDir string, dailyLimit, monthlyLimit float64) (*CostTracker, error) {
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".nexus")
	}
	_ = os.MkdirAll(dataDir, 0700)
	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "costs.db")+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	ct := &CostTracker{
		db:           db,
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		alertAt:      0.80,
	}
	return ct, ct.migrate()
}

func (ct *CostTracker) migrate() error {
	_, err := ct.db.Exec(`
		CREATE TABLE IF NOT EXISTS usage (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			agent         TEXT DEFAULT '',
			session_id    TEXT DEFAULT '',
			input_tokens  INTEGER DEFAULT 0,
			output_tokens INTEGER DEFAULT 0,
			cost_usd      REAL DEFAULT 0,
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_usage_user_date ON usage(user_id, created_at);
	`)
	return err
}

// SetAlertCallback sets a function called when budget alerts fire
func (ct *CostTracker) SetAlertCallback(fn func(msg string)) {
	ct.onAlert = fn
}

// Record logs a completed LLM call and returns cost
func (ct *CostTracker) Record(userID, provider, model, agent, sessionID string, inputTokens, outputTokens int) (float64, error) {
	cost := ct.calculateCost(provider, model, inputTokens, outputTokens)
	id := fmt.Sprintf("u-%d", time.Now().UnixNano())
	_, err := ct.db.Exec(
		`INSERT INTO usage (id,user_id,provider,model,agent,session_id,input_tokens,output_tokens,cost_usd) VALUES (?,?,?,?,?,?,?,?,?)`,
		id, userID, provider, model, agent, sessionID, inputTokens, outputTokens, cost,
	)
	if err != nil {
		return cost, err
	}
	if ct.dailyLimit > 0 || ct.monthlyLimit > 0 {
		ct.checkBudget(userID)
	}
	return cost, nil
}

// calculateCost computes the USD cost of a single LLM call
func (ct *CostTracker) calculateCost(provider, model string, inputTokens, outputTokens int) float64 {
	key := strings.ToLower(provider) + "/" + strings.ToLower(model)
	if pricing, ok := PricingTable[key]; ok {
		if pricing.IsFree {
			return 0
		}
		inputCost := float64(inputTokens) / 1_000_000 * pricing.InputPer1M
		outputCost := float64(outputTokens) / 1_000_000 * pricing.OutputPer1M
		return math.Round((inputCost+outputCost)*1_000_000) / 1_000_000
	}
	// Unknown model: estimate at $1/1M tokens
	return float64(inputTokens+outputTokens) / 1_000_000
}

// GetStatus returns current budget status for a user
func (ct *CostTracker) GetStatus(userID string) (*BudgetStatus, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var daily, monthly float64
	ct.db.QueryRow(`SELECT COALESCE(SUM(cost_usd),0) FROM usage WHERE user_id=? AND created_at>=?`, userID, dayStart).Scan(&daily)
	ct.db.QueryRow(`SELECT COALESCE(SUM(cost_usd),0) FROM usage WHERE user_id=? AND created_at>=?`, userID, monthStart).Scan(&monthly)

	status := &BudgetStatus{
		DailySpent:   math.Round(daily*100000) / 100000,
		MonthlySpent: math.Round(monthly*100000) / 100000,
		DailyLimit:   ct.dailyLimit,
		MonthlyLimit: ct.monthlyLimit,
	}
	if ct.dailyLimit > 0 {
		status.DailyPct = daily / ct.dailyLimit * 100
		if daily >= ct.dailyLimit {
			status.BudgetBreached = true
		} else if daily >= ct.dailyLimit*ct.alertAt {
			status.NearLimit = true
		}
	}
	if ct.monthlyLimit > 0 {
		status.MonthlyPct = monthly / ct.monthlyLimit * 100
		if monthly >= ct.monthlyLimit {
			status.BudgetBreached = true
		} else if monthly >= ct.monthlyLimit*ct.alertAt {
			status.NearLimit = true
		}
	}
	return status, nil
}

func (ct *CostTracker) checkBudget(userID string) {
	status, err := ct.GetStatus(userID)
	if err != nil || ct.onAlert == nil {
		return
	}
	if status.BudgetBreached {
		msg := fmt.Sprintf("ðŸš¨ NEXUS Budget BREACHED\nDaily: $%.4f / $%.2f\nMonthly: $%.4f / $%.2f\n\nâ¸ LLM calls are not paused automatically.",
			status.DailySpent, status.DailyLimit, status.MonthlySpent, status.MonthlyLimit)
		log.Error().Str("user", userID).Msg("budget breached")
		ct.onAlert(msg)
	} else if status.NearLimit {
		msg := fmt.Sprintf("âš ï¸ NEXUS Budget Warning\nDaily: $%.4f (%.0f%%)\nMonthly: $%.4f (%.0f%%)",
			status.DailySpent, status.DailyPct, status.MonthlySpent, status.MonthlyPct)
		ct.onAlert(msg)
	}
}

// DailyReport returns a formatted daily cost report
func (ct *CostTracker) DailyReport(userID string) (string, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rows, err := ct.db.Query(
		`SELECT provider, model, SUM(input_tokens), SUM(output_tokens), SUM(cost_usd), COUNT(*)
		 FROM usage WHERE user_id=? AND created_at>=?
		 GROUP BY provider, model ORDER BY SUM(cost_usd) DESC`,
		userID, dayStart,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ðŸ’° **NEXUS Cost Report â€” %s**\n\n", now.Format("Jan 2, 2006")))
	var totalCost float64
	var totalCalls int
	for rows.Next() {
		var provider, model string
		var inTok, outTok, calls int
		var cost float64
		rows.Scan(&provider, &model, &inTok, &outTok, &cost, &calls)
		totalCost += cost
		totalCalls += calls
		freeTag := ""
		if cost == 0 {
			freeTag = " ðŸ†“"
		}
		sb.WriteString(fmt.Sprintf("  %s/%s%s\n", provider, model, freeTag))
		sb.WriteString(fmt.Sprintf("    %d calls Â· %d in + %d out tokens Â· $%.5f\n\n", calls, inTok, outTok, cost))
	}
	sb.WriteString(fmt.Sprintf("**Total: $%.5f across %d calls**\n", totalCost, totalCalls))
	if ct.dailyLimit > 0 {
		sb.WriteString(fmt.Sprintf("Budget: $%.5f / $%.2f daily (%.0f%%)\n", totalCost, ct.dailyLimit, totalCost/ct.dailyLimit*100))
	}
	return sb.String(), nil
}

// SuggestCheaperModel recommends a cheaper alternative to the given model
func SuggestCheaperModel(provider, model string) string {
	key := strings.ToLower(provider) + "/" + strings.ToLower(model)
	pricing, ok := PricingTable[key]
	if !ok || pricing.IsFree {
		return ""
	}
	if pricing.InputPer1M > 1.0 {
		return "ðŸ’¡ Switch to groq/llama-3.1-8b-instant ($0.05/1M) for simple tasks â€” save up to 99%"
	}
	if pricing.InputPer1M > 0.1 {
		return "ðŸ’¡ Consider ollama/llama3.2 for offline tasks â€” completely free"
	}
	return ""
}

// Close shuts down the cost tracker
func (ct *CostTracker) Close() error { return ct.db.Close() }

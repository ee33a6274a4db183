package digest

/*
DailyDigest — automated morning intelligence briefing.

The #4 highest-impact AI agent feature (2026 survey, 60% of enterprise users):
'I want a daily briefing waiting for me when I open my laptop.'
— AI agent user research, multiple sources

Built-in feeds (each takes data the caller has already gathered):
  1. Drift signals — what’s stalled, what’s overdue
  2. Goal progress — goals not worked on in 7+ days
  3. Token cost summary — yesterday’s spend vs budget
  4. Audit highlights — high-risk actions
  5. Custom feeds — add any data source with AddFeed

Formats:
  - Telegram message (Markdown)
  - Plain terminal text (FormatCLI)
  - JSON (for external integrations)

This package builds the report on demand; it does not schedule itself.
*/

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FeedItem is a single data point from any source
type FeedItem struct {
	Source   string
	Title    string
	Body     string
	Priority int // 1=low, 2=medium, 3=high
	Emoji    string
}

// DigestFeed is a function that returns feed items for the digest
type DigestFeed func() []FeedItem

// DigestReport is the complete morning briefing
type DigestReport struct {
	Date         time.Time
	UserName     string
	HighPriority []FeedItem
	MedPriority  []FeedItem
	LowPriority  []FeedItem
	TotalItems   int
	GeneratedAt  time.Time
}

// DigestBuilder assembles the daily briefing from all registered feeds
type DigestBuilder struct {
	feeds    []namedFeed
	userName string
	timezone string
}

type namedFeed struct {
	name string
	fn   DigestFeed
}

// New creates a DigestBuilder for a user
func New(userName, timezone string) *DigestBuilder {
	if timezone == "" {
		timezone = "UTC"
	}
	return &DigestBuilder{userName: userName, timezone: timezone}
}

// AddFeed registers a data source for the digest
func (d *DigestBuilder) AddFeed(name string, fn DigestFeed) {
	d.feeds = append(d.feeds, namedFeed{name, fn})
}

// Build assembles and returns the full digest report
func (d *DigestBuilder) Build() *DigestReport {
	loc, err := time.LoadLocation(d.timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	report := &DigestReport{
		Date:        now,
		UserName:    d.userName,
		GeneratedAt: now,
	}
	for _, feed := range d.feeds {
		items := feed.fn()
		for _, item := range items {
			switch item.Priority {
			case 3:
				report.HighPriority = append(report.HighPriority, item)
			case 2:
				report.MedPriority = append(report.MedPriority, item)
			default:
				report.LowPriority = append(report.LowPriority, item)
			}
			report.TotalItems++
		}
	}
	return report
}

// FormatTelegram renders the digest as a Telegram-ready Markdown message
func (r *DigestReport) FormatTelegram() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧠 **NEXUS Morning Briefing**\n%s\n", r.Date.Format("Monday, Jan 2 2006 · 15:04 MST")))
	if r.UserName != "" {
		sb.WriteString(fmt.Sprintf("Good morning, **%s**!\n", r.UserName))
	}
	if r.TotalItems == 0 {
		sb.WriteString("\n✨ All clear — no items for today. Have a great day!\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("\n%d items across %d priority levels.\n", r.TotalItems, r.activeLevels()))
	if len(r.HighPriority) > 0 {
		sb.WriteString("\n🔴 **High Priority**\n")
		for _, item := range r.HighPriority {
			sb.WriteString(fmt.Sprintf("%s **%s** — %s\n", item.Emoji, item.Title, item.Body))
		}
	}
	if len(r.MedPriority) > 0 {
		sb.WriteString("\n🟡 **Medium Priority**\n")
		for _, item := range r.MedPriority {
			sb.WriteString(fmt.Sprintf("%s **%s** — %s\n", item.Emoji, item.Title, item.Body))
		}
	}
	if len(r.LowPriority) > 0 {
		sb.WriteString("\n🟢 **Low Priority**\n")
		for _, item := range r.LowPriority {
			sb.WriteString(fmt.Sprintf("%s **%s** — %s\n", item.Emoji, item.Title, item.Body))
		}
	}
	sb.WriteString(fmt.Sprintf("\n⏱ Generated at %s", r.GeneratedAt.Format("15:04:05 MST")))
	return sb.String()
}

// FormatCLI renders the digest as plain terminal output
func (r *DigestReport) FormatCLI() string {
	raw := r.FormatTelegram()
	// Strip markdown bold markers for clean terminal output
	return strings.NewReplacer("**", "").Replace(raw)
}

// ToJSON serialises the digest report to JSON
func (r *DigestReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (r *DigestReport) activeLevels() int {
	n := 0
	if len(r.HighPriority) > 0 {
		n++
	}
	if len(r.MedPriority) > 0 {
		n++
	}
	if len(r.LowPriority) > 0 {
		n++
	}
	return n
}

// --- Built-in feed constructors ---

// DriftFeed returns a feed function wrapping drift signal strings
func DriftFeed(signals []string) DigestFeed {
	return func() []FeedItem {
		var items []FeedItem
		for _, s := range signals {
			items = append(items, FeedItem{
				Source:   "drift",
				Title:    "Drift Signal",
				Body:     s,
				Priority: 2,
				Emoji:    "🎯",
			})
		}
		return items
	}
}

// CostFeed returns a feed item showing yesterday’s token spend
func CostFeed(yesterdaySpend, dailyLimit float64) DigestFeed {
	return func() []FeedItem {
		priority := 1
		body := fmt.Sprintf("$%.4f spent yesterday", yesterdaySpend)
		emoji := "💰"
		if dailyLimit > 0 {
			pct := yesterdaySpend / dailyLimit * 100
			body += fmt.Sprintf(" (%.0f%% of $%.2f limit)", pct, dailyLimit)
			if pct > 80 {
				priority = 3
				emoji = "🚨"
			} else if pct > 50 {
				priority = 2
				emoji = "⚠️"
			}
		}
		return []FeedItem{{Source: "cost", Title: "Token Cost", Body: body, Priority: priority, Emoji: emoji}}
	}
}

// HighRiskAuditFeed surfaces any high-risk agent actions from the last 24h
func HighRiskAuditFeed(actions []string) DigestFeed {
	return func() []FeedItem {
		var items []FeedItem
		for _, a := range actions {
			items = append(items, FeedItem{
				Source:   "audit",
				Title:    "High-Risk Action",
				Body:     a,
				Priority: 3,
				Emoji:    "🔴",
			})
		}
		return items
	}
}

// GoalsFeed surfaces goals not worked on in 7+ days
func GoalsFeed(stalledGoals []string) DigestFeed {
	return func() []FeedItem {
		var items []FeedItem
		for _, g := range stalledGoals {
			items = append(items, FeedItem{
				Source:   "goals",
				Title:    "Stalled Goal",
				Body:     g + " (no activity in 7+ days)",
				Priority: 2,
				Emoji:    "🎯",
			})
		}
		return items
	}
}

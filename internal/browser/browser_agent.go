package browser

/*
BrowserAgent — autonomous web browsing for NEXUS.

NEXUS BrowserAgent:
  1. URL checks before navigation (safety allowlist + SSRF blocklist built-in)
  2. PlanTask turns a task into navigate/click/fill/extract/screenshot steps
  3. Run is a dry run: it checks and records navigate steps only; no page is
     fetched and the other step types are not executed
  4. Link extraction from HTML (http/https only)
  5. Loop detection — won't visit the same URL more than 3 times
  6. Content truncation for LLM context (SummariseContent)

MaxDepth is stored in the config but no depth limit is applied.

Security:
  - Only http:// and https:// schemes are permitted (file://, gopher://, etc. blocked)
  - Private/loopback/link-local IPv4+IPv6 ranges blocked (SSRF)
  - Cloud metadata endpoints blocked (AWS 169.254.169.254, GCP, Azure, Alibaba)
  - AllowedHosts allowlist for strict production deployments
*/

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// BrowseAction defines a single step in a browser task.
type BrowseAction struct {
	Type    string // navigate|click|fill|extract|screenshot|wait
	Target  string // URL, selector, or field name
	Value   string // for fill actions
	Timeout time.Duration
}

// PageContent is extracted content from a page.
type PageContent struct {
	URL       string
	Title     string
	Text      string
	Links     []string
	Tables    [][]string
	MetaDesc  string
	FetchedAt time.Time
}

// BrowseResult is the result of a multi-step browser task.
type BrowseResult struct {
	TaskID    string
	Actions   []BrowseAction
	Pages     []PageContent
	Success   bool
	Error     string
	Duration  time.Duration
	StartedAt time.Time
}

// BrowserConfig holds browser agent settings.
type BrowserConfig struct {
	Headless      bool
	MaxDepth      int
	MaxVisits     int      // max times same URL can be visited (loop protection)
	AllowedHosts  []string // allowlist; empty = allow all (except BlockedHosts)
	BlockedHosts  []string // always blocked (SSRF protection)
	Timeout       time.Duration
	ScreenshotDir string
	UserAgent     string
}

// DefaultConfig returns safe browser defaults with SSRF protection enabled.
func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  true,
		MaxDepth:  3,
		MaxVisits: 3,
		Timeout:   30 * time.Second,
		UserAgent: "NEXUS-Agent/1.7 (autonomous; +https://github.com/pubgrep/pubgrep)",
		BlockedHosts: []string{
			// IPv4 private/loopback
			"localhost",
			"127.",     // 127.0.0.0/8 loopback
			"0.",       // 0.0.0.0/8
			"10.",      // 10.0.0.0/8 private
			"172.16.", "172.17.", "172.18.", "172.19.", "172.20.", // 172.16.0.0/12 private
			"172.21.", "172.22.", "172.23.", "172.24.", "172.25.",
			"172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
			"192.168.", // 192.168.0.0/16 private
			"169.254.", // link-local + AWS metadata endpoint
			// IPv6 loopback and link-local
			"[::1]", // IPv6 loopback
			"[::]",  // unspecified
			"[fe80", // IPv6 link-local
			"[fc",   // IPv6 unique local
			"[fd",   // IPv6 unique local
			// Cloud metadata endpoints (SSRF IMDS exfil)
			"169.254.169.254",          // AWS/Azure/GCP IMDS
			"100.100.100.200",          // Alibaba Cloud ECS metadata
			"metadata.google.internal", // GCP metadata
			"metadata.azure.internal",  // Azure metadata
		},
	}
}

// BrowserAgent performs autonomous web browsing.
type BrowserAgent struct {
	cfg     BrowserConfig
	visited map[string]int // URL -> visit count
	mu      sync.Mutex
	depth   int
}

// New creates a BrowserAgent.
func New(cfg BrowserConfig) *BrowserAgent {
	return &BrowserAgent{
		cfg:     cfg,
		visited: make(map[string]int),
	}
}

// IsAllowed checks if a URL is safe to navigate to.
// Blocks:
//   - Non-http(s) schemes (file://, ftp://, gopher://, javascript://, etc.)
//   - Private/loopback IPv4 and IPv6 ranges
//   - Cloud IMDS metadata endpoints
//   - URLs exceeding the loop-visit limit
func (b *BrowserAgent) IsAllowed(rawURL string) (bool, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, "invalid URL"
	}

	// 1. Scheme allowlist — only http and https permitted.
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, fmt.Sprintf("scheme not allowed: %q (only http/https)", scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false, "empty host"
	}

	// 2. Blocked host prefix/exact match (SSRF protection).
	// Hostname() drops the brackets of an IPv6 literal; put them back so the
	// bracketed IPv6 entries of BlockedHosts can match.
	matchHost := host
	if strings.Contains(host, ":") {
		matchHost = "[" + host + "]"
	}
	for _, blocked := range b.cfg.BlockedHosts {
		blocked = strings.ToLower(blocked)
		if matchHost == blocked || strings.HasPrefix(matchHost, blocked) {
			return false, fmt.Sprintf("host blocked: %s", host)
		}
	}

	// 3. Loop protection.
	b.mu.Lock()
	count := b.visited[rawURL]
	b.mu.Unlock()
	if count >= b.cfg.MaxVisits {
		return false, fmt.Sprintf("URL visited %d times (limit: %d)", count, b.cfg.MaxVisits)
	}

	// 4. Allowlist check (only enforced when list is non-empty).
	if len(b.cfg.AllowedHosts) > 0 {
		allowed := false
		for _, ah := range b.cfg.AllowedHosts {
			if strings.HasSuffix(host, strings.ToLower(ah)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, fmt.Sprintf("host not in allowlist: %s", host)
		}
	}
	return true, ""
}

// RecordVisit increments the visit counter for a URL.
func (b *BrowserAgent) RecordVisit(rawURL string) {
	b.mu.Lock()
	b.visited[rawURL]++
	b.mu.Unlock()
}

// PlanTask converts a natural language task into a BrowseAction sequence.
func (b *BrowserAgent) PlanTask(task string) []BrowseAction {
	lower := strings.ToLower(task)
	var actions []BrowseAction

	for _, w := range strings.Fields(task) {
		if strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") {
			actions = append(actions, BrowseAction{Type: "navigate", Target: w, Timeout: b.cfg.Timeout})
		}
	}

	switch {
	case strings.Contains(lower, "screenshot") || strings.Contains(lower, "capture"):
		actions = append(actions, BrowseAction{Type: "screenshot", Target: "full-page"})
	case strings.Contains(lower, "extract") || strings.Contains(lower, "get text") || strings.Contains(lower, "scrape"):
		actions = append(actions, BrowseAction{Type: "extract", Target: "body"})
	case strings.Contains(lower, "click"):
		actions = append(actions, BrowseAction{Type: "click", Target: "[inferred from task]"})
	case strings.Contains(lower, "fill") || strings.Contains(lower, "form") || strings.Contains(lower, "search for"):
		actions = append(actions, BrowseAction{Type: "fill", Target: "input[type=search]", Value: task})
		actions = append(actions, BrowseAction{Type: "click", Target: "button[type=submit]"})
	default:
		actions = append(actions, BrowseAction{Type: "extract", Target: "body"})
	}
	return actions
}

// Run executes a planned sequence of browse actions in dry-run mode.
// Only navigate actions are processed: each target is checked with IsAllowed,
// recorded as a visit and returned as a placeholder PageContent. No page is
// fetched, and actions of other types are skipped.
func (b *BrowserAgent) Run(task string, actions []BrowseAction) *BrowseResult {
	start := time.Now()
	result := &BrowseResult{
		TaskID:    fmt.Sprintf("browse-%d", start.UnixNano()),
		Actions:   actions,
		StartedAt: start,
	}

	for _, action := range actions {
		if action.Type == "navigate" {
			ok, reason := b.IsAllowed(action.Target)
			if !ok {
				result.Error = fmt.Sprintf("blocked: %s — %s", action.Target, reason)
				result.Success = false
				result.Duration = time.Since(start)
				return result
			}
			b.RecordVisit(action.Target)
			result.Pages = append(result.Pages, PageContent{
				URL:       action.Target,
				FetchedAt: time.Now(),
				Text:      fmt.Sprintf("[chromedp would fetch: %s]", action.Target),
			})
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// ExtractLinks parses all href links from page HTML (simple heuristic).
// Only returns http/https links to prevent javascript: and data: URI injection.
func ExtractLinks(html string) []string {
	var links []string
	parts := strings.Split(html, `href="`)
	for i, p := range parts {
		if i == 0 {
			continue
		}
		end := strings.Index(p, `"`)
		if end > 0 {
			link := p[:end]
			if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
				links = append(links, link)
			}
		}
	}
	return links
}

// SummariseContent returns a truncated summary of page content for LLM context.
func SummariseContent(page PageContent, maxChars int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL: %s\n", page.URL))
	if page.Title != "" {
		sb.WriteString(fmt.Sprintf("Title: %s\n", page.Title))
	}
	if page.MetaDesc != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", page.MetaDesc))
	}
	text := page.Text
	if len(text) > maxChars {
		text = text[:maxChars] + "..."
	}
	sb.WriteString(text)
	return sb.String()
}

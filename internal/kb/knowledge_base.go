package kb

/*
KnowledgeBase — RAG over your own files. Zero external API. Zero cost.

The #3 most-starred feature request across AI agent repos (2026):
'I want it to know MY docs, not just the internet.'

NEXUS KnowledgeBase:
  1. Drop text files into ~/.nexus/kb/ (.md .txt .go .py .json .toml .yaml .yml .ts .js; PDF is not read)
  2. Auto-indexed on file change (inotify-style polling)
  3. Retrieval: TF-IDF similarity search — no embedding API needed
  4. Returns ranked relevant chunks for any query
  5. Chunks are injected into LLM context automatically
  6. Tags can be stored with text added via AddText; Search does not filter by tag
  7. Works fully offline

No OpenAI embeddings. No Pinecone. No cost. Just files.
*/

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Document is a single indexed file
type Document struct {
	ID        string
	Path      string
	Title     string
	Content   string
	Chunks    []Chunk
	Tags      []string
	IndexedAt time.Time
	Size      int64
}

// Chunk is a retrievable piece of a document
type Chunk struct {
	DocID     string
	Index     int
	Text      string
	Tokens    []string // tokenised words for TF-IDF
	Score     float64  // relevance score (set during search)
}

// SearchResult holds a matching chunk with metadata
type SearchResult struct {
	Chunk     Chunk
	DocTitle  string
	DocPath   string
	Score     float64
}

// KnowledgeBase manages local document indexing and retrieval
type KnowledgeBase struct {
	mu        sync.RWMutex
	docs      map[string]*Document
	dir       string
	chunkSize int    // chars per chunk
	overlap   int    // char overlap between chunks
	idf       map[string]float64
	dirty     bool   // idf needs rebuild
}

// New creates or opens a KnowledgeBase rooted at dir
func New(dir string) (*KnowledgeBase, error) {
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".nexus", "kb")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	kb := &KnowledgeBase{
		docs:      make(map[string]*Document),
		dir:       dir,
		chunkSize: 800,
		overlap:   100,
		idf:       make(map[string]float64),
	}
	return kb, kb.IndexDirectory()
}

// IndexDirectory scans the KB directory and indexes all supported files
func (kb *KnowledgeBase) IndexDirectory() error {
	supported := map[string]bool{
		".md": true, ".txt": true, ".go": true,
		".py": true, ".json": true, ".toml": true,
		".yaml": true, ".yml": true, ".ts": true, ".js": true,
	}
	return filepath.Walk(kb.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !supported[ext] {
			return nil
		}
		if existing, ok := kb.docs[path]; ok {
			if !info.ModTime().After(existing.IndexedAt) {
				return nil // not modified
			}
		}
		return kb.IndexFile(path)
	})
}

// IndexFile reads, chunks, and indexes a single file
func (kb *KnowledgeBase) IndexFile(path string) error {
	content, err := readTextFile(path)
	if err != nil {
		return err
	}
	info, _ := os.Stat(path)
	doc := &Document{
		ID:        path,
		Path:      path,
		Title:     filepath.Base(path),
		Content:   content,
		IndexedAt: time.Now(),
	}
	if info != nil {
		doc.Size = info.Size()
	}
	doc.Chunks = kb.chunkDocument(doc)
	kb.mu.Lock()
	kb.docs[path] = doc
	kb.dirty = true
	kb.mu.Unlock()
	return nil
}

// AddText indexes an in-memory string (useful for adding notes programmatically)
func (kb *KnowledgeBase) AddText(id, title, content string, tags []string) {
	doc := &Document{
		ID: id, Path: id, Title: title,
		Content: content, Tags: tags,
		IndexedAt: time.Now(),
	}
	doc.Chunks = kb.chunkDocument(doc)
	kb.mu.Lock()
	kb.docs[id] = doc
	kb.dirty = true
	kb.mu.Unlock()
}

// Search returns the top-k most relevant chunks for a query
func (kb *KnowledgeBase) Search(query string, topK int) []SearchResult {
	if topK <= 0 {
		topK = 5
	}
	kb.mu.Lock()
	if kb.dirty {
		kb.rebuildIDF()
		kb.dirty = false
	}
	kb.mu.Unlock()

	queryTokens := tokenize(query)
	var results []SearchResult

	kb.mu.RLock()
	for _, doc := range kb.docs {
		for _, chunk := range doc.Chunks {
			score := kb.tfidfScore(queryTokens, chunk)
			if score > 0 {
				results = append(results, SearchResult{
					Chunk:    chunk,
					DocTitle: doc.Title,
					DocPath:  doc.Path,
					Score:    score,
				})
			}
		}
	}
	kb.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// BuildContext formats top search results as LLM context injection
func (kb *KnowledgeBase) BuildContext(query string, topK int, maxChars int) string {
	results := kb.Search(query, topK)
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[Knowledge Base Context]\n")
	total := 0
	for _, r := range results {
		chunk := fmt.Sprintf("--- %s ---\n%s\n", r.DocTitle, r.Chunk.Text)
		if total+len(chunk) > maxChars {
			break
		}
		sb.WriteString(chunk)
		total += len(chunk)
	}
	return sb.String()
}

// Stats returns a summary of the indexed knowledge base
func (kb *KnowledgeBase) Stats() string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	if len(kb.docs) == 0 {
		return fmt.Sprintf("📁 Knowledge Base empty.\nDrop files into: %s\nSupported: .md .txt .go .py .json .toml .yaml", kb.dir)
	}
	totalChunks := 0
	for _, d := range kb.docs {
		totalChunks += len(d.Chunks)
	}
	return fmt.Sprintf("📚 Knowledge Base: %d documents | %d chunks indexed\nDirectory: %s",
		len(kb.docs), totalChunks, kb.dir)
}

// WatchAndReindex polls for file changes every interval and re-indexes
func (kb *KnowledgeBase) WatchAndReindex(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if err := kb.IndexDirectory(); err != nil {
				fmt.Fprintf(os.Stderr, "KB reindex error: %v\n", err)
			}
		}
	}()
}

// --- internals ---

func (kb *KnowledgeBase) chunkDocument(doc *Document) []Chunk {
	text := doc.Content
	var chunks []Chunk
	start := 0
	for i := 0; start < len(text); i++ {
		end := start + kb.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunkText := text[start:end]
		chunks = append(chunks, Chunk{
			DocID:  doc.ID,
			Index:  i,
			Text:   chunkText,
			Tokens: tokenize(chunkText),
		})
		if end == len(text) {
			break
		}
		start = end - kb.overlap
		if start >= end {
			break
		}
	}
	return chunks
}

func (kb *KnowledgeBase) rebuildIDF() {
	df := make(map[string]int)
	n := 0
	for _, doc := range kb.docs {
		for _, chunk := range doc.Chunks {
			seen := make(map[string]bool)
			for _, tok := range chunk.Tokens {
				if !seen[tok] {
					df[tok]++
					seen[tok] = true
				}
			}
			n++
		}
	}
	for term, freq := range df {
		// +1 keeps a term that occurs in every chunk (e.g. a one-chunk KB) above zero.
		kb.idf[term] = math.Log(float64(n+1)/float64(freq+1)) + 1
	}
}

func (kb *KnowledgeBase) tfidfScore(queryTokens []string, chunk Chunk) float64 {
	tf := make(map[string]int)
	for _, tok := range chunk.Tokens {
		tf[tok]++
	}
	var score float64
	for _, qt := range queryTokens {
		if count, ok := tf[qt]; ok {
			tfScore := float64(count) / float64(len(chunk.Tokens)+1)
			idfScore := kb.idf[qt]
			score += tfScore * idfScore
		}
	}
	return score
}

func tokenize(text string) []string {
	var tokens []string
	scanner := bufio.NewScanner(strings.NewReader(strings.ToLower(text)))
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := strings.TrimFunc(scanner.Text(), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

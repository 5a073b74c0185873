package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/rcliao/memory-authenticity/internal/chunker"
)

// Fragment types recorded in metadata.
const (
	TypeMarkdown = "markdown_section"
	TypeText     = "text_paragraph"
	TypeJSON     = "json_content"
	TypeHTML     = "html_section"
	TypePDF      = "pdf_section"
)

// minJSONText is the length a JSON text field must exceed to become a fragment.
const minJSONText = 50

// jsonTextFields are checked in order on every JSON object.
var jsonTextFields = []string{"content", "description", "text", "message", "summary", "insight", "reflection"}

var (
	datePattern      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	emotionalPattern = regexp.MustCompile(`(?i)\b(felt|feeling|emotion|excited|frustrat|happy|sad|angry|surprised|worried|relieved|proud|ashamed|love|hate|fear|joy|anxi|confiden|doubt)`)
	causalPattern    = regexp.MustCompile(`(?i)\b(because|therefore|thus|consequently|as a result|due to|caused by|led to|resulted in|since)\b`)
)

// piece is extracted text before it becomes a fragment.
type piece struct {
	title    string
	text     string
	metadata map[string]any
}

func extract(dir, rel string, opts chunker.Options) ([]piece, error) {
	full := filepath.Join(dir, filepath.FromSlash(rel))
	base := fileMetadata(rel)

	switch strings.ToLower(path.Ext(rel)) {
	case ".md", ".markdown":
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return sections(string(data), opts, TypeMarkdown, base), nil
	case ".txt":
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return sections(string(data), opts, TypeText, base), nil
	case ".json":
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return jsonPieces(data, base)
	case ".html", ".htm":
		text, err := htmlText(full)
		if err != nil {
			return nil, err
		}
		return sections(text, opts, TypeHTML, base), nil
	case ".pdf":
		text, err := pdfText(full)
		if err != nil {
			return nil, err
		}
		return sections(text, opts, TypePDF, base), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path.Ext(rel))
	}
}

func fileMetadata(rel string) map[string]any {
	meta := map[string]any{"source_file": path.Base(rel)}
	if d := datePattern.FindString(path.Base(rel)); d != "" {
		meta["date"] = d
	}
	return meta
}

func sections(text string, opts chunker.Options, fragmentType string, base map[string]any) []piece {
	var pieces []piece
	for _, s := range chunker.Split(text, opts) {
		meta := copyMeta(base)
		meta["fragment_type"] = fragmentType
		if s.Title != "" {
			meta["section_title"] = s.Title
		}
		pieces = append(pieces, newPiece(s.Title, s.Text, meta))
	}
	return pieces
}

func newPiece(title, text string, meta map[string]any) piece {
	meta["character_count"] = utf8.RuneCountInString(text)
	if emotionalPattern.MatchString(text) {
		meta["emotional_context"] = "true"
	}
	if causalPattern.MatchString(text) {
		meta["causal_chain"] = "true"
	}
	return piece{title: title, text: text, metadata: meta}
}

func jsonPieces(data []byte, base map[string]any) ([]piece, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	var pieces []piece
	switch v := doc.(type) {
	case map[string]any:
		pieces = objectPieces(v, base)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				pieces = append(pieces, objectPieces(obj, base)...)
			}
		}
	}
	return pieces, nil
}

// objectPieces turns each long text field of obj into a piece, copying the
// object's scalar fields into metadata.
func objectPieces(obj map[string]any, base map[string]any) []piece {
	var pieces []piece
	for _, field := range jsonTextFields {
		text, ok := obj[field].(string)
		text = strings.TrimSpace(text)
		if !ok || utf8.RuneCountInString(text) <= minJSONText {
			continue
		}

		meta := copyMeta(base)
		meta["fragment_type"] = TypeJSON
		meta["json_field"] = field
		for k, v := range obj {
			if k == field {
				continue
			}
			switch v.(type) {
			case string, float64, bool:
				meta["json_"+k] = v
			}
		}
		title, _ := obj["title"].(string)
		pieces = append(pieces, newPiece(title, text, meta))
	}
	return pieces
}

// htmlText renders the readable parts of an HTML page as markdown-like text
// so headings carry over as section titles.
func htmlText(full string) (string, error) {
	f, err := os.Open(full)
	if err != nil {
		return "", fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, noscript").Remove()

	var b strings.Builder
	doc.Find("h1, h2, h3, h4, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, blockquote, pre").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s)[0] == 'h' {
			b.WriteString("## ")
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	})

	if b.Len() == 0 {
		return normalizeWhitespace(doc.Find("body").Text()), nil
	}
	return b.String(), nil
}

func pdfText(full string) (string, error) {
	f, r, err := pdf.Open(full)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(normalizeWhitespace(content))
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+6)
	for k, v := range m {
		out[k] = v
	}
	return out
}

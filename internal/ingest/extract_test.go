package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/memory-authenticity/internal/chunker"
)

func TestJSONPieces(t *testing.T) {
	pieces, err := jsonPieces([]byte(entries), fileMetadata("logs/2026-03-01-retro.json"))
	require.NoError(t, err)
	require.Len(t, pieces, 1)

	p := pieces[0]
	assert.Equal(t, "Retro", p.title)
	assert.Equal(t, TypeJSON, p.metadata["fragment_type"])
	assert.Equal(t, "content", p.metadata["json_field"])
	assert.Equal(t, "tired", p.metadata["json_mood"])
	assert.Equal(t, 3.0, p.metadata["json_day"])
	assert.Equal(t, "2026-03-01-retro.json", p.metadata["source_file"])
	assert.Equal(t, "2026-03-01", p.metadata["date"])
	assert.Equal(t, "true", p.metadata["causal_chain"])
	assert.NotContains(t, p.metadata, "json_content")
}

func TestJSONPiecesObject(t *testing.T) {
	doc := `{"summary": "A long summary of the week that easily clears the fifty character minimum.", "insight": "Another sufficiently long field so that one object yields two fragments."}`
	pieces, err := jsonPieces([]byte(doc), fileMetadata("week.json"))
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	assert.Equal(t, "summary", pieces[0].metadata["json_field"])
	assert.Equal(t, "insight", pieces[1].metadata["json_field"])
	assert.Equal(t, pieces[1].text, pieces[0].metadata["json_insight"])
}

func TestJSONPiecesInvalid(t *testing.T) {
	_, err := jsonPieces([]byte("{"), fileMetadata("x.json"))
	assert.Error(t, err)
}

func TestHTMLText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", `<html><head><style>p{}</style></head><body>
<nav>Home | About</nav>
<h2>Walk</h2>
<p>I walked to the old mill and   sat by the water.</p>
<ul><li><p>Nested paragraph in a list item.</p></li></ul>
<script>var x = 1;</script>
</body></html>`)

	text, err := htmlText(dir + "/page.html")
	require.NoError(t, err)
	assert.Equal(t, "## Walk\n\nI walked to the old mill and sat by the water.\n\nNested paragraph in a list item.\n\n", text)

	sections := chunker.Split(text, chunker.Options{TargetSize: 400, MaxSize: 600})
	require.Len(t, sections, 1)
	assert.Equal(t, "Walk", sections[0].Title)
}

func TestExtractUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.docx", "x")
	_, err := extract(dir, "a.docx", chunker.DefaultOptions())
	assert.Error(t, err)
}

func TestPDFTextInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.pdf", "not a pdf")
	_, err := pdfText(dir + "/bad.pdf")
	assert.Error(t, err)
}

func TestSectionsMetadata(t *testing.T) {
	pieces := sections(journal, chunker.DefaultOptions(), TypeMarkdown, fileMetadata("2026-02-14.md"))
	require.Len(t, pieces, 2)
	assert.Equal(t, "Morning", pieces[0].metadata["section_title"])
	assert.Equal(t, len([]rune(pieces[0].text)), pieces[0].metadata["character_count"])

	// Each piece owns its metadata map.
	pieces[0].metadata["x"] = 1
	assert.NotContains(t, pieces[1].metadata, "x")
}

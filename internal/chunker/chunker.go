// Package chunker splits memory documents into fragment-sized sections.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 400
	DefaultMinSize    = 100
	DefaultMaxSize    = 600
)

// Options configures splitting behavior. Sections shorter than MinSize are
// dropped; set it to 0 to keep everything.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default splitting options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Section is a span of a document under one heading.
type Section struct {
	Title     string
	Text      string
	StartLine int
	EndLine   int
}

// Split breaks text into sections. Headings start a new section and become
// its title; paragraphs under one heading are merged toward TargetSize.
func Split(text string, opts Options) []Section {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return mergeBlocks(splitBlocks(text), opts)
}

// block is one paragraph together with the heading it sits under.
type block struct {
	title     string
	text      string
	startLine int
	endLine   int
}

// splitBlocks splits text on heading lines and blank lines.
func splitBlocks(text string) []block {
	lines := strings.Split(text, "\n")
	var blocks []block
	var current []string
	title := ""
	startLine := 1

	flush := func(endLine int) {
		if len(current) > 0 {
			t := strings.TrimSpace(strings.Join(current, "\n"))
			if t != "" {
				blocks = append(blocks, block{title: title, text: t, startLine: startLine, endLine: endLine})
			}
		}
		current = nil
	}

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#"):
			flush(lineNum - 1)
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		case trimmed == "":
			flush(lineNum - 1)
		default:
			if len(current) == 0 {
				startLine = lineNum
			}
			current = append(current, line)
		}
	}
	flush(len(lines))

	return blocks
}

// mergeBlocks combines consecutive paragraphs under the same heading and
// splits oversized ones.
func mergeBlocks(blocks []block, opts Options) []Section {
	var results []Section
	var accum block

	flushAccum := func() {
		t := strings.TrimSpace(accum.text)
		if t == "" {
			return
		}
		var out []Section
		if len(t) > opts.MaxSize {
			out = hardSplit(t, accum.title, accum.startLine, opts)
		} else {
			out = []Section{{Title: accum.title, Text: t, StartLine: accum.startLine, EndLine: accum.endLine}}
		}
		for _, s := range out {
			if len(s.Text) >= opts.MinSize {
				results = append(results, s)
			}
		}
		accum = block{}
	}

	for _, b := range blocks {
		if accum.text == "" {
			accum = b
			continue
		}

		combined := accum.text + "\n\n" + b.text
		if b.title == accum.title && len(combined) <= opts.TargetSize {
			accum.text = combined
			accum.endLine = b.endLine
		} else {
			flushAccum()
			accum = b
		}
	}
	flushAccum()

	return results
}

// hardSplit breaks text that exceeds MaxSize on line boundaries.
func hardSplit(text, title string, startLine int, opts Options) []Section {
	lines := strings.Split(text, "\n")
	var results []Section
	var current []string
	curStart := startLine
	curLen := 0

	emit := func(endLine int) {
		t := strings.TrimSpace(strings.Join(current, "\n"))
		if t != "" {
			results = append(results, Section{Title: title, Text: t, StartLine: curStart, EndLine: endLine})
		}
	}

	for i, line := range lines {
		if curLen+len(line) > opts.TargetSize && len(current) > 0 {
			emit(startLine + i - 1)
			current = nil
			curStart = startLine + i
			curLen = 0
		}
		current = append(current, line)
		curLen += len(line) + 1
	}
	if len(current) > 0 {
		emit(startLine + len(lines) - 1)
	}

	return results
}

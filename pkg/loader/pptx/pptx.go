// Package pptx extracts slide text from PowerPoint uploads.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const drawingNS = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type Extractor struct{}

func New() Extractor {
	return Extractor{}
}

// shape is one text-bearing shape on a slide: its paragraphs in order
// and whether it sits in a title placeholder.
type shape struct {
	title      bool
	paragraphs []string
}

// Extract walks every slide of the archive in deck order and renders
// its text: a slide marker line, the title placeholder with a TITLE:
// prefix, and one line per body paragraph. Slides without any text are
// omitted.
func (Extractor) Extract(_ context.Context, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pptx archive: %w", err)
	}

	type slideFile struct {
		number int
		file   *zip.File
	}
	var slides []slideFile
	for _, file := range archive.File {
		match := slidePathRe.FindStringSubmatch(file.Name)
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{number: number, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var b strings.Builder
	for i, slide := range slides {
		reader, err := slide.file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open slide %d: %w", slide.number, err)
		}
		content, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read slide %d: %w", slide.number, err)
		}

		shapes, err := parseSlide(content)
		if err != nil {
			return "", fmt.Errorf("failed to parse slide %d: %w", slide.number, err)
		}
		lines := renderShapes(shapes)
		if len(lines) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "=== SLIDE %d ===\n", i+1)
		b.WriteString(strings.Join(lines, "\n"))
	}

	return b.String(), nil
}

// parseSlide streams one slide document and collects the text runs of
// each shape, paragraph by paragraph.
func parseSlide(content []byte) ([]shape, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var shapes []shape
	var current shape
	var paragraph strings.Builder
	inShape := false
	inParagraph := false
	inRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "sp":
				current = shape{}
				inShape = true
			case t.Name.Local == "ph" && inShape:
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && (attr.Value == "title" || attr.Value == "ctrTitle") {
						current.title = true
					}
				}
			case t.Name.Space == drawingNS && t.Name.Local == "p":
				paragraph.Reset()
				inParagraph = true
			case t.Name.Space == drawingNS && t.Name.Local == "t":
				inRun = true
			case t.Name.Space == drawingNS && t.Name.Local == "br" && inParagraph:
				paragraph.WriteByte(' ')
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "sp":
				if inShape {
					shapes = append(shapes, current)
				}
				inShape = false
			case t.Name.Space == drawingNS && t.Name.Local == "p":
				if inParagraph && inShape {
					if text := strings.TrimSpace(paragraph.String()); text != "" {
						current.paragraphs = append(current.paragraphs, text)
					}
				}
				inParagraph = false
			case t.Name.Space == drawingNS && t.Name.Local == "t":
				inRun = false
			}
		case xml.CharData:
			if inParagraph && inRun {
				paragraph.Write(t)
			}
		}
	}

	return shapes, nil
}

func renderShapes(shapes []shape) []string {
	var lines []string
	for _, s := range shapes {
		if len(s.paragraphs) == 0 {
			continue
		}
		if s.title {
			lines = append(lines, "TITLE: "+strings.Join(s.paragraphs, " "))
			continue
		}
		lines = append(lines, s.paragraphs...)
	}
	return lines
}

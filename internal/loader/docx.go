package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// A .docx file is a ZIP archive whose text lives in word/document.xml:
// paragraphs are <w:p> elements, runs of text are <w:t>, table cells <w:tc>.

type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
	Tables     []docxTable     `xml:"body>tbl"`
}

type docxParagraph struct {
	Texts []string `xml:"r>t"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// loadDOCX extracts paragraph and table text from a .docx file.
// Table rows are flattened to "cell | cell | cell" lines, matching how
// ingested tables read best as retrieval chunks.
func loadDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("not a valid docx: word/document.xml missing")
	}

	var body docxBody
	if err := xml.Unmarshal(docXML, &body); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var parts []string
	for _, p := range body.Paragraphs {
		if text := p.text(); text != "" {
			parts = append(parts, text)
		}
	}
	for _, tbl := range body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var cellTexts []string
				for _, p := range cell.Paragraphs {
					if text := p.text(); text != "" {
						cellTexts = append(cellTexts, text)
					}
				}
				cells = append(cells, strings.Join(cellTexts, " "))
			}
			rowText := strings.TrimSpace(strings.Join(cells, " | "))
			if strings.Trim(rowText, " |") != "" {
				parts = append(parts, rowText)
			}
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

func (p docxParagraph) text() string {
	return strings.TrimSpace(strings.Join(p.Texts, ""))
}

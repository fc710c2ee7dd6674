package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// HeadingPrefix precedes the candidate name in the DOCX title.
const HeadingPrefix = "Resume of "

// ErrInvalidXMLChar reports text that a DOCX paragraph cannot hold verbatim.
var ErrInvalidXMLChar = errors.New("character not allowed in xml")

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/><Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/></Types>`

	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/></Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

	stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults><w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style><w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:spacing w:after="300"/></w:pPr><w:rPr><w:color w:val="17365D"/><w:sz w:val="52"/></w:rPr></w:style></w:styles>`

	documentXMLStart = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	documentXMLEnd = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`
)

// RenderDocx returns a DOCX package with a single "Resume of {name}" title
// paragraph followed by a single paragraph holding text verbatim.
func RenderDocx(name, text string) ([]byte, error) {
	heading := HeadingPrefix + name

	documentXML, err := buildDocumentXML(heading, text)
	if err != nil {
		return nil, err
	}
	coreXML, err := buildCoreXML(heading, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", coreXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", documentXML},
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range parts {
		w, err := writer.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("docx close: %w", err)
	}
	return output.Bytes(), nil
}

func buildDocumentXML(heading, text string) (string, error) {
	var b strings.Builder
	b.WriteString(documentXMLStart)
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t xml:space="preserve">`)
	if err := escapeInto(&b, heading); err != nil {
		return "", err
	}
	b.WriteString(`</w:t></w:r></w:p>`)
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	if err := escapeInto(&b, text); err != nil {
		return "", err
	}
	b.WriteString(`</w:t></w:r></w:p>`)
	b.WriteString(documentXMLEnd)
	return b.String(), nil
}

func buildCoreXML(title string, created time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"><dc:title>`)
	if err := escapeInto(&b, title); err != nil {
		return "", err
	}
	b.WriteString(`</dc:title><dc:creator>AI Resume Builder</dc:creator><dcterms:created xsi:type="dcterms:W3CDTF">`)
	b.WriteString(created.Format(time.RFC3339))
	b.WriteString(`</dcterms:created></cp:coreProperties>`)
	return b.String(), nil
}

// escapeInto writes s as XML character data. Newlines are emitted as
// character references so they survive as literal characters.
func escapeInto(b *strings.Builder, s string) error {
	if err := checkXMLChars(s); err != nil {
		return err
	}
	if err := xml.EscapeText(b, []byte(s)); err != nil {
		return fmt.Errorf("docx escape: %w", err)
	}
	return nil
}

// checkXMLChars rejects runes outside the XML 1.0 Char production, which
// xml.EscapeText would otherwise replace with U+FFFD.
func checkXMLChars(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("docx escape: invalid utf-8 at byte %d: %w", i, ErrInvalidXMLChar)
		}
		if !isXMLChar(r) {
			return fmt.Errorf("docx escape: %U at byte %d: %w", r, i, ErrInvalidXMLChar)
		}
		i += size
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

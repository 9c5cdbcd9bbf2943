package ups

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// ============================================================================
// Building
// ============================================================================

func newRequestDocument(rootTag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)
	return doc, doc.CreateElement(rootTag)
}

// addText appends <tag>text</tag> to parent.
func addText(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// addOptional appends <tag>text</tag> unless text is blank.
func addOptional(parent *etree.Element, tag, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	addText(parent, tag, text)
}

// addCode appends <tag><Code>code</Code></tag>.
func addCode(parent *etree.Element, tag, code string) *etree.Element {
	el := parent.CreateElement(tag)
	addText(el, "Code", code)
	return el
}

// fragment serializes doc on a single line.
func fragment(doc *etree.Document) (string, error) {
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing %s: %w", doc.Root().Tag, err)
	}
	return strings.ReplaceAll(s, "\n", ""), nil
}

// ============================================================================
// Reading
// ============================================================================

// parseResponse reads a UPS response body and returns its root element.
func parseResponse(body []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	// UPS declares ISO-8859-1 on some endpoints while sending ASCII.
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("%w: %v", shipper.ErrMalformedResponse, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", shipper.ErrMalformedResponse)
	}
	return root, nil
}

// textOf returns the concatenated character data of el and its descendants.
func textOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return strings.TrimSpace(b.String())
}

// findText returns the text at path below el, or "" when absent.
func findText(el *etree.Element, path string) string {
	return textOf(el.FindElement(path))
}

// findTexts returns the text of every element at path below el.
func findTexts(el *etree.Element, path string) []string {
	found := el.FindElements(path)
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, textOf(f))
	}
	return out
}

// requireText is findText for nodes a successful response must carry with
// non-empty text.
func requireText(el *etree.Element, path string) (string, error) {
	var text string
	if found := el.FindElement(path); found != nil {
		text = textOf(found)
	}
	if text == "" {
		return "", fmt.Errorf("%w: missing %s", shipper.ErrMalformedResponse, strings.TrimPrefix(path, "./"))
	}
	return text, nil
}

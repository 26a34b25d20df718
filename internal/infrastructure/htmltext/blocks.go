// Package htmltext turns a product page into the text blocks the candidate
// selector scores.
package htmltext

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose text is offered as a block.
// Containers are included because composition lists are often split across children.
const blockSelector = "p, li, td, th, dd, dt, span, div, section, article, ul, ol, dl, table, h1, h2, h3, h4, h5, h6, label, summary"

const ignoredSelector = "script, style, noscript, template, svg, iframe, head"

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Blocks parses an HTML document and returns the collapsed text of each
// block element in document order. Empty blocks are skipped.
func Blocks(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find(ignoredSelector).Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		if text := CollapseWhitespace(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks, nil
}

// BlocksFromString is Blocks over an in-memory document
func BlocksFromString(html string) ([]string, error) {
	return Blocks(strings.NewReader(html))
}

// CollapseWhitespace joins runs of whitespace into one space and trims the ends
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

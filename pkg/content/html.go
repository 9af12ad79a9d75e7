package content

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"patreonscraper/pkg/errors"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// rawElements keep their content exactly as parsed
var rawElements = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

// tableContexts maps a fragment's leading table part to the element it must be
// parsed inside, so table rows and cells are not dropped as misplaced tags
var tableContexts = map[string]string{
	"caption":  "table",
	"colgroup": "table",
	"thead":    "table",
	"tbody":    "table",
	"tfoot":    "table",
	"col":      "colgroup",
	"tr":       "tbody",
	"td":       "tr",
	"th":       "tr",
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
var attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")

// Prettify parses an HTML fragment and re-serializes it with one node per line,
// children indented by one space per level.
func Prettify(fragment string) (string, error) {
	doc, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var renderErr error
	doc.Contents().Each(func(_ int, s *goquery.Selection) {
		if renderErr == nil {
			renderErr = writeNode(&b, s.Get(0), 0)
		}
	})
	if renderErr != nil {
		return "", errors.Wrap(errors.ErrorTypeProcessing, renderErr, "failed to render HTML")
	}
	return b.String(), nil
}

// PlainText returns the whitespace-collapsed text of an HTML fragment
func PlainText(fragment string) (string, error) {
	doc, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// ImageSources returns the src of every <img> in the fragment, in document order
func ImageSources(fragment string) ([]string, error) {
	doc, err := parseFragment(fragment)
	if err != nil {
		return nil, err
	}
	var sources []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			sources = append(sources, src)
		}
	})
	return sources, nil
}

// parseFragment parses fragment as body content (or as table content when it
// starts with a table part) with scripting disabled, so <noscript> children
// stay markup. The resulting nodes hang off a bare document node.
func parseFragment(fragment string) (*goquery.Document, error) {
	name := fragmentContext(fragment)
	context := &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}

	nodes, err := html.ParseFragmentWithOptions(strings.NewReader(fragment), context, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeProcessing, err, "failed to parse HTML")
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// fragmentContext returns the element a fragment should be parsed inside
func fragmentContext(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "body"
		case html.CommentToken, html.DoctypeToken:
			continue
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return "body"
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tag, _ := z.TagName()
			if ctx, ok := tableContexts[string(tag)]; ok {
				return ctx
			}
			return "body"
		default:
			return "body"
		}
	}
}

func writeNode(b *strings.Builder, n *html.Node, depth int) error {
	indent := strings.Repeat(" ", depth)

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		b.WriteString(indent)
		b.WriteString(textEscaper.Replace(text))
		b.WriteByte('\n')

	case html.CommentNode:
		b.WriteString(indent + "<!--" + n.Data + "-->\n")

	case html.DoctypeNode:
		b.WriteString(indent + "<!DOCTYPE " + n.Data + ">\n")

	case html.ElementNode:
		if rawElements[n.Data] {
			var raw bytes.Buffer
			if err := html.Render(&raw, n); err != nil {
				return err
			}
			b.WriteString(indent)
			b.Write(raw.Bytes())
			b.WriteByte('\n')
			return nil
		}

		b.WriteString(indent)
		writeOpenTag(b, n)
		b.WriteByte('\n')
		if voidElements[n.Data] {
			return nil
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := writeNode(b, c, depth+1); err != nil {
				return err
			}
		}
		b.WriteString(indent + "</" + n.Data + ">\n")
	}

	return nil
}

func writeOpenTag(b *strings.Builder, n *html.Node) {
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, attr := range n.Attr {
		b.WriteByte(' ')
		if attr.Namespace != "" {
			b.WriteString(attr.Namespace + ":")
		}
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(attr.Val))
		b.WriteByte('"')
	}
	if voidElements[n.Data] {
		b.WriteByte('/')
	}
	b.WriteByte('>')
}

package memdom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Layout and animation hints read from HTML attributes. A page fixture can
// describe geometry the in-memory document cannot compute:
//
//	<div id="panel" data-width="0" data-height="0" data-transition="opacity 1s">
const (
	AttrWidth      = "data-width"
	AttrHeight     = "data-height"
	AttrTransition = "data-transition"
	AttrAnimation  = "data-animation"
)

// ParseHTML builds a document from an HTML page. Elements under <body> are
// imported; the hidden attribute or an inline "display: none" style hides an
// element, and data-width/data-height override the default box.
func ParseHTML(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := NewDocument(opts...)
	body := findBody(root)
	if body == nil {
		return doc, nil
	}

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := importNode(doc, doc.Body(), c); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func importNode(doc *Document, parent *Node, src *html.Node) error {
	if src.Type != html.ElementNode {
		return nil
	}

	n := doc.CreateElement(src.Data)
	for _, a := range src.Attr {
		switch a.Key {
		case AttrWidth, AttrHeight:
			v, err := strconv.ParseFloat(a.Val, 64)
			if err != nil {
				return fmt.Errorf("element %s: invalid %s %q", n.Label(), a.Key, a.Val)
			}
			if a.Key == AttrWidth {
				n.width = v
			} else {
				n.height = v
			}
		case AttrTransition:
			n.StartTransition(a.Val)
		case AttrAnimation:
			n.StartAnimation(a.Val)
		case "hidden":
			n.Hide()
		case "value":
			n.SetValue(a.Val)
		case "style":
			if displayNone(a.Val) {
				n.SetDisplay("none")
			}
		}
		n.SetAttr(a.Key, a.Val)
	}

	if src.Data == "textarea" && src.FirstChild != nil && src.FirstChild.Type == html.TextNode {
		n.SetValue(src.FirstChild.Data)
	}

	parent.appendChild(n)
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if err := importNode(doc, n, c); err != nil {
			return err
		}
	}
	return nil
}

func displayNone(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(strings.ToLower(prop)) == "display" && strings.TrimSpace(strings.ToLower(val)) == "none" {
			return true
		}
	}
	return false
}

package app

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/waypoint/internal/adapters/memdom"
	"github.com/felixgeelhaar/waypoint/internal/config"
)

// AttrDetached marks a page element that starts outside the document so a
// scenario can attach it later.
const AttrDetached = "data-detached"

// Page is a scenario page: the document plus every element it was built
// with, including the ones currently detached.
type Page struct {
	Doc   *memdom.Document
	nodes []*memdom.Node
}

// BuildPage builds the scenario's page from its HTML file or inline elements.
func BuildPage(sc *config.Scenario) (*Page, error) {
	if sc.Page != "" {
		return loadHTMLPage(sc.Page)
	}
	return buildInlinePage(sc.Elements)
}

func loadHTMLPage(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, config.NewPageParseError(path, err).WithSuggestion("Check the page path in the scenario.")
	}
	defer func() { _ = f.Close() }()

	doc, err := memdom.ParseHTML(f)
	if err != nil {
		return nil, config.NewPageParseError(path, err)
	}

	p := &Page{Doc: doc, nodes: doc.All()}
	for _, n := range p.nodes {
		if _, ok := n.Attr(AttrDetached); ok {
			n.Remove()
		}
	}
	return p, nil
}

func buildInlinePage(specs []config.ElementSpec) (*Page, error) {
	doc := memdom.NewDocument()
	p := &Page{Doc: doc}

	var detached []*memdom.Node
	for i, spec := range specs {
		n := doc.CreateElement(spec.Tag)
		if spec.ID != "" {
			n.SetID(spec.ID)
		}
		for _, c := range spec.Classes {
			n.AddClass(c)
		}

		w, h := float64(memdom.DefaultWidth), float64(memdom.DefaultHeight)
		if spec.Width != nil {
			w = *spec.Width
		}
		if spec.Height != nil {
			h = *spec.Height
		}
		n.SetBox(w, h)

		if spec.Hidden {
			n.Hide()
		}
		if spec.Value != "" {
			n.SetValue(spec.Value)
		}
		if spec.Transition != "" {
			n.StartTransition(spec.Transition)
		}
		if spec.Animation != "" {
			n.StartAnimation(spec.Animation)
		}

		parent := doc.Body()
		if spec.Parent != "" {
			parent = p.find(spec.Parent)
			if parent == nil {
				return nil, config.NewUserError(config.ErrCodeScenarioInvalid,
					fmt.Sprintf("parent %q of elements[%d] matches no earlier element", spec.Parent, i)).
					WithContext(fmt.Sprintf("elements[%d].parent", i))
			}
		}
		parent.Append(n)
		p.nodes = append(p.nodes, n)

		if spec.Detached {
			detached = append(detached, n)
		}
	}

	for _, n := range detached {
		n.Remove()
	}
	return p, nil
}

// find returns the first element built for the page matching selector,
// attached or not.
func (p *Page) find(selector string) *memdom.Node {
	if n := p.Doc.Find(selector); n != nil {
		return n
	}
	sel, err := memdom.ParseSelector(selector)
	if err != nil {
		return nil
	}
	for _, n := range p.nodes {
		if sel.Matches(n) {
			return n
		}
	}
	return nil
}

// Nodes returns every element built for the page in document order of
// creation.
func (p *Page) Nodes() []*memdom.Node {
	out := make([]*memdom.Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

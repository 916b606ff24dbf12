package memdom

import (
	"fmt"
	"strings"
)

// Selector is a parsed selector group: tag, #id, .class, [attr] and
// [attr=value] compounds joined by descendant (space) or child (>)
// combinators, with comma-separated alternatives.
type Selector struct {
	alternatives []complexSelector
}

type complexSelector struct {
	// parts are ordered left to right; combinators[i] joins parts[i] and parts[i+1].
	parts       []compound
	combinators []byte
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	name     string
	value    string
	hasValue bool
}

// ParseSelector parses a selector group.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	for _, alt := range strings.Split(s, ",") {
		cs, err := parseComplex(strings.TrimSpace(alt))
		if err != nil {
			return Selector{}, err
		}
		sel.alternatives = append(sel.alternatives, cs)
	}
	return sel, nil
}

func parseComplex(s string) (complexSelector, error) {
	if s == "" {
		return complexSelector{}, fmt.Errorf("empty selector")
	}

	var cs complexSelector
	p := &selectorParser{src: s}
	pending := byte(0)
	for {
		p.skipSpace()
		if p.done() {
			break
		}
		if p.peek() == '>' {
			if len(cs.parts) == 0 || pending == '>' {
				return complexSelector{}, fmt.Errorf("unexpected '>' in %q", s)
			}
			pending = '>'
			p.pos++
			continue
		}
		c, err := p.compound()
		if err != nil {
			return complexSelector{}, err
		}
		if len(cs.parts) > 0 {
			if pending == 0 {
				pending = ' '
			}
			cs.combinators = append(cs.combinators, pending)
		}
		pending = 0
		cs.parts = append(cs.parts, c)
	}
	if pending != 0 || len(cs.parts) == 0 {
		return complexSelector{}, fmt.Errorf("dangling combinator in %q", s)
	}
	return cs, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) done() bool { return p.pos >= len(p.src) }
func (p *selectorParser) peek() byte { return p.src[p.pos] }

func (p *selectorParser) skipSpace() {
	for !p.done() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\n') {
		p.pos++
	}
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.done() {
		c := p.peek()
		if c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) compound() (compound, error) {
	var c compound
	start := p.pos

	if p.peek() == '*' {
		p.pos++
	} else {
		c.tag = strings.ToLower(p.ident())
	}

	for !p.done() {
		switch p.peek() {
		case '#':
			p.pos++
			if c.id = p.ident(); c.id == "" {
				return compound{}, fmt.Errorf("empty id in %q", p.src)
			}
		case '.':
			p.pos++
			class := p.ident()
			if class == "" {
				return compound{}, fmt.Errorf("empty class in %q", p.src)
			}
			c.classes = append(c.classes, class)
		case '[':
			am, err := p.attr()
			if err != nil {
				return compound{}, err
			}
			c.attrs = append(c.attrs, am)
		default:
			if p.pos == start {
				return compound{}, fmt.Errorf("unexpected %q in %q", p.peek(), p.src)
			}
			return c, nil
		}
	}
	return c, nil
}

func (p *selectorParser) attr() (attrMatch, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return attrMatch{}, fmt.Errorf("unterminated attribute in %q", p.src)
	}
	body := p.src[p.pos+1 : p.pos+end]
	p.pos += end + 1

	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return attrMatch{}, fmt.Errorf("empty attribute name in %q", p.src)
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return attrMatch{name: name, value: value, hasValue: hasValue}, nil
}

// Matches reports whether n matches any alternative of the selector.
func (s Selector) Matches(n *Node) bool {
	for _, alt := range s.alternatives {
		if alt.matches(n) {
			return true
		}
	}
	return false
}

func (cs complexSelector) matches(n *Node) bool {
	return cs.matchFrom(len(cs.parts)-1, n)
}

func (cs complexSelector) matchFrom(i int, n *Node) bool {
	if !cs.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch cs.combinators[i-1] {
	case '>':
		return n.parent != nil && cs.matchFrom(i-1, n.parent)
	default:
		for anc := n.parent; anc != nil; anc = anc.parent {
			if cs.matchFrom(i-1, anc) {
				return true
			}
		}
		return false
	}
}

func (c compound) matches(n *Node) bool {
	if c.tag != "" && c.tag != n.tag {
		return false
	}
	if c.id != "" && c.id != n.ID() {
		return false
	}
	if len(c.classes) > 0 {
		have := make(map[string]bool)
		for _, cl := range n.Classes() {
			have[cl] = true
		}
		for _, want := range c.classes {
			if !have[want] {
				return false
			}
		}
	}
	for _, am := range c.attrs {
		v, ok := n.attrs[am.name]
		if !ok || am.hasValue && v != am.value {
			return false
		}
	}
	return true
}

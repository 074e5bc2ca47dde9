package render

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Panel is an in-memory Target. The web surface keeps one per session and
// renders its Snapshot into the page.
type Panel struct {
	mu      sync.RWMutex
	content Content
	style   Style
	version uint64
}

// Snapshot is a copy of a Panel's state. Version increases on every write.
type Snapshot struct {
	Content Content `json:"content"`
	Style   Style   `json:"style"`
	Version uint64  `json:"version"`
}

// NewPanel returns an empty Panel.
func NewPanel() *Panel {
	return &Panel{}
}

// Set replaces content and style under one lock.
func (p *Panel) Set(c Content, s Style) {
	c.Lines = append([]string(nil), c.Lines...)

	p.mu.Lock()
	p.content = c
	p.style = s
	p.version++
	p.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c := p.content
	c.Lines = append([]string(nil), p.content.Lines...)
	return Snapshot{Content: c, Style: p.style, Version: p.version}
}

// Empty reports whether nothing has been rendered yet.
func (s Snapshot) Empty() bool { return len(s.Content.Lines) == 0 }

// CSS returns the inline style for the panel's container.
func (s Snapshot) CSS() template.CSS {
	var b strings.Builder
	if s.Style.Background != "" {
		fmt.Fprintf(&b, "background-color: %s; ", s.Style.Background)
	}
	if s.Style.Padding != "" {
		fmt.Fprintf(&b, "padding: %s; ", s.Style.Padding)
	}
	if s.Style.BorderRadius != "" {
		fmt.Fprintf(&b, "border-radius: %s; ", s.Style.BorderRadius)
	}
	if s.Style.MarginTop != "" {
		fmt.Fprintf(&b, "margin-top: %s; ", s.Style.MarginTop)
	}
	return template.CSS(strings.TrimSpace(b.String()))
}

// TextCSS returns the inline style for the panel's text.
func (s Snapshot) TextCSS() template.CSS {
	if s.Content.Color == "" {
		return ""
	}
	return template.CSS("color: " + s.Content.Color + ";")
}

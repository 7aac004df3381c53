package scraper

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// fakeElement is a DOM node for tests. Its sel field is the selector that
// finds it, so the fake surface can match lookups by exact string.
type fakeElement struct {
	sel      string
	text     string
	attrs    map[string]string
	hidden   bool
	children []*fakeElement
	frame    *fakeElement
	onClick  func()

	scoped bool
	index  int
}

func (e *fakeElement) Selector() string { return e.sel }

func (e *fakeElement) add(children ...*fakeElement) *fakeElement {
	e.children = append(e.children, children...)
	return e
}

func el(sel string) *fakeElement {
	return &fakeElement{sel: sel, attrs: map[string]string{}}
}

func elText(sel, text string) *fakeElement {
	e := el(sel)
	e.text = text
	return e
}

func elAttr(sel string, attrs map[string]string) *fakeElement {
	e := el(sel)
	e.attrs = attrs
	return e
}

// fakeSurface implements Surface over a fakeElement tree.
type fakeSurface struct {
	root *fakeElement

	// selectors registered here accept ScrollContainer calls.
	scrollable   map[string]bool
	scrolls      map[string]int
	bottoms      int
	escapes      int
	scrolledInto int

	screenshot    []byte
	screenshotErr error

	navigated []string
}

func newFakeSurface(root *fakeElement) *fakeSurface {
	return &fakeSurface{
		root:       root,
		scrollable: map[string]bool{},
		scrolls:    map[string]int{},
		screenshot: []byte("png"),
	}
}

func (s *fakeSurface) allowScroll(selector string) { s.scrollable[selector] = true }

func (s *fakeSurface) Navigate(_ context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSurface) WaitVisible(_ context.Context, selector string) error {
	if len(collect(s.root, selector, nil)) == 0 {
		return fmt.Errorf("no visible element for %s", selector)
	}
	return nil
}

func collect(node *fakeElement, selector string, out []*fakeElement) []*fakeElement {
	for _, c := range node.children {
		if c.sel == selector {
			out = append(out, c)
		}
		out = collect(c, selector, out)
	}
	return out
}

func (s *fakeSurface) Find(_ context.Context, selector string, scope Element) ([]Element, error) {
	if selector == "" {
		return nil, nil
	}
	start := s.root
	if scope != nil {
		start = scope.(*fakeElement)
	}
	matches := collect(start, selector, nil)
	out := make([]Element, 0, len(matches))
	for i, m := range matches {
		if scope != nil {
			m.scoped = true
		} else {
			m.index = i
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeSurface) Relocate(_ context.Context, e Element) (Element, error) {
	fe := e.(*fakeElement)
	if fe.scoped {
		return nil, ErrFieldAbsent
	}
	matches := collect(s.root, fe.sel, nil)
	if fe.index >= len(matches) {
		return nil, ErrFieldAbsent
	}
	return matches[fe.index], nil
}

func (s *fakeSurface) Text(_ context.Context, e Element) (string, error) {
	return e.(*fakeElement).text, nil
}

func (s *fakeSurface) Attr(_ context.Context, e Element, name string) (string, bool, error) {
	v, ok := e.(*fakeElement).attrs[name]
	return v, ok, nil
}

func (s *fakeSurface) Click(_ context.Context, e Element) error {
	if fn := e.(*fakeElement).onClick; fn != nil {
		fn()
	}
	return nil
}

func (s *fakeSurface) IsVisible(_ context.Context, e Element) (bool, error) {
	return !e.(*fakeElement).hidden, nil
}

func (s *fakeSurface) ScrollIntoView(_ context.Context, _ Element) error {
	s.scrolledInto++
	return nil
}

func (s *fakeSurface) ScrollContainer(_ context.Context, selector string, _ int) error {
	if !s.scrollable[selector] {
		return ErrFieldAbsent
	}
	s.scrolls[selector]++
	return nil
}

func (s *fakeSurface) ScrollToBottom(_ context.Context) error {
	s.bottoms++
	return nil
}

func (s *fakeSurface) ContentFrame(_ context.Context, e Element) (Element, error) {
	frame := e.(*fakeElement).frame
	if frame == nil {
		return nil, fmt.Errorf("no content document")
	}
	return frame, nil
}

func (s *fakeSurface) Screenshot(_ context.Context) ([]byte, error) {
	if s.screenshotErr != nil {
		return nil, s.screenshotErr
	}
	return s.screenshot, nil
}

func (s *fakeSurface) PressEscape(_ context.Context) error {
	s.escapes++
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SettleDelay = 0
	return cfg
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

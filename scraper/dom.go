package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Element is an opaque handle to one DOM element. Handles are produced and
// consumed by the same Surface implementation and become stale when the page
// re-renders underneath them.
type Element interface {
	// Selector reports the selector that located the element, used to
	// re-locate it after a stale reference.
	Selector() string
}

// Surface is the DOM access layer the extraction core runs against. Every
// call is bounded by the deadline on its context; a timeout or a missing
// element is recovered by the caller, never fatal below the assembler.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Find(ctx context.Context, selector string, scope Element) ([]Element, error)
	Text(ctx context.Context, el Element) (string, error)
	Attr(ctx context.Context, el Element, name string) (string, bool, error)
	Click(ctx context.Context, el Element) error
	IsVisible(ctx context.Context, el Element) (bool, error)
	ScrollIntoView(ctx context.Context, el Element) error
	ScrollContainer(ctx context.Context, selector string, dy int) error
	ScrollToBottom(ctx context.Context) error
	ContentFrame(ctx context.Context, el Element) (Element, error)
	Screenshot(ctx context.Context) ([]byte, error)
	PressEscape(ctx context.Context) error

	// Relocate re-resolves a stale element. Handles found inside a scope
	// cannot be re-resolved safely (their selector matches siblings in
	// every other scope) and come back ErrFieldAbsent.
	Relocate(ctx context.Context, el Element) (Element, error)
}

// chromeSurface implements Surface on a chromedp tab context.
type chromeSurface struct{}

// NewChromeSurface returns the chromedp-backed Surface. Contexts passed to
// its methods must descend from a chromedp tab context.
func NewChromeSurface() Surface {
	return &chromeSurface{}
}

type chromeElement struct {
	sel    string
	node   *cdp.Node
	scoped bool
	index  int
}

func (e *chromeElement) Selector() string { return e.sel }

func (s *chromeSurface) Navigate(ctx context.Context, url string) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSurface) WaitVisible(ctx context.Context, selector string) error {
	if selector == "" {
		return ErrFieldAbsent
	}
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return wrapDOMErr(err)
	}
	return nil
}

func (s *chromeSurface) Find(ctx context.Context, selector string, scope Element) ([]Element, error) {
	if selector == "" {
		return nil, nil
	}
	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if scope != nil {
		ce, ok := scope.(*chromeElement)
		if !ok {
			return nil, fmt.Errorf("foreign element handle %T", scope)
		}
		opts = append(opts, chromedp.FromNode(ce.node))
	}
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, wrapDOMErr(err)
	}
	out := make([]Element, 0, len(nodes))
	for i, n := range nodes {
		out = append(out, &chromeElement{sel: selector, node: n, scoped: scope != nil, index: i})
	}
	return out, nil
}

func (s *chromeSurface) Text(ctx context.Context, el Element) (string, error) {
	ce, err := asChromeElement(el)
	if err != nil {
		return "", err
	}
	var text string
	ids := []cdp.NodeID{ce.node.NodeID}
	if err := chromedp.Run(ctx, chromedp.Text(ids, &text, chromedp.ByNodeID)); err != nil {
		return "", wrapDOMErr(err)
	}
	return text, nil
}

func (s *chromeSurface) Attr(ctx context.Context, el Element, name string) (string, bool, error) {
	ce, err := asChromeElement(el)
	if err != nil {
		return "", false, err
	}
	var val string
	var ok bool
	ids := []cdp.NodeID{ce.node.NodeID}
	if err := chromedp.Run(ctx, chromedp.AttributeValue(ids, name, &val, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, wrapDOMErr(err)
	}
	return val, ok, nil
}

func (s *chromeSurface) Click(ctx context.Context, el Element) error {
	ce, err := asChromeElement(el)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{ce.node.NodeID}
	if err := chromedp.Run(ctx, chromedp.Click(ids, chromedp.ByNodeID)); err != nil {
		return wrapDOMErr(err)
	}
	return nil
}

func (s *chromeSurface) IsVisible(ctx context.Context, el Element) (bool, error) {
	ce, err := asChromeElement(el)
	if err != nil {
		return false, err
	}
	// A box model only exists for rendered elements.
	var visible bool
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(ce.node.NodeID).Do(ctx)
		visible = err == nil
		return nil
	})
	if err := chromedp.Run(ctx, action); err != nil {
		return false, wrapDOMErr(err)
	}
	return visible, nil
}

func (s *chromeSurface) ScrollIntoView(ctx context.Context, el Element) error {
	ce, err := asChromeElement(el)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{ce.node.NodeID}
	if err := chromedp.Run(ctx, chromedp.ScrollIntoView(ids, chromedp.ByNodeID)); err != nil {
		return wrapDOMErr(err)
	}
	return nil
}

func (s *chromeSurface) ScrollContainer(ctx context.Context, selector string, dy int) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.scrollTop += %d;
		return true;
	})();`, selector, dy)
	var found bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return wrapDOMErr(err)
	}
	if !found {
		return ErrFieldAbsent
	}
	return nil
}

func (s *chromeSurface) ScrollToBottom(ctx context.Context) error {
	script := `window.scrollTo(0, document.body.scrollHeight);`
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		return wrapDOMErr(err)
	}
	return nil
}

// ContentFrame crosses the iframe boundary: given an iframe element it
// returns a handle scoped to the nested document, suitable as a Find scope.
func (s *chromeSurface) ContentFrame(ctx context.Context, el Element) (Element, error) {
	ce, err := asChromeElement(el)
	if err != nil {
		return nil, err
	}
	var docNode *cdp.Node
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		depth := int64(1)
		n, err := dom.DescribeNode().
			WithNodeID(ce.node.NodeID).
			WithDepth(depth).
			WithPierce(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if n == nil || n.ContentDocument == nil {
			return ErrFieldAbsent
		}
		docNode = n.ContentDocument
		return nil
	})
	if err := chromedp.Run(ctx, action); err != nil {
		return nil, wrapDOMErr(err)
	}
	return &chromeElement{sel: ce.sel, node: docNode, scoped: true}, nil
}

// Relocate re-runs the element's selector and picks the match at the
// element's original document-order position.
func (s *chromeSurface) Relocate(ctx context.Context, el Element) (Element, error) {
	ce, err := asChromeElement(el)
	if err != nil {
		return nil, err
	}
	if ce.scoped {
		return nil, ErrFieldAbsent
	}
	els, err := s.Find(ctx, ce.sel, nil)
	if err != nil {
		return nil, err
	}
	if ce.index >= len(els) {
		return nil, ErrFieldAbsent
	}
	return els[ce.index], nil
}

func (s *chromeSurface) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		b, err := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		if err != nil {
			return err
		}
		buf = b
		return nil
	})
	if err := chromedp.Run(ctx, action); err != nil {
		return nil, wrapDOMErr(err)
	}
	return buf, nil
}

func (s *chromeSurface) PressEscape(ctx context.Context) error {
	if err := chromedp.Run(ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
		return wrapDOMErr(err)
	}
	return nil
}

func asChromeElement(el Element) (*chromeElement, error) {
	ce, ok := el.(*chromeElement)
	if !ok || ce.node == nil {
		return nil, fmt.Errorf("foreign element handle %T", el)
	}
	return ce, nil
}

// wrapDOMErr maps devtools node errors onto the stale sentinel so callers
// can re-locate and retry once.
func wrapDOMErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "Could not find node") ||
		strings.Contains(msg, "No node with given id") ||
		strings.Contains(msg, "Node with given id does not belong to the document") {
		return fmt.Errorf("%w: %s", ErrStaleElement, msg)
	}
	return err
}

// opCtx derives the bounded context every single DOM operation runs under.
func opCtx(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

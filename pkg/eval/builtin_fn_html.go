package eval

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// HTML documents. html::parse returns an HtmlDocument; querying it with CSS
// selectors gives HtmlElement values.

// HtmlDocument is a parsed HTML document.
type HtmlDocument struct {
	doc *goquery.Document
}

// HtmlElement is one element of an HTML document.
type HtmlElement struct {
	sel *goquery.Selection
}

func (*HtmlDocument) Kind() string     { return "html_document" }
func (*HtmlDocument) TypeName() string { return "HtmlDocument" }
func (*HtmlDocument) Repr() string     { return "<HtmlDocument>" }

// Equal compares identity.
func (d *HtmlDocument) Equal(other any) bool { return d == other }

func (*HtmlElement) Kind() string     { return "html_element" }
func (*HtmlElement) TypeName() string { return "HtmlElement" }

// Repr returns "<HtmlElement tag>".
func (e *HtmlElement) Repr() string { return "<HtmlElement " + goquery.NodeName(e.sel) + ">" }

// Equal reports whether two values refer to the same element.
func (e *HtmlElement) Equal(other any) bool {
	o, ok := other.(*HtmlElement)
	return ok && e.sel.Get(0) == o.sel.Get(0)
}

// Size returns an estimate of the memory held by the element's subtree.
func (e *HtmlElement) Size() int {
	h, _ := goquery.OuterHtml(e.sel)
	return len(h)
}

func init() {
	addBuiltinFns(map[string]any{
		"html::parse": htmlParse,
	})

	addMethods("html_document", map[string]methodFn{
		"select":             htmlQueryAll("select"),
		"query_selector_all": htmlQueryAll("query_selector_all"),
		"query_selector":     htmlQueryOne,
	})
	addMethods("html_element", map[string]methodFn{
		"select":             htmlQueryAll("select"),
		"query_selector_all": htmlQueryAll("query_selector_all"),
		"query_selector":     htmlQueryOne,
		"text": func(fm *Frame, recv any, args []any) (any, error) {
			if err := htmlArity("text", args, 0); err != nil {
				return nil, err
			}
			return recv.(*HtmlElement).sel.Text(), nil
		},
		"html": func(fm *Frame, recv any, args []any) (any, error) {
			if err := htmlArity("html", args, 0); err != nil {
				return nil, err
			}
			h, err := recv.(*HtmlElement).sel.Html()
			if err != nil {
				return nil, errs.Newf(errs.RuntimeError, "html: %v", err)
			}
			return h, nil
		},
		"attr": func(fm *Frame, recv any, args []any) (any, error) {
			if err := htmlArity("attr", args, 1); err != nil {
				return nil, err
			}
			name, ok := args[0].(string)
			if !ok {
				return nil, errs.Newf(errs.RuntimeError, "attr expects a string attribute name, got %s", vals.Kind(args[0]))
			}
			return optional(recv.(*HtmlElement).sel.Attr(name)), nil
		},
		"tag": func(fm *Frame, recv any, args []any) (any, error) {
			if err := htmlArity("tag", args, 0); err != nil {
				return nil, err
			}
			return goquery.NodeName(recv.(*HtmlElement).sel), nil
		},
	})
}

func htmlParse(source string) (*HtmlDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, errs.Newf(errs.RuntimeError, "cannot parse HTML: %v", err)
	}
	return &HtmlDocument{doc}, nil
}

func htmlArity(name string, args []any, n int) error {
	if len(args) != n {
		return errs.Newf(errs.RuntimeError, "%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// htmlSelection returns the selection of the receiver.
func htmlSelection(recv any) *goquery.Selection {
	switch r := recv.(type) {
	case *HtmlDocument:
		return r.doc.Selection
	case *HtmlElement:
		return r.sel
	}
	return nil
}

// htmlFind runs a CSS selector against the receiver. goquery silently
// matches nothing for an invalid selector, so the selector is compiled first
// to report the error.
func htmlFind(name string, recv any, args []any) (*goquery.Selection, error) {
	if err := htmlArity(name, args, 1); err != nil {
		return nil, err
	}
	selector, ok := args[0].(string)
	if !ok {
		return nil, errs.Newf(errs.RuntimeError, "%s expects a string selector, got %s", name, vals.Kind(args[0]))
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, errs.Newf(errs.RuntimeError, "invalid CSS selector %q: %v", selector, err)
	}
	return htmlSelection(recv).FindMatcher(m), nil
}

func htmlQueryAll(name string) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		sel, err := htmlFind(name, recv, args)
		if err != nil {
			return nil, err
		}
		elems := make([]any, 0, sel.Length())
		sel.Each(func(_ int, s *goquery.Selection) {
			elems = append(elems, &HtmlElement{s})
		})
		return vals.MakeArraySlice(elems), nil
	}
}

func htmlQueryOne(fm *Frame, recv any, args []any) (any, error) {
	sel, err := htmlFind("query_selector", recv, args)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return vals.None, nil
	}
	return vals.Some(&HtmlElement{sel.First()}), nil
}

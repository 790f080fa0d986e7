// Package browser drives a real page through the Chrome DevTools protocol.
//
// A Page is both the highlight.Port and the navigation.Router for `tg
// browse`: markers are CSS classes added to live DOM elements, and routes are
// paths resolved against the page's base URL.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
)

// evalTimeout bounds a single DOM script.
const evalTimeout = 5 * time.Second

// Page is a browser tab opened on a base URL.
type Page struct {
	browser *rod.Browser
	page    *rod.Page
	base    *url.URL
	ctx     context.Context
	log     *zap.Logger
}

// Launch starts (or downloads) a local Chrome, opens baseURL and installs the
// marker stylesheet.
func Launch(ctx context.Context, baseURL string, headless bool, log *zap.Logger) (*Page, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	controlURL, err := launcher.New().Headless(headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: base.String()})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("open %s: %w", base, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("loading %s: %w", base, err)
	}

	p := &Page{browser: b, page: page, base: base, ctx: ctx, log: log}
	if err := p.installStyles(); err != nil {
		log.Warn("installing highlight styles", zap.Error(err))
	}
	return p, nil
}

// Close closes the browser.
func (p *Page) Close() error {
	return p.browser.Close()
}

func (p *Page) installStyles() error {
	js := "() => {" + styleScript() + "}"
	if _, err := p.page.EvalOnNewDocument("(" + js + ")()"); err != nil {
		return err
	}
	_, err := p.eval(js)
	return err
}

func (p *Page) eval(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	ctx, cancel := context.WithTimeout(p.ctx, evalTimeout)
	defer cancel()
	return p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      js,
		JSArgs:  args,
		ByValue: true,
	})
}

// Apply implements highlight.Port.
func (p *Page) Apply(selector string, classes ...string) (bool, error) {
	res, err := p.eval(`(sel, classes) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.classList.add(...classes);
		return true;
	}`, selector, classes)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// ClearAll implements highlight.Port.
func (p *Page) ClearAll(classes ...string) error {
	_, err := p.eval(`(classes) => {
		const sel = classes.map(c => '.' + CSS.escape(c)).join(',');
		document.querySelectorAll(sel).forEach(el => el.classList.remove(...classes));
	}`, classes)
	return err
}

// ScrollIntoView implements highlight.Port.
func (p *Page) ScrollIntoView(selector string) error {
	_, err := p.eval(`(sel) => {
		const el = document.querySelector(sel);
		if (el) el.scrollIntoView({behavior: 'smooth', block: 'center'});
	}`, selector)
	return err
}

// CurrentPath implements navigation.Router.
func (p *Page) CurrentPath() string {
	res, err := p.eval(`() => location.pathname`)
	if err != nil {
		p.log.Debug("reading location", zap.Error(err))
		return ""
	}
	return res.Value.String()
}

// Navigate implements navigation.Router. The page load runs in the
// background; the caller does not wait for it.
func (p *Page) Navigate(path string) {
	target := ResolvePath(p.base, path)
	go func() {
		if err := p.page.Context(p.ctx).Navigate(target); err != nil {
			p.log.Warn("navigating", zap.String("url", target), zap.Error(err))
		}
	}()
}

// ResolvePath joins a route path onto base, keeping base's scheme and host.
func ResolvePath(base *url.URL, path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}

// Stylesheet returns the CSS for every highlight marker class.
func Stylesheet() string {
	var b strings.Builder
	fmt.Fprintf(&b, ".%s{outline:3px solid #7c3aed;outline-offset:4px;border-radius:6px;transition:outline-offset .2s}", highlight.Marker)
	widths := map[string]string{"sm": "2px", "md": "3px", "lg": "5px"}
	for _, size := range []string{"sm", "md", "lg"} {
		fmt.Fprintf(&b, ".%s-%s{outline-width:%s}", highlight.Marker, size, widths[size])
	}
	colors := []string{"#059669", "#2563eb", "#db2777", "#dc2626", "#d97706", "#ea580c", "#0891b2", "#4f46e5"}
	for i, c := range highlight.Categories {
		fmt.Fprintf(&b, ".%s-%s{outline-color:%s}", highlight.Marker, c, colors[i%len(colors)])
	}
	return b.String()
}

func styleScript() string {
	return fmt.Sprintf(`
		if (document.getElementById('tourguide-styles')) return;
		const s = document.createElement('style');
		s.id = 'tourguide-styles';
		s.textContent = %q;
		(document.head || document.documentElement).appendChild(s);`, Stylesheet())
}

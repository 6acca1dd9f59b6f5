package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// assetAttrs lists, per element, the attributes that reference downloadable
// assets. srcset-style attributes get candidate-list handling.
var assetAttrs = map[string][]string{
	"img":    {"src", "data-src", "data-original", "data-lazy-src", "srcset", "data-srcset"},
	"script": {"src"},
	"link":   {"href"},
	"source": {"src", "srcset"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"track":  {"src"},
	"use":    {"href"},
}

var styleURLPattern = regexp.MustCompile(`url\(\s*(?:'(https?://[^']+)'|"(https?://[^"]+)"|(https?://[^'")\s]+))\s*\)`)

// processPage rewrites a fetched page in place on disk and returns the
// same-site links it should crawl next. Iframes and preconnect hints are
// dropped so the snapshot never reaches back to the network.
func (m *Mirror) processPage(ctx context.Context, siteHost, pageURL string, body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	pageLocal := LocalPath(pageURL, m.OutputRoot)

	var links []string
	var drop []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "iframe":
				drop = append(drop, n)
				return
			case "a":
				if link := m.rewriteLink(n, "href", siteHost, pageURL, pageLocal); link != "" {
					links = append(links, link)
				}
			case "form":
				m.rewriteLink(n, "action", siteHost, pageURL, pageLocal)
			case "link":
				if hasRel(n, "preconnect") || hasRel(n, "dns-prefetch") {
					drop = append(drop, n)
					return
				}
				m.rewriteAssets(ctx, n, pageURL, pageLocal)
			case "meta":
				m.rewriteMetaContent(ctx, n, pageLocal)
			case "style":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					n.FirstChild.Data = m.rewriteStyleRules(ctx, n.FirstChild.Data, pageLocal)
				}
			default:
				if _, ok := assetAttrs[n.Data]; ok {
					m.rewriteAssets(ctx, n, pageURL, pageLocal)
				}
			}
			if style := getAttr(n, "style"); style != "" {
				setAttr(n, "style", m.rewriteStyleRules(ctx, style, pageLocal))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, n := range drop {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	if err := os.MkdirAll(filepath.Dir(pageLocal), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(pageLocal), err)
	}
	f, err := os.Create(pageLocal)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", pageLocal, err)
	}
	defer f.Close()
	if err := html.Render(f, doc); err != nil {
		return nil, fmt.Errorf("writing %s: %w", pageLocal, err)
	}

	mirroredPages.Inc()
	log.WithFields(log.Fields{
		"url":  pageURL,
		"path": pageLocal,
	}).Info("Mirrored page")

	return links, nil
}

// rewriteLink points a same-site link attribute at its local path and returns
// the canonical URL when the link should be crawled. Off-site links are left
// alone.
func (m *Mirror) rewriteLink(n *html.Node, attr, siteHost, pageURL, pageLocal string) string {
	canon, ok := Canonicalize(getAttr(n, attr), pageURL)
	if !ok {
		return ""
	}
	u, err := url.Parse(canon)
	if err != nil || !sameHost(u.Host, siteHost) {
		return ""
	}

	setAttr(n, attr, relTo(pageLocal, LocalPath(canon, m.OutputRoot)))

	if attr == "href" && (m.FollowPrefix == "" || strings.HasPrefix(u.Path, m.FollowPrefix)) {
		return canon
	}
	return ""
}

func (m *Mirror) rewriteAssets(ctx context.Context, n *html.Node, pageURL, pageLocal string) {
	for _, attr := range assetAttrs[n.Data] {
		if attr == "srcset" || attr == "data-srcset" {
			m.rewriteSrcset(ctx, n, attr, pageURL, pageLocal)
			continue
		}

		canon, ok := Canonicalize(getAttr(n, attr), pageURL)
		if !ok {
			continue
		}
		if local := m.download(ctx, canon); local != "" {
			setAttr(n, attr, relTo(pageLocal, local))
		}
	}
}

// rewriteSrcset rewrites each candidate of a srcset list, keeping its width
// or density descriptor. Candidates that fail to download stay remote.
func (m *Mirror) rewriteSrcset(ctx context.Context, n *html.Node, attr, pageURL, pageLocal string) {
	raw := getAttr(n, attr)
	if raw == "" {
		return
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	changed := false
	for _, candidate := range parts {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		urlPart, descriptor, _ := strings.Cut(candidate, " ")
		if canon, ok := Canonicalize(urlPart, pageURL); ok {
			if local := m.download(ctx, canon); local != "" {
				out = append(out, strings.TrimSpace(relTo(pageLocal, local)+" "+descriptor))
				changed = true
				continue
			}
		}
		out = append(out, candidate)
	}

	if changed {
		setAttr(n, attr, strings.Join(out, ", "))
	}
}

// rewriteStyleRules localizes url(...) references in CSS text for hosts on
// the localize list.
func (m *Mirror) rewriteStyleRules(ctx context.Context, style, pageLocal string) string {
	return styleURLPattern.ReplaceAllStringFunc(style, func(match string) string {
		groups := styleURLPattern.FindStringSubmatch(match)
		target, quote := groups[3], ""
		if groups[1] != "" {
			target, quote = groups[1], "'"
		}
		if groups[2] != "" {
			target, quote = groups[2], `"`
		}

		if !m.shouldLocalize(target) {
			return match
		}
		local := m.download(ctx, target)
		if local == "" {
			return match
		}
		return fmt.Sprintf("url(%s%s%s)", quote, relTo(pageLocal, local), quote)
	})
}

func (m *Mirror) rewriteMetaContent(ctx context.Context, n *html.Node, pageLocal string) {
	content := getAttr(n, "content")
	if !strings.HasPrefix(content, "http") || !m.shouldLocalize(content) {
		return
	}
	if local := m.download(ctx, content); local != "" {
		setAttr(n, "content", relTo(pageLocal, local))
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func hasRel(n *html.Node, rel string) bool {
	for _, token := range strings.Fields(getAttr(n, "rel")) {
		if strings.EqualFold(token, rel) {
			return true
		}
	}
	return false
}

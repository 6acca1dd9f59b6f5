package mirror

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Canonicalize resolves raw against base, strips the fragment, and rejects
// anything that is not plain http(s).
func Canonicalize(raw, base string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(raw, scheme) {
			return "", false
		}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	joined := baseURL.ResolveReference(ref)
	if joined.Scheme != "http" && joined.Scheme != "https" {
		return "", false
	}
	joined.Fragment = ""
	return joined.String(), true
}

// LocalPath maps a URL to a stable file path under root. Directory-style and
// suffix-less paths get an index.html; query strings are folded into a short
// digest so distinct queries land in distinct files.
func LocalPath(rawURL, root string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return filepath.Join(root, "index.html")
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") || path.Ext(p) == "" {
		p = strings.TrimSuffix(p, "/") + "/index.html"
	}

	local := filepath.Join(root, u.Host, filepath.FromSlash(strings.TrimPrefix(p, "/")))

	if u.RawQuery != "" {
		sum := md5.Sum([]byte(u.RawQuery))
		digest := hex.EncodeToString(sum[:])[:8]
		ext := filepath.Ext(local)
		base := strings.TrimSuffix(filepath.Base(local), ext)
		local = filepath.Join(filepath.Dir(local), fmt.Sprintf("%s_%s%s", base, digest, ext))
	}

	return local
}

// sameHost reports whether host is site or one of its subdomains.
func sameHost(host, site string) bool {
	return host == site || strings.HasSuffix(host, "."+site)
}

// relTo returns the relative path from the page's directory to target, in
// URL (forward-slash) form.
func relTo(pageLocal, target string) string {
	rel, err := filepath.Rel(filepath.Dir(pageLocal), target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/chordbook/internal/apperr"
)

const maxRedirects = 5

// Download is audio read from a data URI or a remote URL, not yet stored.
// Name carries the extension Media.Save checks the content against.
type Download struct {
	Name string
	Data []byte
}

// HostPolicy returns why a resolved address may not be fetched from, or ""
// when it may.
type HostPolicy func(ip net.IP) string

// PublicOnly refuses loopback, private, link-local (which covers cloud
// metadata endpoints), unspecified and multicast addresses.
func PublicOnly(ip net.IP) string {
	switch {
	case ip.IsLoopback():
		return "loopback"
	case ip.IsPrivate():
		return "private"
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return "link-local"
	case ip.IsUnspecified():
		return "unspecified"
	case ip.IsMulticast():
		return "multicast"
	}
	return ""
}

// Fetcher resolves audio source URIs into downloads.
//
// Remote hosts are resolved once per connection; every resolved address must
// pass the policy and the connection goes to an address that was checked, so
// a second lookup cannot swap in another target. Redirects dial through the
// same check.
type Fetcher struct {
	policy   HostPolicy
	resolver *net.Resolver
	client   *http.Client
}

// NewFetcher returns a Fetcher enforcing policy, PublicOnly when nil.
func NewFetcher(policy HostPolicy) *Fetcher {
	if policy == nil {
		policy = PublicOnly
	}
	f := &Fetcher{policy: policy, resolver: net.DefaultResolver}
	f.client = &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext:           f.dial,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("storage: more than %d redirects: %w", maxRedirects, apperr.ErrInvalid)
			}
			return nil
		},
	}
	return f
}

// Fetch reads uri, a base64 data URI or an http(s) URL. name is the file name
// to store under; when empty one is derived from the URL or content type.
func (f *Fetcher) Fetch(ctx context.Context, uri, name string) (*Download, error) {
	var data []byte
	var ext string
	var err error
	if strings.HasPrefix(uri, "data:") {
		data, ext, err = decodeDataURI(uri)
	} else {
		data, ext, err = f.get(ctx, uri)
	}
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = NameFromURI(uri, ext)
	}
	return &Download{Name: name, Data: data}, nil
}

func (f *Fetcher) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	addrs, err := f.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("storage: %s has no addresses: %w", host, apperr.ErrInvalid)
	}
	for _, a := range addrs {
		if reason := f.policy(a.IP); reason != "" {
			return nil, fmt.Errorf("storage: blocked host %s: %s address %s: %w", host, reason, a.IP, apperr.ErrInvalid)
		}
	}
	var d net.Dialer
	return d.DialContext(ctx, network, net.JoinHostPort(addrs[0].IP.String(), port))
}

func (f *Fetcher) get(ctx context.Context, raw string) ([]byte, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("storage: invalid URL: %w: %w", apperr.ErrInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("storage: unsupported scheme %q (only http/https): %w", u.Scheme, apperr.ErrInvalid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("storage: download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("storage: download: HTTP %d: %w", resp.StatusCode, apperr.ErrInvalid)
	}
	if resp.ContentLength > MaxMediaBytes {
		return nil, "", fmt.Errorf("storage: media too large (max %d bytes): %w", MaxMediaBytes, apperr.ErrInvalid)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxMediaBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("storage: read body: %w", err)
	}
	if len(data) > MaxMediaBytes {
		return nil, "", fmt.Errorf("storage: media too large (max %d bytes): %w", MaxMediaBytes, apperr.ErrInvalid)
	}

	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return data, MimeToExt[mt], nil
}

// decodeDataURI reads data:<audio type>[;params];base64,<payload>.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("storage: data URI has no payload: %w", apperr.ErrInvalid)
	}
	mt, params, _ := strings.Cut(meta, ";")
	if !slices.Contains(strings.Split(params, ";"), "base64") {
		return nil, "", fmt.Errorf("storage: only base64 data URIs are supported: %w", apperr.ErrInvalid)
	}
	ext, known := MimeToExt[strings.ToLower(mt)]
	if !known {
		return nil, "", fmt.Errorf("storage: unsupported media type %q: %w", mt, apperr.ErrInvalid)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxMediaBytes+2 {
		return nil, "", fmt.Errorf("storage: media too large (max %d bytes): %w", MaxMediaBytes, apperr.ErrInvalid)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", fmt.Errorf("storage: invalid base64: %w: %w", apperr.ErrInvalid, err)
		}
	}
	if len(data) > MaxMediaBytes {
		return nil, "", fmt.Errorf("storage: media too large (max %d bytes): %w", MaxMediaBytes, apperr.ErrInvalid)
	}
	return data, ext, nil
}

// NameFromURI takes the last path element of an http(s) URL when it has an
// extension, otherwise a random name ending in ext (.bin when empty).
func NameFromURI(uri, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	if strings.HasPrefix(uri, "data:") {
		return uuid.NewString() + ext
	}
	if u, err := url.Parse(uri); err == nil {
		if base := path.Base(u.Path); path.Ext(base) != "" {
			return base
		}
	}
	return uuid.NewString() + ext
}

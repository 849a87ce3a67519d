// Package fetcher discovers the current KPSS preference guide on the ÖSYM
// site and downloads its bulletin PDFs.
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"kpss-tercih/internal/classifier"
	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

// Defaults for Config.
const (
	DefaultBaseURL      = "https://www.osym.gov.tr"
	DefaultIndexPath    = "/TR,32935/2025.html"
	DefaultDocumentHost = "dokuman.osym.gov.tr"
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	DefaultTimeout      = 60 * time.Second
)

// ErrGuideNotFound is returned when the index page links to no general
// preference guide.
var ErrGuideNotFound = errors.New("no preference guide found on index page")

var (
	guideLink = regexp.MustCompile(`(?i)/TR,(\d+)/[^"]*tercih[^"]*\.html`)
	hrefPath  = xmlpath.MustCompile(`//a/@href`)
	// guides of single ministries are published next to the general one
	guideExclusions = []string{"saglik", "cevre", "bakanlig"}
)

// Config tells the fetcher where to look.
type Config struct {
	BaseURL      string
	IndexPath    string
	DocumentHost string
	UserAgent    string
	Timeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.IndexPath == "" {
		c.IndexPath = DefaultIndexPath
	}
	if c.DocumentHost == "" {
		c.DocumentHost = DefaultDocumentHost
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Link is a bulletin PDF referenced by the guide page.
type Link struct {
	Name string
	URL  string
}

// Download is a bulletin stored on disk.
type Download struct {
	Name string
	Path string
	Hash string
}

// Result summarizes an update.
type Result struct {
	GuideURL     string
	Links        int
	Downloads    []Download
	Skipped      []string
	Failed       []string
	ChangedFiles []string
	State        State
}

// Changed reports whether any downloaded bulletin is new or different.
func (r *Result) Changed() bool {
	return len(r.ChangedFiles) > 0
}

// Fetcher talks to the ÖSYM web site.
type Fetcher struct {
	client     *http.Client
	cfg        Config
	classifier *classifier.Classifier
	logger     logging.Logger
	now        func() time.Time
}

// New creates a Fetcher. Redirects are followed by the HTTP client.
func New(cfg Config, cls *classifier.Classifier, logger logging.Logger) *Fetcher {
	cfg = cfg.withDefaults()
	if cls == nil {
		cls = classifier.New()
	}
	return &Fetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		classifier: cls,
		logger:     logger,
		now:        time.Now,
	}
}

func (f *Fetcher) resolve(ref string) (string, error) {
	base, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", f.cfg.BaseURL, err)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp, nil
}

// pageLinks returns every anchor href of the HTML page at ref.
func (f *Fetcher) pageLinks(ctx context.Context, ref string) ([]string, error) {
	pageURL, err := f.resolve(ref)
	if err != nil {
		return nil, err
	}
	resp, err := f.get(ctx, pageURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", pageURL, err)
	}
	root, err := xmlpath.ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	var hrefs []string
	iter := hrefPath.Iter(root)
	for iter.Next() {
		if href := strings.TrimSpace(iter.Node().String()); href != "" {
			hrefs = append(hrefs, href)
		}
	}
	f.logger.Debug("Read page links", logging.F(logging.FieldURL, pageURL), logging.F(logging.FieldCount, len(hrefs)))
	return hrefs, nil
}

// FindLatestGuide returns the absolute URL of the general preference guide
// with the highest page id linked from the index page.
func (f *Fetcher) FindLatestGuide(ctx context.Context) (string, error) {
	hrefs, err := f.pageLinks(ctx, f.cfg.IndexPath)
	if err != nil {
		return "", err
	}
	guide := latestGuide(hrefs)
	if guide == "" {
		return "", ErrGuideNotFound
	}
	abs, err := f.resolve(guide)
	if err != nil {
		return "", err
	}
	f.logger.Info("Found preference guide", logging.F(logging.FieldURL, abs))
	return abs, nil
}

func latestGuide(hrefs []string) string {
	bestID := -1
	best := ""
	for _, href := range hrefs {
		m := guideLink.FindStringSubmatch(href)
		if m == nil {
			continue
		}
		lower := strings.ToLower(m[0])
		excluded := false
		for _, ex := range guideExclusions {
			if strings.Contains(lower, ex) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if id > bestID {
			bestID, best = id, m[0]
		}
	}
	return best
}

// PDFLinks returns the distinct bulletin links of the guide page, in page
// order.
func (f *Fetcher) PDFLinks(ctx context.Context, guideURL string) ([]Link, error) {
	hrefs, err := f.pageLinks(ctx, guideURL)
	if err != nil {
		return nil, err
	}
	return f.pdfLinks(hrefs), nil
}

func (f *Fetcher) pdfLinks(hrefs []string) []Link {
	var links []Link
	seen := make(map[string]bool)
	for _, href := range hrefs {
		u, err := url.Parse(href)
		if err != nil || !strings.EqualFold(u.Host, f.cfg.DocumentHost) {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if !strings.EqualFold(path.Ext(u.Path), ".pdf") {
			continue
		}
		abs := u.String()
		if seen[abs] {
			continue
		}
		seen[abs] = true
		links = append(links, Link{Name: path.Base(u.Path), URL: abs})
	}
	return links
}

// Download stores the document at link in dir and returns its SHA-256.
func (f *Fetcher) Download(ctx context.Context, link Link, dir string) (Download, error) {
	resp, err := f.get(ctx, link.URL, "application/pdf,*/*")
	if err != nil {
		return Download{}, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Download{}, fmt.Errorf("failed to read %s: %w", link.URL, err)
	}
	sum := sha256.Sum256(data)
	target := filepath.Join(dir, filepath.Base(link.Name))
	if err := fileutils.WriteFile(target, data, models.PermissionReportFile); err != nil {
		return Download{}, err
	}
	return Download{Name: link.Name, Path: target, Hash: hex.EncodeToString(sum[:])}, nil
}

// Check compares the latest guide with the one recorded in prev. It
// downloads nothing.
func (f *Fetcher) Check(ctx context.Context, prev State) (latest string, changed bool, err error) {
	latest, err = f.FindLatestGuide(ctx)
	if err != nil {
		return "", false, err
	}
	changed = latest != prev.LastGuideURL
	f.logger.Info("Checked for a new preference guide",
		logging.F(logging.FieldURL, latest),
		logging.F("previous", prev.LastGuideURL),
		logging.F("changed", changed))
	return latest, changed, nil
}

// Update finds the latest guide, clears the PDFs left in dir by the previous
// update and downloads every classified bulletin. Single downloads may fail
// without aborting the update. The returned State is not persisted.
func (f *Fetcher) Update(ctx context.Context, dir string, prev State) (*Result, error) {
	guide, err := f.FindLatestGuide(ctx)
	if err != nil {
		return nil, err
	}
	links, err := f.PDFLinks(ctx, guide)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no bulletin PDFs linked from %s", guide)
	}
	f.logger.Info("Found bulletin links", logging.F(logging.FieldCount, len(links)))

	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}
	if err := removePDFs(dir); err != nil {
		return nil, err
	}

	res := &Result{GuideURL: guide, Links: len(links)}
	hashes := make(map[string]string)
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger := f.logger.WithField(logging.FieldFile, link.Name)
		if !f.classifier.Classify(link.Name).Classified() {
			logger.Info("Skipping unrecognized bulletin")
			res.Skipped = append(res.Skipped, link.Name)
			continue
		}
		d, err := f.Download(ctx, link, dir)
		if err != nil {
			logger.WithError(err).Warn("Failed to download bulletin")
			res.Failed = append(res.Failed, link.Name)
			continue
		}
		logger.Debug("Downloaded bulletin", logging.F("sha256", d.Hash))
		res.Downloads = append(res.Downloads, d)
		hashes[d.Name] = d.Hash
	}

	res.ChangedFiles = ChangedFiles(prev.FileHashes, hashes)
	res.State = State{
		LastUpdate:   f.now().UTC().Format(time.RFC3339),
		LastGuideURL: guide,
		FileHashes:   hashes,
	}
	sort.Slice(res.Downloads, func(i, j int) bool { return res.Downloads[i].Name < res.Downloads[j].Name })
	f.logger.Info("Downloaded bulletins",
		logging.F(logging.FieldCount, len(res.Downloads)),
		logging.F("skipped", len(res.Skipped)),
		logging.F("failed", len(res.Failed)),
		logging.F("changed", len(res.ChangedFiles)))
	return res, nil
}

func removePDFs(dir string) error {
	files, err := fileutils.ListFilesWithExtension(dir, ".pdf")
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove old bulletin: %w", err)
		}
	}
	return nil
}

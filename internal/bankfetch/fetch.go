// Package bankfetch installs question banks published as a single bank
// file or as a .tar.gz/.zip pack of bank files.
package bankfetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
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
	"strings"
	"time"

	"github.com/abhisek/secprep/internal/bank"
)

var (
	ErrChecksum = errors.New("checksum verification failed")
	ErrNoBanks  = errors.New("no bank files found")
	ErrTooLarge = errors.New("archive entry too large")
)

// maxDownload caps a download and every file unpacked from it.
const maxDownload = 32 << 20

// Fetcher downloads and installs banks.
type Fetcher struct {
	client *http.Client
}

type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the client timeout. Default 60s.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: 60 * time.Second}}
	for _, o := range opts {
		o(f)
	}
	return f
}

type Input struct {
	URL string

	// SHA256 is the expected hex digest of the download. Empty skips the
	// check.
	SHA256 string

	// Dir is the user bank directory.
	Dir string

	// Force installs banks that are not newer than the one already
	// available under the same slug.
	Force bool
}

type Progress struct {
	Stage   string
	Message string
}

// Installed describes one bank written to disk.
type Installed struct {
	Path string
	Bank *bank.Bank
}

// Install downloads in.URL, verifies and validates every bank in it and
// writes the accepted ones to in.Dir as <slug>.<ext>. A pack is all or
// nothing: one invalid bank rejects the whole download.
func (f *Fetcher) Install(ctx context.Context, in Input, progress func(Progress)) ([]Installed, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	name, err := fileName(in.URL)
	if err != nil {
		return nil, err
	}

	progress(Progress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", name)})
	data, err := f.download(ctx, in.URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	if in.SHA256 != "" {
		progress(Progress{Stage: "verify", Message: "Verifying checksum..."})
		if err := verifyChecksum(data, strings.ToLower(in.SHA256)); err != nil {
			return nil, err
		}
	}

	files, err := unpack(name, data)
	if err != nil {
		return nil, err
	}

	var banks []*bank.Bank
	var exts []string
	for _, fl := range files {
		format, _ := bank.FormatFromPath(fl.name)
		b, err := bank.Parse(fl.data, format, in.URL+"#"+fl.name)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
		exts = append(exts, strings.ToLower(filepath.Ext(fl.name)))
	}

	reg, err := bank.NewRegistry(in.Dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(in.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create banks dir: %w", err)
	}

	var out []Installed
	for i, b := range banks {
		if cur, err := reg.Get(b.Slug); err == nil && !in.Force && !bank.Newer(b, cur) {
			progress(Progress{Stage: "skip", Message: fmt.Sprintf(
				"Skipping %s %s: %s is already available", b.Slug, b.Version, cur.Version)})
			continue
		}
		target := filepath.Join(in.Dir, b.Slug+exts[i])
		if err := writeAtomic(target, files[i].data); err != nil {
			return out, err
		}
		progress(Progress{Stage: "install", Message: fmt.Sprintf("Installed %s %s", b.Slug, b.Version)})
		out = append(out, Installed{Path: target, Bank: b})
	}
	return out, nil
}

func fileName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("URL %s has no file name", raw)
	}
	return name, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("%s is larger than %d bytes", url, maxDownload)
	}
	return data, nil
}

func verifyChecksum(data []byte, expectedHex string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if actual != expectedHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedHex, actual)
	}
	return nil
}

type file struct {
	name string
	data []byte
}

// unpack returns the bank files in a download, by its file name.
func unpack(name string, data []byte) ([]file, error) {
	lower := strings.ToLower(name)
	var files []file
	var err error
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		files, err = fromTarGz(data)
	case strings.HasSuffix(lower, ".zip"):
		files, err = fromZip(data)
	default:
		if _, ferr := bank.FormatFromPath(name); ferr != nil {
			return nil, ferr
		}
		files = []file{{name: name, data: data}}
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoBanks, name)
	}
	return files, nil
}

func isBankFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	_, err := bank.FormatFromPath(name)
	return err == nil
}

func fromTarGz(data []byte) ([]file, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	var out []file
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isBankFile(hdr.Name) {
			continue
		}
		b, err := readLimited(tr, hdr.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, file{name: path.Base(hdr.Name), data: b})
	}
	return out, nil
}

func fromZip(data []byte) ([]file, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	var out []file
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isBankFile(f.Name) {
			continue
		}
		b, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, file{name: path.Base(f.Name), data: b})
	}
	return out, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return readLimited(rc, f.Name)
}

// readLimited reads one archive entry, refusing entries that expand past
// maxDownload.
func readLimited(r io.Reader, name string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(b) > maxDownload {
		return nil, fmt.Errorf("%w: %s expands past %d bytes", ErrTooLarge, name, maxDownload)
	}
	return b, nil
}

// writeAtomic writes data next to target and renames it into place, then
// re-reads the result to make sure it landed intact.
func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".secprep-bank-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	written, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("re-read %s: %w", target, err)
	}
	want, got := sha256.Sum256(data), sha256.Sum256(written)
	if !bytes.Equal(want[:], got[:]) {
		return fmt.Errorf("%w: %s changed after write", ErrChecksum, target)
	}
	return nil
}

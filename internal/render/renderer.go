// Package render serves raster images of stored PDF pages on demand, with
// a bounded in-memory cache.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

var (
	// ErrPDFNotFound means no stored source PDF exists for the document,
	// e.g. it was deleted or is a Markdown upload.
	ErrPDFNotFound = errors.New("stored pdf not found")

	// ErrPageRange is a client error: the requested page number is out of
	// range for the document.
	ErrPageRange = errors.New("page number out of range")

	// ErrRender means both the external rasterizer and the in-process
	// fallback failed.
	ErrRender = errors.New("page render failed")
)

// RenderPath tags which rasterizer produced an image, so the fallback
// branch is observable instead of a silent catch.
type RenderPath int

const (
	RenderedExternal RenderPath = iota // pdftoppm
	RenderedFallback                   // in-process go-fitz
)

func (p RenderPath) String() string {
	if p == RenderedExternal {
		return "pdftoppm"
	}
	return "fitz"
}

// Renderer rasterizes stored PDF pages at a fixed DPI and re-encodes them
// bounded to a maximum resolution.
type Renderer struct {
	pdfDir string
	cache  *PageCache
	dpi    int
	maxDim int

	renders atomic.Int64

	// rasterize and pageCount are swappable in tests.
	rasterize func(ctx context.Context, pdfPath string, page int) (image.Image, RenderPath, error)
	pageCount func(pdfPath string) (int, error)
}

func NewRenderer(pdfDir string, cache *PageCache, dpi, maxDim int) *Renderer {
	r := &Renderer{pdfDir: pdfDir, cache: cache, dpi: dpi, maxDim: maxDim}
	r.rasterize = r.rasterizePage
	r.pageCount = countPDFPages
	return r
}

// PDFPath returns the stored source PDF for docID, or ErrPDFNotFound.
func (r *Renderer) PDFPath(docID string) (string, error) {
	path := filepath.Join(r.pdfDir, docID+".pdf")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrPDFNotFound, docID)
	}
	return path, nil
}

// RenderCount reports how many raster operations have run; cache hits do
// not count. Used by tests to observe eviction.
func (r *Renderer) RenderCount() int64 {
	return r.renders.Load()
}

// RenderPage returns the PNG bytes for a 1-based page of the stored PDF,
// from cache when fresh. A failed render is never cached.
func (r *Renderer) RenderPage(ctx context.Context, docID string, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", ErrPageRange, page)
	}

	key := fmt.Sprintf("%s_%d", docID, page)
	if data, ok := r.cache.Get(key); ok {
		return data, nil
	}

	pdfPath, err := r.PDFPath(docID)
	if err != nil {
		return nil, err
	}
	numPages, err := r.pageCount(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if page > numPages {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageRange, page, numPages)
	}

	r.renders.Add(1)
	img, path, err := r.rasterize(ctx, pdfPath, page)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("doc_id", docID).Int("page", page).Stringer("via", path).Msg("rendered page")

	img = downscale(img, r.maxDim)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrRender, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty image buffer", ErrRender)
	}

	r.cache.Put(key, buf.Bytes())
	return buf.Bytes(), nil
}

func countPDFPages(pdfPath string) (int, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// rasterizePage tries the external pdftoppm tool first and falls back to
// the in-process go-fitz renderer when the tool is missing or fails.
func (r *Renderer) rasterizePage(ctx context.Context, pdfPath string, page int) (image.Image, RenderPath, error) {
	if _, err := exec.LookPath("pdftoppm"); err == nil {
		img, err := renderPdftoppm(ctx, pdfPath, page, r.dpi)
		if err == nil {
			return img, RenderedExternal, nil
		}
		log.Warn().Err(err).Str("pdf", pdfPath).Int("page", page).
			Msg("pdftoppm failed, falling back to in-process renderer")
	} else {
		log.Debug().Msg("pdftoppm not on PATH, using in-process renderer")
	}

	img, err := renderFitz(pdfPath, page, r.dpi)
	if err != nil {
		return nil, RenderedFallback, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return img, RenderedFallback, nil
}

func renderPdftoppm(ctx context.Context, pdfPath string, page, dpi int) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "supportkb-render-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, out)
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func renderFitz(pdfPath string, page, dpi int) (image.Image, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(page-1, float64(dpi))
}

// downscale bounds the longest side to maxDim to cap payload size.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDim <= 0 || longest <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

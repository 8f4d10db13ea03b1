package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

// PdftoppmRenderer rasterizes PDF pages with poppler's pdftoppm.
type PdftoppmRenderer struct {
	Bin string
	DPI int
}

var _ core.PageRenderer = (*PdftoppmRenderer)(nil)

func NewPdftoppmRenderer(bin string) *PdftoppmRenderer {
	if bin == "" {
		bin = "pdftoppm"
	}
	return &PdftoppmRenderer{Bin: bin, DPI: 150}
}

// RenderPages returns one PNG per page in [first, last]. A last below 1 means
// through the final page.
func (r *PdftoppmRenderer) RenderPages(ctx context.Context, pdf []byte, first, last int) ([][]byte, error) {
	if first < 1 {
		first = 1
	}
	dir, err := os.MkdirTemp("", "pdr-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	args := []string{"-png", "-r", strconv.Itoa(r.DPI), "-f", strconv.Itoa(first)}
	if last >= first {
		args = append(args, "-l", strconv.Itoa(last))
	}
	args = append(args, in, filepath.Join(dir, "page"))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", r.Bin, err, strings.TrimSpace(stderr.String()))
	}

	// pdftoppm zero-pads page numbers to a common width, so names sort in page order.
	names, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([][]byte, 0, len(names))
	for _, name := range names {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

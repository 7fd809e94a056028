package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// ErrNoFrontendBuild is returned when the SPA build directory is missing.
var ErrNoFrontendBuild = errors.New("no frontend build found")

// SPAHandler serves a built single-page app: existing files as-is, every
// other GET falls back to index.html so client-side routing works.
type SPAHandler struct {
	Dir string
}

func NewSPAHandler(dir string) (*SPAHandler, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w at %s", ErrNoFrontendBuild, dir)
	}
	return &SPAHandler{Dir: dir}, nil
}

func (h *SPAHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}

	// Clean against a rooted path so ".." cannot escape Dir.
	rel := path.Clean("/" + c.Request.URL.Path)
	file := filepath.Join(h.Dir, filepath.FromSlash(rel))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}
	c.File(filepath.Join(h.Dir, "index.html"))
}

package screen

import (
	"image"
	"os"
	"path/filepath"
)

// TemplateCache memoizes decoded grayscale templates by file name. Failed
// loads are cached as permanent misses so the disk is never probed twice for
// a name known to be absent or undecodable.
//
// The cache is not safe for concurrent use; the engine is single-threaded.
type TemplateCache struct {
	dir     string
	rasters map[string]*image.Gray // nil entry records a permanent miss

	decode    func(path string) (*image.Gray, error)
	debugFunc func(string, ...interface{})
}

// NewTemplateCache creates a cache rooted at the given templates directory
func NewTemplateCache(dir string) *TemplateCache {
	return &TemplateCache{
		dir:       dir,
		rasters:   make(map[string]*image.Gray),
		decode:    decodeGray,
		debugFunc: func(string, ...interface{}) {},
	}
}

// SetDebugFunc sets the debug logging function
func (c *TemplateCache) SetDebugFunc(f func(string, ...interface{})) {
	c.debugFunc = f
}

// Resolve returns the cached raster for name, loading it on first request.
// The second return is false when the template is a known miss.
func (c *TemplateCache) Resolve(name string) (*image.Gray, bool) {
	if img, cached := c.rasters[name]; cached {
		return img, img != nil
	}

	img, err := c.decode(filepath.Join(c.dir, name))
	if err != nil {
		c.debugFunc("template %s unavailable, caching miss: %v", name, err)
		c.rasters[name] = nil
		return nil, false
	}

	c.rasters[name] = img
	return img, true
}

func decodeGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

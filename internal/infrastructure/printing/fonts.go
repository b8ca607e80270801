package printing

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontFiles maps configured family names to TrueType file names (bold, regular)
var fontFiles = map[string][2]string{
	"arial":           {"arialbd.ttf", "arial.ttf"},
	"helvetica":       {"arialbd.ttf", "arial.ttf"},
	"times new roman": {"timesbd.ttf", "times.ttf"},
	"courier":         {"courbd.ttf", "cour.ttf"},
	"georgia":         {"georgiab.ttf", "georgia.ttf"},
	"verdana":         {"verdanab.ttf", "verdana.ttf"},
}

// FontLoaderConfig configures font lookup
type FontLoaderConfig struct {
	// Dirs are searched in order before the platform font directories
	Dirs   []string
	Logger *zap.Logger
}

// FontLoader resolves family names to parsed fonts. A missing or broken font
// file degrades to the embedded Go fonts, so loading never fails.
type FontLoader struct {
	dirs   []string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*opentype.Font
}

// NewFontLoader creates a FontLoader
func NewFontLoader(cfg FontLoaderConfig) *FontLoader {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dirs := append([]string{}, cfg.Dirs...)
	dirs = append(dirs, platformFontDirs()...)
	return &FontLoader{
		dirs:   dirs,
		logger: logger,
		cache:  make(map[string]*opentype.Font),
	}
}

func platformFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{`C:\Windows\Fonts`}
	case "darwin":
		return []string{"/Library/Fonts", "/System/Library/Fonts/Supplemental"}
	default:
		return []string{"/usr/share/fonts/truetype/msttcorefonts", "/usr/share/fonts/TTF"}
	}
}

// Font returns the parsed font for the family
func (l *FontLoader) Font(family string, bold bool) *opentype.Font {
	key := strings.ToLower(strings.TrimSpace(family))
	if bold {
		key += "|b"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.cache[key]; ok {
		return f
	}
	f := l.load(family, bold)
	l.cache[key] = f
	return f
}

func (l *FontLoader) load(family string, bold bool) *opentype.Font {
	for _, path := range l.candidates(family, bold) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			l.logger.Warn("font file unreadable", zap.String("path", path), zap.Error(err))
			continue
		}
		return f
	}

	l.logger.Debug("font not found, using embedded font", zap.String("family", family))
	src := goregular.TTF
	if bold {
		src = gobold.TTF
	}
	f, err := opentype.Parse(src)
	if err != nil {
		return nil
	}
	return f
}

// candidates lists files to try: the mapped family file in the preferred
// weight, then the other weight, then Arial.
func (l *FontLoader) candidates(family string, bold bool) []string {
	pick := func(pair [2]string) []string {
		if bold {
			return []string{pair[0], pair[1]}
		}
		return []string{pair[1], pair[0]}
	}

	var names []string
	if pair, ok := fontFiles[strings.ToLower(strings.TrimSpace(family))]; ok {
		names = append(names, pick(pair)...)
	}
	names = append(names, pick(fontFiles["arial"])...)

	var paths []string
	for _, dir := range l.dirs {
		for _, name := range names {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// Face returns a face of the family at sizePx pixels. It falls back to a
// fixed bitmap face if the outline face cannot be built.
func (l *FontLoader) Face(family string, bold bool, sizePx float64) font.Face {
	f := l.Font(family, bold)
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		l.logger.Warn("font face creation failed", zap.String("family", family), zap.Error(err))
		return basicfont.Face7x13
	}
	return face
}

// inkBounds returns the glyph bounding box of s relative to the dot
func inkBounds(face font.Face, s string) fixed.Rectangle26_6 {
	b, _ := font.BoundString(face, s)
	return b
}

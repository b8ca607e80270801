package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/storage"
)

// labelSizeKey identifies a setting in label_size.txt
type labelSizeKey int

const (
	keyWidth labelSizeKey = iota
	keyHeight
	keyFontSize
	keyFont
	keyExtraWeight
	keyPrinter
	keyLabelCopies
	keyBulkCopies
)

// labelSizeKeys maps every accepted spelling, lower-cased, to its setting
var labelSizeKeys = map[string]labelSizeKey{
	"width":                keyWidth,
	"너비":                   keyWidth,
	"height":               keyHeight,
	"높이":                   keyHeight,
	"fontsize":             keyFontSize,
	"font_size":            keyFontSize,
	"폰트크기":                 keyFontSize,
	"font":                 keyFont,
	"폰트":                   keyFont,
	"extra_weight":         keyExtraWeight,
	"printer":              keyPrinter,
	"default_printer":      keyPrinter,
	"label_copies":         keyLabelCopies,
	"default_label_copies": keyLabelCopies,
	"bulk_copies":          keyBulkCopies,
	"default_bulk_copies":  keyBulkCopies,
}

// ParseLabelSize reads label_size.txt. Lines are "key: value" or "w,h";
// blank lines and "#" comments are skipped. Values that do not parse keep
// their default.
func ParseLabelSize(r io.Reader) (labeling.LabelSizeConfig, error) {
	cfg := labeling.DefaultLabelSizeConfig()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			parseDimensions(line, &cfg)
			continue
		}
		k, known := labelSizeKeys[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			continue
		}
		applyLabelSizeValue(k, strings.TrimSpace(value), &cfg)
	}
	if err := scanner.Err(); err != nil {
		return labeling.DefaultLabelSizeConfig(), err
	}
	return cfg, nil
}

func parseDimensions(line string, cfg *labeling.LabelSizeConfig) {
	w, h, ok := strings.Cut(line, ",")
	if !ok {
		return
	}
	width, errW := strconv.ParseFloat(strings.TrimSpace(w), 64)
	height, errH := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return
	}
	cfg.WidthCm, cfg.HeightCm = width, height
}

func applyLabelSizeValue(k labelSizeKey, value string, cfg *labeling.LabelSizeConfig) {
	switch k {
	case keyWidth, keyHeight:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return
		}
		if k == keyWidth {
			cfg.WidthCm = v
		} else {
			cfg.HeightCm = v
		}
	case keyFontSize:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || int(v) <= 0 {
			return
		}
		cfg.FontSize = int(v)
	case keyFont:
		if value != "" {
			cfg.FontName = value
		}
	case keyExtraWeight:
		v, err := labeling.ParseWeight(value)
		if err != nil || v.IsNegative() {
			return
		}
		cfg.ExtraWeightDefault = v
	case keyPrinter:
		cfg.DefaultPrinter = labeling.NormalizePrinter(value)
	case keyLabelCopies, keyBulkCopies:
		v, err := strconv.Atoi(value)
		if err != nil || labeling.ValidateCopies(v) != nil {
			return
		}
		if k == keyLabelCopies {
			cfg.DefaultLabelCopies = v
		} else {
			cfg.DefaultBulkCopies = v
		}
	}
}

// FormatLabelSize serializes the settings in the form ParseLabelSize reads
func FormatLabelSize(cfg labeling.LabelSizeConfig) []byte {
	printer := cfg.DefaultPrinter
	if printer == "" {
		printer = "default"
	}
	var b bytes.Buffer
	b.WriteString("# Label settings\n")
	fmt.Fprintf(&b, "width: %s\n", strconv.FormatFloat(cfg.WidthCm, 'f', -1, 64))
	fmt.Fprintf(&b, "height: %s\n", strconv.FormatFloat(cfg.HeightCm, 'f', -1, 64))
	fmt.Fprintf(&b, "font: %s\n", cfg.FontName)
	fmt.Fprintf(&b, "fontsize: %d\n", cfg.FontSize)
	fmt.Fprintf(&b, "extra_weight: %s\n", cfg.ExtraWeightDefault.String())
	fmt.Fprintf(&b, "printer: %s\n", printer)
	fmt.Fprintf(&b, "label_copies: %d\n", cfg.DefaultLabelCopies)
	fmt.Fprintf(&b, "bulk_copies: %d\n", cfg.DefaultBulkCopies)
	return b.Bytes()
}

// LabelSizeStore holds the process-wide label settings backed by
// label_size.txt
type LabelSizeStore struct {
	path    string
	logger  *zap.Logger
	mu      sync.RWMutex
	current labeling.LabelSizeConfig
}

// NewLabelSizeStore loads the settings file. A missing or unreadable file
// yields the defaults.
func NewLabelSizeStore(path string, logger *zap.Logger) *LabelSizeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LabelSizeStore{path: path, logger: logger, current: labeling.DefaultLabelSizeConfig()}

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("label settings file not found, using defaults", zap.String("path", path))
		return s
	case err != nil:
		logger.Warn("failed to open label settings, using defaults", zap.String("path", path), zap.Error(err))
		return s
	}
	defer f.Close()

	cfg, err := ParseLabelSize(f)
	if err != nil {
		logger.Warn("failed to read label settings, using defaults", zap.String("path", path), zap.Error(err))
		return s
	}
	s.current = cfg
	logger.Info("label settings loaded",
		zap.String("path", path),
		zap.String("size", cfg.SizeLabel()),
		zap.String("font", cfg.FontName),
		zap.Int("font_size", cfg.FontSize))
	return s
}

// Get returns the current settings
func (s *LabelSizeStore) Get() labeling.LabelSizeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies the patch, persists the result and only then makes it
// current. A rejected or failed update leaves the settings unchanged.
func (s *LabelSizeStore) Update(patch labeling.LabelSizePatch) (labeling.LabelSizeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.current)
	if err := next.Validate(); err != nil {
		return s.current, err
	}
	if err := storage.WriteFileAtomic(s.path, FormatLabelSize(next), 0o644); err != nil {
		return s.current, fmt.Errorf("failed to save label settings: %w", err)
	}
	s.current = next
	s.logger.Info("label settings saved", zap.String("path", s.path), zap.String("size", next.SizeLabel()))
	return next, nil
}

package imageprocessor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/PixelDen/internal/pkg/env"
	"github.com/ManuelReschke/PixelDen/internal/pkg/storagepath"
)

const (
	// DefaultQuality is the lossy encoder quality used when a size spec
	// does not carry its own.
	DefaultQuality = 85

	// DefaultMaxWorkers bounds concurrent background ingests.
	DefaultMaxWorkers = 3
)

// SizeSpec is one named transformation rule. Exactly one of Height, Width or
// LongEdge must be set; the variant file is named "<Name>.webp".
type SizeSpec struct {
	Name     string `json:"name" validate:"required"`
	Height   int    `json:"height,omitempty" validate:"min=0"`
	Width    int    `json:"width,omitempty" validate:"min=0"`
	LongEdge int    `json:"long_edge,omitempty" validate:"min=0"`
	Quality  int    `json:"quality" validate:"min=0,max=100"`
}

// Config is the process-wide pipeline configuration. It is passed explicitly
// to NewPipeline; nothing is configured at package load time.
type Config struct {
	StorageRoot string     `validate:"required"`
	Sizes       []SizeSpec `validate:"required,min=1,unique=Name,dive"`
	MaxWorkers  int        `validate:"min=1"`
}

// DefaultSizeSpecs returns the standard variant set, in render order.
func DefaultSizeSpecs() []SizeSpec {
	return []SizeSpec{
		{Name: "thumb", Height: 300, Quality: 80},
		{Name: "featured", Height: 600, Quality: 85},
		{Name: "display", LongEdge: 1600, Quality: 85},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(sizeSpecStructLevel, SizeSpec{})
	return v
}

func sizeSpecStructLevel(sl validator.StructLevel) {
	spec := sl.Current().Interface().(SizeSpec)

	constraints := 0
	for _, dim := range []int{spec.Height, spec.Width, spec.LongEdge} {
		if dim > 0 {
			constraints++
		}
	}
	if constraints != 1 {
		sl.ReportError(spec.Height, "Height", "Height", "oneconstraint", "")
	}

	if spec.Name == storagepath.OriginalSizeName {
		sl.ReportError(spec.Name, "Name", "Name", "reservedname", "")
	}
}

// Validate checks the whole configuration, including that every SizeSpec
// carries exactly one size constraint and a usable quality.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	return nil
}

// LoadConfig builds the pipeline configuration from the environment.
// IMAGE_SIZES entries look like "thumb:h300:q80", "card:w400:q75" or
// "display:l1600:q85", comma separated, rendered in the given order.
func LoadConfig() (Config, error) {
	cfg := Config{
		StorageRoot: env.GetEnv("STORAGE_ROOT", "uploads/images"),
		Sizes:       DefaultSizeSpecs(),
		MaxWorkers:  DefaultMaxWorkers,
	}

	if raw := env.GetEnv("MAX_WORKERS", ""); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_WORKERS %q: %w", raw, err)
		}
		cfg.MaxWorkers = workers
	}

	if raw := env.GetEnv("IMAGE_SIZES", ""); raw != "" {
		sizes, err := ParseSizeSpecs(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Sizes = sizes
	}

	return cfg, nil
}

// ParseSizeSpecs parses the IMAGE_SIZES environment format.
func ParseSizeSpecs(raw string) ([]SizeSpec, error) {
	var sizes []SizeSpec
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		spec, err := parseSizeSpec(entry)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, spec)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no size specs in %q", raw)
	}
	return sizes, nil
}

func parseSizeSpec(entry string) (SizeSpec, error) {
	parts := strings.Split(entry, ":")
	if len(parts) < 2 {
		return SizeSpec{}, fmt.Errorf("invalid size spec %q, want name:constraint[:qNN]", entry)
	}

	spec := SizeSpec{Name: parts[0], Quality: DefaultQuality}
	if spec.Name == "" {
		return SizeSpec{}, fmt.Errorf("invalid size spec %q, empty name", entry)
	}

	for _, part := range parts[1:] {
		if len(part) < 2 {
			return SizeSpec{}, fmt.Errorf("invalid field %q in size spec %q", part, entry)
		}
		value, err := strconv.Atoi(part[1:])
		if err != nil {
			return SizeSpec{}, fmt.Errorf("invalid field %q in size spec %q: %w", part, entry, err)
		}
		switch part[0] {
		case 'h':
			spec.Height = value
		case 'w':
			spec.Width = value
		case 'l':
			spec.LongEdge = value
		case 'q':
			spec.Quality = value
		default:
			return SizeSpec{}, fmt.Errorf("unknown field %q in size spec %q", part, entry)
		}
	}

	return spec, nil
}

package analysis

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/nucleus-tools-mcp/internal/config"
	"github.com/ironsheep/nucleus-tools-mcp/internal/detection"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
	"github.com/ironsheep/nucleus-tools-mcp/internal/observability"
	"github.com/ironsheep/nucleus-tools-mcp/internal/profile"
	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

// Options controls every pipeline stage.
type Options struct {
	Mask             imaging.MaskOptions
	Detect           detection.Options
	WindowProportion float64
	Segment          profile.SegmentOptions
}

// OptionsFromConfig collects pipeline options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mask:             cfg.Detection.MaskOptions(),
		Detect:           cfg.Detection.DetectOptions(),
		WindowProportion: cfg.Profile.WindowProportion,
		Segment:          cfg.Profile.SegmentOptions(),
	}
}

// Nucleus is one analysed nucleus.
type Nucleus struct {
	Path string

	// Detection holds the component, traced border and shape measurements.
	Detection *detection.Nucleus

	// Threshold is the intensity level the mask was cut at.
	Threshold int

	// Landmark is the border index of the reference point.
	Landmark int

	// Profile is the angle profile re-indexed so the landmark is at zero.
	// Ring indices refer to this profile.
	Profile profile.Profile

	// Ring is the segmentation of Profile.
	Ring *segment.Ring
}

// BorderPoint returns the image coordinate of profile index i.
func (n *Nucleus) BorderPoint(i int) detection.Point {
	border := n.Detection.Border
	return border[segment.Wrap(n.Landmark+i, len(border))]
}

// Pipeline analyses images with a fixed set of options.
type Pipeline struct {
	cache   *imaging.ImageCache
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPipeline creates a pipeline. A nil logger discards output and nil
// metrics are replaced by an unregistered set.
func NewPipeline(cache *imaging.ImageCache, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	if logger == nil {
		logger = observability.Discard()
	}

	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}

	return &Pipeline{cache: cache, opts: opts, logger: logger, metrics: metrics}
}

// Cache returns the image cache shared by the pipeline.
func (p *Pipeline) Cache() *imaging.ImageCache { return p.cache }

// Options returns the pipeline options.
func (p *Pipeline) Options() Options { return p.opts }

// Analyze loads the image at path and takes it through every stage.
func (p *Pipeline) Analyze(ctx context.Context, path string) (*Nucleus, error) {
	start := time.Now()

	n, err := p.analyzePath(ctx, path)

	p.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	p.metrics.NucleiAnalyzed.WithLabelValues(observability.Outcome(err)).Inc()

	if err != nil {
		p.logger.Debug("analysis failed", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}

	p.logger.Debug("nucleus analysed",
		slog.String("path", path),
		slog.Int("area", n.Detection.Area),
		slog.Int("border", len(n.Detection.Border)),
		slog.Int("segments", n.Ring.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return n, nil
}

func (p *Pipeline) analyzePath(ctx context.Context, path string) (*Nucleus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := p.cache.Load(path)
	if err != nil {
		return nil, err
	}

	n, err := p.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n.Path = path

	return n, nil
}

// AnalyzeImage runs the stages after loading on an already decoded image.
func (p *Pipeline) AnalyzeImage(ctx context.Context, img image.Image) (*Nucleus, error) {
	mask, err := imaging.BuildMask(img, p.opts.Mask)
	if err != nil {
		return nil, fmt.Errorf("build mask: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	det, err := detection.DetectNucleus(mask.Mask, p.opts.Detect)
	if err != nil {
		return nil, err
	}

	angles, err := profile.Angles(det.Border, p.opts.WindowProportion)
	if err != nil {
		return nil, fmt.Errorf("angle profile: %w", err)
	}

	landmark := angles.Landmark()
	offset := angles.Offset(landmark)

	ring, err := profile.Segment(offset, p.opts.Segment)
	if err != nil {
		return nil, err
	}

	return &Nucleus{
		Detection: det,
		Threshold: mask.Threshold,
		Landmark:  landmark,
		Profile:   offset,
		Ring:      ring,
	}, nil
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/readalongapp/digitizer/internal/config"
	"github.com/readalongapp/digitizer/internal/logger"
	"github.com/readalongapp/digitizer/internal/media/frames"
	"github.com/readalongapp/digitizer/internal/ocr"
	"github.com/readalongapp/digitizer/internal/pipeline"
	"github.com/readalongapp/digitizer/internal/selector"
)

// ProvideOCREngine provides the tesseract recognition engine.
func ProvideOCREngine(i do.Injector) (ocr.Engine, error) {
	return ocr.NewTesseractEngine(), nil
}

// ProvideExtractor provides the frame extractor.
func ProvideExtractor(i do.Injector) (*frames.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return frames.NewExtractor(cfg.Extract.FPS, cfg.Extract.Format, cfg.Extract.FFmpegPath, log.Logger), nil
}

// ProvideSelector provides the best-frame selector.
func ProvideSelector(i do.Injector) (*selector.Selector, error) {
	engine := do.MustInvoke[ocr.Engine](i)
	log := do.MustInvoke[*logger.Logger](i)

	return selector.New(engine, log.Logger), nil
}

// ProvidePipeline provides the digitization pipeline.
func ProvidePipeline(i do.Injector) (*pipeline.Pipeline, error) {
	extractor := do.MustInvoke[*frames.Extractor](i)
	sel := do.MustInvoke[*selector.Selector](i)
	log := do.MustInvoke[*logger.Logger](i)

	return pipeline.New(extractor, sel, log.Logger), nil
}

// PipelineOptions builds run options from configuration.
func PipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		OutputPath: cfg.Data.OutputPath,
		Select: selector.Options{
			WindowSeconds:       cfg.Select.WindowSeconds,
			MinScore:            cfg.Select.MinScore,
			CandidatesPerWindow: cfg.Select.CandidatesPerWindow,
			UseOCR:              cfg.Select.UseOCR,
			Workers:             cfg.OCR.Workers,
			Language:            cfg.OCR.Language,
		},
		Previews: true,
	}
}

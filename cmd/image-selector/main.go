package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	imageselector "github.com/menta2k/image-selector"
	"github.com/menta2k/image-selector/internal/config"
	"github.com/menta2k/image-selector/internal/utils"
	"github.com/menta2k/image-selector/pkg/gesture"
	"github.com/menta2k/image-selector/pkg/imageio"
	"github.com/menta2k/image-selector/pkg/preview"
	"github.com/menta2k/image-selector/pkg/types"
)

func main() {
	var in, script, drag, outDir, ext, configPath, boundary string
	var backend, model, url, emitScript string
	var quality, steps int
	var lossless, noBoundary, debug, dataURL, trace, crop bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&script, "script", "", "gesture script (NDJSON), '-' for stdin")
	flag.StringVar(&drag, "drag", "", "synthesize a drag: x0,y0,x1,y1")
	flag.IntVar(&steps, "steps", 10, "move events per synthesized drag")
	flag.StringVar(&outDir, "out", "", "output directory for previews (default from config)")
	flag.StringVar(&ext, "ext", "", "preview format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP preview quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP preview lossless mode")
	flag.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+" if present)")
	flag.StringVar(&boundary, "boundary", "", "selection boundary: x,y,w,h")
	flag.BoolVar(&noBoundary, "noboundary", false, "allow selections anywhere on the surface")
	flag.StringVar(&backend, "suggest", "", "initial selection: none|saliency|ollama")
	flag.StringVar(&model, "model", "", "ollama model name")
	flag.StringVar(&url, "url", "", "ollama server URL")
	flag.BoolVar(&debug, "debug", false, "write the final surface with overlay")
	flag.BoolVar(&dataURL, "dataurl", false, "print the last preview as a data URL")
	flag.BoolVar(&crop, "crop", false, "also write the selection cropped from the source image")
	flag.BoolVar(&trace, "trace", false, "log selection state transitions")
	flag.StringVar(&emitScript, "emit-script", "", "write the replayed events to this file as NDJSON")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-script gesture.ndjson | -drag x0,y0,x1,y1 | -suggest saliency|ollama] [-out outdir] [-ext png|jpg|webp]", filepath.Base(os.Args[0]))
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Command line flags override the config file
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ext != "" {
		cfg.Output.Format = ext
	}
	if quality != 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if boundary != "" {
		r, err := utils.ParseRect(boundary)
		if err != nil {
			log.Fatalf("invalid -boundary: %v", err)
		}
		cfg.Boundary = config.BoundaryConfig{Enabled: true, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	if noBoundary {
		cfg.Boundary.Enabled = false
	}
	if backend != "" {
		cfg.Suggest.Backend = backend
	}
	if model != "" {
		cfg.Suggest.Model = model
	}
	if url != "" {
		cfg.Suggest.URL = url
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	sel := imageselector.NewWithConfig(cfg)
	if trace {
		sel.SetLogger(log.New(os.Stderr, "", log.LstdFlags))
	}

	files := preview.NewFileSink(sel.Codec(), preview.FileConfig{
		OutputDir: cfg.Output.OutputDir,
		Prefix:    cfg.Output.Prefix,
		Format:    cfg.Output.Format,
		Quality:   cfg.Output.Quality,
		Lossless:  cfg.Output.Lossless,
	})
	files.OnSaved = func(path string) { log.Printf("wrote %s", path) }
	files.OnError = func(err error) { log.Printf("preview save failed: %v", err) }
	sel.AddPreviewSink(files)

	var urls *preview.DataURLSink
	if dataURL {
		urls = preview.NewDataURLSink(sel.Codec(), cfg.Output.Format, cfg.Output.Quality)
		sel.AddPreviewSink(urls)
	}

	if err := sel.LoadImage(in); err != nil {
		log.Fatal(err)
	}
	info := imageio.GetImageInfo(sel.Image())
	log.Printf("loaded %s (%dx%d, ratio %.2f) into boundary %v", in, info.Width, info.Height, info.AspectRatio, sel.Controller().Boundary())

	suggester, err := imageselector.NewSuggester(cfg.Suggest)
	if err != nil {
		log.Fatal(err)
	}
	if suggester != nil {
		sel.SetSuggester(suggester)
		r, err := sel.Suggest(context.Background())
		if err != nil {
			log.Printf("suggestion skipped: %v", err)
		} else {
			log.Printf("suggested selection %.0f,%.0f %.0fx%.0f", r.X, r.Y, r.Width, r.Height)
		}
	}

	events, err := collectEvents(script, drag, steps)
	if err != nil {
		log.Fatal(err)
	}
	if len(events) > 0 {
		if err := sel.Run(context.Background(), gesture.Feed(context.Background(), events)); err != nil {
			log.Fatal(err)
		}
		log.Printf("replayed %d events, state=%s", len(events), sel.Controller().State())
	}

	if emitScript != "" {
		if err := writeScript(emitScript, events); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", emitScript)
	}

	final := sel.Selection()
	log.Printf("final selection %.0f,%.0f %.0fx%.0f", final.X, final.Y, final.Width, final.Height)

	if crop {
		img, err := sel.Crop()
		if err != nil {
			log.Printf("crop skipped: %v", err)
		} else {
			path := utils.OutputPath(in, cfg.Output.OutputDir, "_crop", cfg.Output.Format)
			if err := sel.Codec().SaveImage(img, path, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
				log.Printf("crop save failed: %v", err)
			} else {
				log.Printf("wrote %s", path)
			}
		}
	}

	if debug {
		if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
			log.Fatal(err)
		}
		path := filepath.Join(cfg.Output.OutputDir, "000_surface.png")
		if err := sel.SaveSnapshot(path, "png", 100); err != nil {
			log.Printf("debug surface save failed: %v", err)
		} else {
			log.Printf("wrote %s", path)
		}
	}

	if urls != nil {
		if err := urls.Err(); err != nil {
			log.Printf("data URL failed: %v", err)
		} else if last := urls.Last(); last != "" {
			fmt.Println(last)
		}
	}

	if err := files.Err(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads path, or the default config file when it exists
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default(), nil
		}
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("using config %s", path)
	return cfg, nil
}

// collectEvents gathers events from a script and a synthesized drag
func collectEvents(script, drag string, steps int) ([]types.PointerEvent, error) {
	var events []types.PointerEvent

	if script != "" {
		r := os.Stdin
		if script != "-" {
			f, err := os.Open(script)
			if err != nil {
				return nil, fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			r = f
		}
		parsed, err := gesture.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse script %s: %w", script, err)
		}
		events = append(events, parsed...)
	}

	if drag != "" {
		v, err := utils.ParseFloats(drag, 4)
		if err != nil {
			return nil, fmt.Errorf("invalid -drag: %w", err)
		}
		events = append(events, gesture.Drag(types.Pt(v[0], v[1]), types.Pt(v[2], v[3]), steps, types.Modifiers{})...)
	}

	return events, nil
}

func writeScript(path string, events []types.PointerEvent) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := gesture.Write(f, events); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

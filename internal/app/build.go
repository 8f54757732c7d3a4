package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amoebajs/builder-sub000/internal/compiler"
	"github.com/amoebajs/builder-sub000/internal/config"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/emit"
	"github.com/amoebajs/builder-sub000/internal/publish"
)

// OutputExt is the extension of written documents.
const OutputExt = ".tsx"

// Result is the outcome of compiling one page.
type Result struct {
	Page     string
	Provider string
	Path     string // empty when written to the output writer
	Source   string
}

// Build compiles every loaded page. A failing page does not stop the others;
// all failures are returned joined.
func (a *App) Build(ctx context.Context) ([]Result, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	a.mu.RLock()
	reg, model, pub := a.registry, a.model, a.publisher
	a.mu.RUnlock()

	if len(model.Pages) == 0 {
		logger.Warn("No pages found, nothing to build.", "path", a.cfg.PagesPath)
		return nil, nil
	}

	start := time.Now()
	comp := compiler.New(reg)
	var (
		results []Result
		errs    []error
	)
	for _, page := range model.Pages {
		res, err := a.buildPage(ctx, comp, page)
		if err != nil {
			logger.Error("Page failed to compile.", "page", page.Name, "file", page.FilePath, "error", err)
			errs = append(errs, fmt.Errorf("page %s: %w", page.Name, err))
			continue
		}
		results = append(results, res)

		if pub != nil {
			doc := publish.Document{Page: res.Page, Provider: res.Provider, Path: res.Path, Source: res.Source}
			if err := pub.Publish(ctx, doc); err != nil {
				logger.Warn("Failed to publish document.", "page", page.Name, "error", err)
			}
		}
	}

	logger.Info("Build finished.", "pages", len(results), "failed", len(errs), "duration", time.Since(start))
	return results, errors.Join(errs...)
}

func (a *App) buildPage(ctx context.Context, comp *compiler.Compiler, page *config.Page) (Result, error) {
	provider := page.Provider
	if provider == "" {
		provider = a.cfg.Provider
	}

	doc, err := comp.Compile(ctx, page.Root, provider, page.Name, page.Unexported)
	if err != nil {
		return Result{}, err
	}
	source, err := emit.Sprint(doc)
	if err != nil {
		return Result{}, fmt.Errorf("failed to print document: %w", err)
	}

	res := Result{Page: page.Name, Provider: provider, Source: source}
	if a.cfg.OutputDir == "" {
		if _, err := fmt.Fprintf(a.outW, "// %s%s\n%s\n", page.Name, OutputExt, source); err != nil {
			return Result{}, err
		}
		return res, nil
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	res.Path = filepath.Join(a.cfg.OutputDir, page.Name+OutputExt)
	if err := os.WriteFile(res.Path, []byte(source), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", res.Path, err)
	}
	ctxlog.FromContext(ctx).Info("Page written.", "page", page.Name, "path", res.Path)
	return res, nil
}

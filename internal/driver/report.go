package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/trace"
)

// writeOutputs writes the API report, rollups and doc model. It returns
// whether the report differs from its baseline.
func writeOutputs(ctx context.Context, cfg *config.Config, out *outputs, router *diag.Router, localBuild bool) (bool, error) {
	var changed bool
	if cfg.APIReport.IsEnabled() {
		var err error
		changed, err = checkAPIReport(ctx, cfg, out.report, router, localBuild)
		if err != nil {
			return false, err
		}
	}
	for _, kind := range rollupKinds {
		text, ok := out.rollups[kind]
		path := rollupPath(cfg, kind)
		if !ok || path == "" {
			continue
		}
		router.LogConsole(diag.LevelVerbose, diag.ConsoleWritingDtsRollup, "Writing package typings: "+displayPath(cfg, path))
		if err := writeFile(path, []byte(text)); err != nil {
			return false, fmt.Errorf("write %s rollup: %w", kind, err)
		}
	}
	if cfg.DocModel.Enabled && out.docModel != nil {
		path := cfg.DocModel.APIJSONFilePath
		router.LogConsole(diag.LevelVerbose, diag.ConsoleWritingDocModelFile, "Writing: "+displayPath(cfg, path))
		if err := writeFile(path, out.docModel); err != nil {
			return false, fmt.Errorf("write doc model: %w", err)
		}
	}
	return changed, nil
}

// checkAPIReport writes the report to the temp folder and compares it with the
// baseline. A local build copies a changed or missing report over the baseline.
func checkAPIReport(ctx context.Context, cfg *config.Config, report string, router *diag.Router, localBuild bool) (bool, error) {
	_, span := trace.Start(ctx, trace.ScopeDetail, "api-report")
	defer span.End("")

	tempPath := cfg.ReportTempPath()
	expectedPath := cfg.ReportPath()
	if err := writeFile(tempPath, []byte(report)); err != nil {
		return false, fmt.Errorf("write API report: %w", err)
	}

	expected, err := os.ReadFile(expectedPath)
	switch {
	case err == nil:
		if normalizeNewlines(expected) == normalizeNewlines([]byte(report)) {
			router.LogConsole(diag.LevelVerbose, diag.ConsoleAPIReportUnchanged,
				"The API report is up to date: "+displayPath(cfg, expectedPath))
			return false, nil
		}
		if !localBuild {
			router.LogConsole(diag.LevelWarning, diag.ConsoleAPIReportNotCopied,
				"You have changed the public API signature for this project. Please copy the file \""+
					displayPath(cfg, tempPath)+"\" to \""+displayPath(cfg, expectedPath)+
					"\", or perform a local build (which does this automatically).")
			return true, nil
		}
		router.LogConsole(diag.LevelWarning, diag.ConsoleAPIReportCopied,
			"You have changed the public API signature for this project. Updating "+displayPath(cfg, expectedPath))
		if err := os.WriteFile(expectedPath, []byte(report), 0o644); err != nil {
			return true, fmt.Errorf("update API report: %w", err)
		}
		return true, nil

	case errors.Is(err, os.ErrNotExist):
		if !localBuild {
			router.LogConsole(diag.LevelWarning, diag.ConsoleAPIReportMissing,
				"The API report file is missing. Please copy the file \""+displayPath(cfg, tempPath)+
					"\" to \""+displayPath(cfg, expectedPath)+"\", or perform a local build (which does this automatically).")
		}
		folder := filepath.Dir(expectedPath)
		if info, statErr := os.Stat(folder); statErr != nil || !info.IsDir() {
			router.LogConsole(diag.LevelError, diag.ConsoleAPIReportFolderMissing,
				"Unable to create the API report file. Please make sure the target folder exists: "+displayPath(cfg, folder))
			return true, nil
		}
		if err := os.WriteFile(expectedPath, []byte(report), 0o644); err != nil {
			return true, fmt.Errorf("create API report: %w", err)
		}
		router.LogConsole(diag.LevelWarning, diag.ConsoleAPIReportCreated,
			"The API report file was missing, so a new file was created. Please add this file to source control: "+displayPath(cfg, expectedPath))
		return true, nil

	default:
		return false, fmt.Errorf("read API report baseline: %w", err)
	}
}

func normalizeNewlines(b []byte) string {
	return string(bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n")))
}

// displayPath shows paths below the project folder relative to it.
func displayPath(cfg *config.Config, path string) string {
	return source.RelativePath(path, cfg.Root)
}

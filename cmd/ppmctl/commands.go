package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ppm/internal/csvexport"
	"ppm/internal/domain"
	"ppm/internal/fingerprint"
	"ppm/internal/port"
	"ppm/internal/render"
	"ppm/internal/session"
)

func runFingerprint(cmd *cobra.Command, args []string) error {
	files, closeAll, err := openFiles(args)
	if err != nil {
		return err
	}
	closeAll()

	descriptors := make([]domain.FileDescriptor, 0, len(files))
	for _, f := range files {
		descriptors = append(descriptors, f.Descriptor())
	}
	fp, err := fingerprint.Build(descriptors)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fingerprint: %s\n", fp.Value)
	fmt.Fprintf(out, "bucket:      %s\n", fp.Bucket)
	fmt.Fprintf(out, "route:       %s\n", fingerprint.FallbackRoute(fp))
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	files, closeAll, err := openFiles(args)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := a.previews.Validate(files); err != nil {
		return err
	}
	result, err := a.negotiation.Negotiate(cmd.Context(), a.sessionID, files)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.UserMessage(err), err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s via %s\n", result.Decision, result.Route)

	analysis := result.Analysis
	if analysis == nil {
		page, err := a.viewer.View(cmd.Context(), a.sessionID)
		if err != nil {
			return err
		}
		if page.Error != "" {
			return errors.New(page.Error)
		}
		analysis = page.Analysis
	}
	return writeOutputs(cmd, analysis)
}

func runView(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.viewer.View(cmd.Context(), a.sessionID)
	if err != nil {
		return err
	}
	if page.Error != "" {
		return errors.New(page.Error)
	}
	if page.Analysis == nil {
		fmt.Fprintln(cmd.OutOrStdout(), render.NothingLoaded)
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s)\n", page.Title, page.Source)
	return writeOutputs(cmd, page.Analysis)
}

func runFolders(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	listing, err := a.folders.List(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if name, _ := cmd.Flags().GetString("open"); name != "" {
		for _, f := range listing.Folders {
			if f.Name == name {
				return a.folders.Open(cmd.Context(), a.sessionID, f.Route)
			}
		}
		return fmt.Errorf("folder %q: %w", name, domain.ErrNotFound)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCACHED\tROUTE")
	for _, f := range listing.Folders {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", f.Name, f.Cached, f.Route)
	}
	return tw.Flush()
}

func runCache(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	entry := a.api.GetCacheByRoute(cmd.Context(), domain.Route(args[0]))
	if !entry.Exists {
		fmt.Fprintln(cmd.OutOrStdout(), "not cached")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cached")
	if entry.Analysis != nil {
		fmt.Fprint(cmd.OutOrStdout(), render.Text(render.Render(entry.Analysis)))
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return session.NewState(a.store, a.sessionID).ClearSelection(cmd.Context())
}

// writeOutputs prints analysis in the requested format and writes the
// optional spreadsheet exports.
func writeOutputs(cmd *cobra.Command, analysis *domain.AnalysisResult) error {
	format, _ := cmd.Flags().GetString("format")
	details, _ := cmd.Flags().GetBool("details")
	out := cmd.OutOrStdout()

	report := render.Render(analysis)
	if report.Details != nil {
		report.Details.Visible = details
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case "yaml":
		if err := render.WriteYAML(out, report); err != nil {
			return err
		}
	case "text", "":
		fmt.Fprint(out, render.Text(report))
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return render.WriteXLSX(w, analysis) }); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return csvexport.Export(w, analysis) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// openFiles opens the named files as an upload selection.
func openFiles(paths []string) ([]port.UploadFile, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]port.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("opening %s: %w", p, err)
		}
		opened = append(opened, f)

		info, err := f.Stat()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("stat %s: %w", p, err)
		}
		ext := strings.ToLower(filepath.Ext(p))
		files = append(files, port.UploadFile{
			Name:        filepath.Base(p),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(ext),
			Content:     f,
		})
	}
	return files, closeAll, nil
}

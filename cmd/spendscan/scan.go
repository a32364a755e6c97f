package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leafmint/spendscan/internal/cli"
	"github.com/leafmint/spendscan/internal/engine"
	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/ocr"
	"github.com/leafmint/spendscan/internal/profile"
	"github.com/leafmint/spendscan/internal/storage"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [image]",
		Short: "Classify a photographed invoice or receipt",
		Long: `Scan sends an invoice image to the OCR provider, normalizes the
recognized text, and predicts the best-matching spending category.

The raw recognized text is always shown, even when no category clears
the confidence threshold.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().String("dir", "", "scan every image in a directory")
	cmd.Flags().Bool("show-text", false, "print the full recognized text")

	cmd.AddCommand(scanHistoryCmd())
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	showText, _ := cmd.Flags().GetBool("show-text")

	if dir == "" && len(args) == 0 {
		return fmt.Errorf("provide an image path or --dir")
	}

	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	eng, err := buildEngine(store)
	if err != nil {
		return err
	}

	if dir != "" {
		return scanDirectory(cmd, eng, store, dir, showText)
	}
	return scanOne(cmd, eng, store, args[0], showText)
}

// buildEngine assembles the recognizer, profile cache, and classifier
// from configuration. Configuration problems fail here, before any
// image is read.
func buildEngine(store *storage.SQLiteStorage) (*engine.Engine, error) {
	recognizer, err := ocr.NewRecognizer(ocr.Config{
		Provider: viper.GetString("ocr.provider"),
		APIKey:   viper.GetString("ocr.api_key"),
		Endpoint: viper.GetString("ocr.endpoint"),
	})
	if err != nil {
		return nil, err
	}

	rules, err := loadRules()
	if err != nil {
		return nil, err
	}

	cache := profile.NewCache(store, rules, viper.GetDuration("classifier.cache_ttl"))
	return engine.NewWithConfig(recognizer, cache, engine.Config{
		Divisor:   viper.GetFloat64("classifier.divisor"),
		Threshold: viper.GetFloat64("classifier.threshold"),
	}), nil
}

// loadRules reads the keyword rule table from rules.path when set,
// otherwise uses the built-in table.
func loadRules() (*profile.RuleTable, error) {
	path := viper.GetString("rules.path")
	if path == "" {
		return profile.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return profile.ParseRules(data)
}

func scanOne(cmd *cobra.Command, eng *engine.Engine, store *storage.SQLiteStorage, path string, showText bool) error {
	outcome, err := classifyFile(cmd.Context(), eng, store, path)
	if err != nil {
		return err
	}

	printOutcome(cmd, path, outcome, showText)
	return nil
}

func scanDirectory(cmd *cobra.Command, eng *engine.Engine, store *storage.SQLiteStorage, dir string, showText bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)

	if len(images) == 0 {
		cmd.Println(cli.FormatWarning("no images found in " + dir))
		return nil
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning invoices..."),
	)

	var failed int
	for _, path := range images {
		outcome, err := classifyFile(cmd.Context(), eng, store, path)
		_ = bar.Add(1)
		if err != nil {
			failed++
			cmd.Println(cli.FormatError(fmt.Sprintf("%s: %v", filepath.Base(path), err)))
			continue
		}
		printOutcome(cmd, path, outcome, showText)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(images))
	}
	return nil
}

// classifyFile runs one image through the engine and records the scan.
// The scan row is written even for provider-errored results so the
// history shows what happened.
func classifyFile(ctx context.Context, eng *engine.Engine, store *storage.SQLiteStorage, path string) (engine.ScanOutcome, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return engine.ScanOutcome{}, fmt.Errorf("failed to read image: %w", err)
	}

	fileName := filepath.Base(path)
	outcome, classifyErr := eng.ClassifyInvoice(ctx, image, fileName, contentTypeFor(path))

	record := &model.ScanRecord{
		FileName:     fileName,
		ParsedText:   outcome.OCR.Text(),
		ElapsedMS:    outcome.OCR.ElapsedMS,
		UsedLanguage: outcome.OCR.UsedLanguage,
		UsedEngine:   outcome.OCR.UsedEngine,
	}
	if outcome.Prediction != nil {
		record.CategoryID = &outcome.Prediction.CategoryID
		record.CategoryName = &outcome.Prediction.CategoryName
		record.Confidence = &outcome.Prediction.Confidence
	}
	if err := store.SaveScan(ctx, record); err != nil {
		return outcome, fmt.Errorf("failed to record scan: %w", err)
	}

	return outcome, classifyErr
}

func printOutcome(cmd *cobra.Command, path string, outcome engine.ScanOutcome, showText bool) {
	var lines []string

	if outcome.Prediction != nil {
		lines = append(lines, cli.FormatSuccess(fmt.Sprintf("%s  (%.0f%% confidence)",
			outcome.Prediction.CategoryName, outcome.Prediction.Confidence*100)))
	} else {
		lines = append(lines, cli.FormatWarning("no confident category"))
	}

	diag := fmt.Sprintf("engine %s, %dms", outcome.OCR.UsedEngine, outcome.OCR.ElapsedMS)
	if outcome.OCR.AutoDetected {
		diag += ", auto-detected language"
	}
	lines = append(lines, cli.SubtleStyle.Render(diag))

	if showText {
		lines = append(lines, "", outcome.OCR.Text())
	} else if text := strings.TrimSpace(outcome.OCR.Text()); text != "" {
		preview := text
		if len(preview) > 120 {
			preview = preview[:120] + "…"
		}
		lines = append(lines, cli.SubtleStyle.Render(preview))
	}

	cmd.Println(cli.RenderBox(filepath.Base(path), strings.Join(lines, "\n")))
}

func scanHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStorage()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			scans, err := store.GetRecentScans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(scans) == 0 {
				cmd.Println(cli.FormatWarning("no scans recorded yet"))
				return nil
			}

			cmd.Println(cli.FormatTitle("Recent scans"))
			for _, scan := range scans {
				category := "—"
				if scan.CategoryName != nil {
					category = fmt.Sprintf("%s (%.0f%%)", *scan.CategoryName, *scan.Confidence*100)
				}
				cmd.Printf("%s  %-28s %s\n",
					scan.CreatedAt.Format("2006-01-02 15:04"),
					scan.FileName,
					category)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum scans to list")
	return cmd
}

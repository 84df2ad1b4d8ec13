package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"knife/internal/config"
	"knife/internal/db"
	applog "knife/internal/log"
	"knife/internal/store"
	"knife/models"
)

// flagColumns are the optional boolean columns, by header name.
var flagColumns = []string{"dairy", "meat", "gluten", "animal_product"}

var (
	backendFlag string
	urlFlag     string
	updateFlag  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import_ingredients [csv file]",
		Short: "Imports ingredients and their dietary flags from a CSV file",
		Long: `Reads a CSV with a "name" column and optional dairy, meat, gluten and
animal_product columns, and creates one ingredient per row in the configured
database. Rows whose name is already taken are skipped unless --update is set.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVar(&backendFlag, "backend", "", "storage backend (sqlite, pgsql, document); defaults to DATABASE_BACKEND")
	cmd.Flags().StringVar(&urlFlag, "url", "", "database path or DSN; defaults to DATABASE_URL")
	cmd.Flags().BoolVar(&updateFlag, "update", false, "overwrite the flags of ingredients that already exist")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if backendFlag != "" {
		cfg.Database.Backend = backendFlag
	}
	if urlFlag != "" {
		cfg.Database.URL = urlFlag
	}

	s, err := db.Configure(ctx, cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			applog.Error(ctx, "failed to close database", "error", err)
		}
	}()

	summary, err := importIngredients(ctx, s, records, updateFlag)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d ingredients from %s (%d updated, %d skipped)\n",
		summary.created, filepath.Base(csvPath), summary.updated, summary.skipped)
	return nil
}

type importSummary struct {
	created int
	updated int
	skipped int
}

func importIngredients(ctx context.Context, s *store.Store, records []map[string]string, update bool) (importSummary, error) {
	var summary importSummary
	for idx, record := range records {
		params, err := ingredientParams(record)
		if err != nil {
			return summary, fmt.Errorf("record %d: %w", idx+1, err)
		}

		_, err = s.CreateIngredient(ctx, params)
		if err == nil {
			summary.created++
			continue
		}

		var se *store.Error
		if !errors.As(err, &se) || se.Kind != store.AlreadyExists {
			return summary, fmt.Errorf("record %d (%s): %w", idx+1, record["name"], err)
		}
		existing, _ := se.Data.(models.Ingredient)
		if !update || existing.ID == "" {
			applog.Debug(ctx, "ingredient exists, skipping", "name", record["name"])
			summary.skipped++
			continue
		}

		delete(params, "name")
		if len(params) == 0 {
			summary.skipped++
			continue
		}
		if _, err := s.EditIngredient(ctx, existing.ID, params); err != nil {
			return summary, fmt.Errorf("record %d (%s): %w", idx+1, record["name"], err)
		}
		summary.updated++
	}
	return summary, nil
}

// ingredientParams maps a CSV row onto store parameters. Blank flag cells
// are left out so they keep their default.
func ingredientParams(record map[string]string) (store.Params, error) {
	name := strings.TrimSpace(record["name"])
	if name == "" {
		return nil, errors.New("missing name")
	}
	params := store.Params{"name": name}
	for _, column := range flagColumns {
		value := strings.ToLower(strings.TrimSpace(record[column]))
		switch value {
		case "":
		case "y", "yes", "x":
			params[column] = true
		case "n", "no":
			params[column] = false
		default:
			params[column] = value
		}
	}
	return params, nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

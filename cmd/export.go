package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/exporter"
	"github.com/VoxDroid/devflow/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export [name|id...]",
	Short: "Export automations to a portable bundle",
	Long: `Export automations to a JSON, YAML or SQLite bundle. Without arguments every
automation is exported. The format follows --format, then the file extension.
Without --out the bundle is written to ./devflow-YYYY-MM-DD.<ext>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		formatFlag, _ := cmd.Flags().GetString("format")

		format := exporter.FormatJSON
		switch {
		case formatFlag != "":
			f, err := exporter.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			format = f
		case out != "":
			format = exporter.FormatFromPath(out)
		}
		if out == "" {
			out = defaultExportPath(format)
		}

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		var selected []models.Automation
		if len(args) == 0 {
			if selected, err = svc.List(cmd.Context()); err != nil {
				return err
			}
		}
		for _, ref := range args {
			a, err := svc.Resolve(cmd.Context(), ref)
			if err != nil {
				return err
			}
			selected = append(selected, a)
		}

		if err := exporter.ExportFile(cmd.Context(), out, format, selected); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d automations to %s\n", len(selected), out)
		return nil
	},
}

// defaultExportPath returns ./devflow-YYYY-MM-DD.<ext>, suffixed with -N
// to avoid overwriting an existing file.
func defaultExportPath(format exporter.Format) string {
	ext := string(format)
	if format == exporter.FormatSQLite {
		ext = "db"
	}
	date := time.Now().UTC().Format("2006-01-02")
	dst := filepath.Join(".", fmt.Sprintf("devflow-%s.%s", date, ext))
	for si := 1; ; si++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			return dst
		}
		dst = filepath.Join(".", fmt.Sprintf("devflow-%s-%d.%s", date, si, ext))
	}
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Destination file")
	exportCmd.Flags().String("format", "", "Bundle format: json, yaml or sqlite")
	rootCmd.AddCommand(exportCmd)
}

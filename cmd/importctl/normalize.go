package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/freitasmatheusrn/fleamarket-inventory/internal/imports"
	"github.com/spf13/cobra"
)

var (
	normalizeInput   string
	normalizeArchive string
	normalizeSkip    bool
)

type normalizeOutput struct {
	Format     imports.Format           `json:"format"`
	Rows       int                      `json:"rows"`
	Candidates []imports.MergeCandidate `json:"candidates"`
	Errors     []string                 `json:"errors"`
	// Images counts embedded pictures, plus archive matches when --archive is set.
	Images int `json:"images"`
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Parse, normalize and aggregate a workbook without touching any store",
	Example: `
  importctl normalize -i 仕入れ_3月.xlsx
  importctl normalize -i stock.xls --skip-first-row --archive images.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(normalizeInput)
		if err != nil {
			return err
		}
		wb, err := imports.ParseWorkbook(data, filepath.Base(normalizeInput), normalizeSkip)
		if err != nil {
			return err
		}

		valid, errs := imports.NewNormalizer(nil).NormalizeRows(wb.Rows)
		candidates := imports.Aggregate(valid)

		withImage := make(map[int]bool, len(wb.Images))
		for _, img := range wb.Images {
			withImage[img.RowIndex] = true
		}
		images := 0
		for _, c := range candidates {
			if withImage[c.OriginRowIndex] {
				images++
			}
		}

		if normalizeArchive != "" {
			zipData, err := os.ReadFile(normalizeArchive)
			if err != nil {
				return err
			}
			pool, err := imports.BuildArchivePool(zipData)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				if withImage[c.OriginRowIndex] {
					continue
				}
				if _, ok := pool.Find(imports.ImageQuery{
					ImageRef: c.ImageRef,
					SKU:      c.SKU,
					Name:     c.Name,
					RowIndex: c.OriginRowIndex,
				}); ok {
					images++
				}
			}
		}

		if errs == nil {
			errs = []string{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(normalizeOutput{
			Format:     wb.Format,
			Rows:       len(wb.Rows),
			Candidates: candidates,
			Errors:     errs,
			Images:     images,
		})
	},
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "input", "i", "", "workbook file (.xlsx or .xls)")
	normalizeCmd.Flags().StringVar(&normalizeArchive, "archive", "", "zip of product images")
	normalizeCmd.Flags().BoolVar(&normalizeSkip, "skip-first-row", false, "ignore the first sheet row before the header")
	_ = normalizeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(normalizeCmd)
}

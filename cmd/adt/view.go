package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/aolwas/adt/catalog"
	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/objectstore"
)

func newViewCmd() *cobra.Command {
	var (
		limit   int64
		columns []string
		version string
	)
	cmd := &cobra.Command{
		Use:   "view <location>",
		Short: "Scan a table and print its rows",
		Example: `  # First 20 rows of a parquet directory
  adt view /data/warehouse/sales

  # Specific columns, more rows
  adt view /data/warehouse/sales --columns region,amount --limit 100

  # A historical version of a table
  adt view /data/warehouse/sales --at-version 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := collectOptions()
			if err != nil {
				return err
			}
			return runView(cmd.Context(), args[0], options, columns, limit, version)
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 20, "maximum rows to print (0 for all)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to print (default all)")
	cmd.Flags().StringVar(&version, "at-version", "", "pin the scan to a table version")
	return cmd
}

func runView(ctx context.Context, location string, options map[string]string, columns []string, limit int64, version string) error {
	log := newLogger()
	provider, err := newRegistry(log).Resolve(ctx, formatTag, location, options)
	if err != nil {
		return err
	}
	schema, err := provider.Schema(ctx)
	if err != nil {
		return err
	}
	projection, err := resolveProjection(schema, columns)
	if err != nil {
		return err
	}

	opts := &catalog.ScanOptions{Projection: projection, Limit: limit}
	if version != "" {
		opts.TimePoint = &catalog.TimePoint{Unit: "version", Value: version}
	}
	plan, err := provider.Scan(ctx, opts)
	if err != nil {
		return err
	}

	store, err := objectstore.Resolve(location, options)
	if err != nil {
		return err
	}
	rr, err := exec.NewReader(ctx, plan, store, nil)
	if err != nil {
		return err
	}
	defer rr.Release()

	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	header := make(table.Row, rr.Schema().NumFields())
	for i := range header {
		header[i] = rr.Schema().Field(i).Name
	}
	w.AppendHeader(header)

	var rows int64
	for rr.Next() {
		rec := rr.Record()
		for i := int64(0); i < rec.NumRows(); i++ {
			row := make(table.Row, rec.NumCols())
			for j := 0; j < int(rec.NumCols()); j++ {
				col := rec.Column(j)
				if col.IsNull(int(i)) {
					row[j] = "NULL"
				} else {
					row[j] = col.ValueStr(int(i))
				}
			}
			w.AppendRow(row)
		}
		rows += rec.NumRows()
	}
	if err := rr.Err(); err != nil {
		return err
	}
	w.Render()
	fmt.Printf("%d rows\n", rows)
	return nil
}

// resolveProjection maps --columns names to logical schema indices.
func resolveProjection(schema *arrow.Schema, columns []string) ([]int, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	projection := make([]int, 0, len(columns))
	for _, name := range columns {
		indices := schema.FieldIndices(name)
		if len(indices) == 0 {
			return nil, fmt.Errorf("column %q not in table schema", name)
		}
		projection = append(projection, indices[0])
	}
	return projection, nil
}

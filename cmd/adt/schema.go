package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <location>",
		Short: "Print the resolved schema of a table",
		Example: `  # Schema of a hive-partitioned parquet directory
  adt schema /data/warehouse/sales

  # Schema of a table on S3
  adt -f PARQUET schema s3://bucket/warehouse/sales \
    --option s3_endpoint=minio:9000 --option s3_use_ssl=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			options, err := collectOptions()
			if err != nil {
				return err
			}
			provider, err := newRegistry(log).Resolve(cmd.Context(), formatTag, args[0], options)
			if err != nil {
				return err
			}
			schema, err := provider.Schema(cmd.Context())
			if err != nil {
				return err
			}

			w := table.NewWriter()
			w.SetOutputMirror(os.Stdout)
			w.AppendHeader(table.Row{"#", "Column", "Type", "Nullable"})
			for i := 0; i < schema.NumFields(); i++ {
				f := schema.Field(i)
				w.AppendRow(table.Row{i, f.Name, f.Type.String(), f.Nullable})
			}
			w.Render()
			return nil
		},
	}
}

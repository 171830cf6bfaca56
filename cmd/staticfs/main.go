// Command staticfs builds, inspects, and serves static file packages.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/meigma/staticfs"
)

var noProgress bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "staticfs",
		Short: "Build, inspect, and serve static file packages",
	}

	packCmd := &cobra.Command{
		Use:   "pack <DIR> <OUTPUT>",
		Short: "Flatten a directory tree into a single package file",
		Args:  cobra.ExactArgs(2),
		RunE:  runPack,
	}
	packCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar")

	inspectCmd := &cobra.Command{
		Use:   "inspect <PACKAGE>",
		Short: "List the contents of a package file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	rootCmd.AddCommand(packCmd, inspectCmd, newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	dir, output := args[0], args[1]

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	var opts []staticfs.PackOption
	if !noProgress {
		var bar *progressbar.ProgressBar
		opts = append(opts, staticfs.WithPackProgress(func(path string, done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "packing")
			}
			_ = bar.Set(done) //nolint:errcheck // progress display is best-effort
		}))
	}

	if err := staticfs.CreatePackage(context.Background(), dir, f, opts...); err != nil {
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %s\n", output)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pkg, err := staticfs.OpenPackage(data)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Path", "Size", "Modified", "Digest"})
	table.SetAutoWrapText(false)
	for rec := range pkg.Records() {
		dgst, _ := pkg.FileDigest(rec.Path)
		table.Append([]string{
			rec.Path,
			strconv.FormatInt(rec.Size, 10),
			rec.ModTime.Format("2006-01-02 15:04:05"),
			dgst.Encoded()[:12],
		})
	}
	table.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d data bytes, %s\n",
		pkg.Len(), pkg.DataSize(), pkg.Digest())
	return nil
}

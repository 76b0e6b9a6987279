package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/student-portal/internal/app"
	"github.com/SAP-F-2025/student-portal/internal/services"
)

func newRegisterCmd() *cobra.Command {
	var (
		registeredBy string
		outDir       string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create accounts for every gradesheet student not yet registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}

			return withPortal(cmd.Context(), func(portal *app.App) error {
				result, err := portal.Services.Registration().ReconcileAndRegister(cmd.Context(), registeredBy)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "total: %d  registered: %d  already registered: %d  errors: %d\n",
					result.Total, result.Registered, result.AlreadyRegistered, result.Errors)
				for _, f := range result.Failures {
					fmt.Fprintf(out, "  failed %s: %s\n", f.RollNo, f.Reason)
				}

				if len(result.Students) == 0 {
					return nil
				}

				file, err := portal.Services.Export().ExportCredentials(cmd.Context(), result.Students, exportFormat)
				if err != nil {
					return err
				}
				return writeExport(out, outDir, file)
			})
		},
	}

	cmd.Flags().StringVar(&registeredBy, "by", services.DefaultRegisteredBy, "Recorded as the registering administrator")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the credentials file")
	cmd.Flags().StringVar(&format, "format", string(services.FormatCSV), "Credentials file format: csv|xlsx")
	return cmd
}

func newExportUsersCmd() *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export-users",
		Short: "Export every registered student with their initial password",
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}

			return withPortal(cmd.Context(), func(portal *app.App) error {
				file, err := portal.Services.Export().ExportAllUsers(cmd.Context(), exportFormat)
				if err != nil {
					return err
				}
				return writeExport(cmd.OutOrStdout(), outDir, file)
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().StringVar(&format, "format", string(services.FormatCSV), "File format: csv|xlsx")
	return cmd
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <roll-no>",
		Short: "Print a student's marks across all gradesheets as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPortal(cmd.Context(), func(portal *app.App) error {
				marks, err := portal.Services.Marks().GetMarks(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(marks)
			})
		},
	}
}

func newGradesheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gradesheets",
		Short: "List the gradesheets in the configured directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPortal(cmd.Context(), func(portal *app.App) error {
				sheets, err := portal.Services.Marks().ListGradesheets(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "COURSE\tFILE\tSTUDENTS")
				for _, s := range sheets {
					fmt.Fprintf(w, "%s\t%s\t%d\n", s.Course, s.File, s.Students)
				}
				return w.Flush()
			})
		},
	}
}

func writeExport(out io.Writer, dir string, file *services.ExportFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, file.Filename)
	if err := os.WriteFile(path, file.Data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"

	"github.com/tordrt/ddlkit/internal/formatter"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
	"github.com/tordrt/ddlkit/internal/xmlmodel"
)

func newPlatformsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List the supported platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range a.registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSQLCmd(a *app) *cobra.Command {
	var (
		outputFile string
		compress   bool
		drop       bool
		alter      bool
	)

	cmd := &cobra.Command{
		Use:   "sql <schema.xml>",
		Short: "Write the DDL script of a schema descriptor without executing it",
		Long: `Write the CREATE TABLE script of a schema descriptor. With --drop the DROP script is
written instead; with --alter the script turning the database at --url into the
descriptor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if drop && alter {
				return fmt.Errorf("cannot use both --drop and --alter")
			}
			desired, err := loadModel(args[0])
			if err != nil {
				return err
			}
			p, err := a.platform()
			if err != nil {
				return err
			}

			var script *platform.Script
			switch {
			case drop:
				script, err = p.DropTablesSQL(desired)
			case alter:
				script, err = a.alterScript(cmd, p, desired)
			default:
				script, err = p.CreateTablesSQL(desired, a.cfg.Build.DropFirst)
			}
			if err != nil {
				return err
			}
			a.logWarnings(script.Warnings())
			return writeScript(cmd.OutOrStdout(), outputFile, compress, script)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&compress, "compress", false, "Compress the script with xz, adding .xz to the output file")
	cmd.Flags().BoolVar(&drop, "drop", false, "Write the DROP script")
	cmd.Flags().BoolVar(&alter, "alter", false, "Write the ALTER script against the database at --url")
	cmd.Flags().Bool("drop-first", false, "Drop the tables before creating them")
	return cmd
}

func (a *app) alterScript(cmd *cobra.Command, p *platform.Platform, desired *model.Database) (*platform.Script, error) {
	conn, err := a.open(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer a.closeConn(conn)

	live, warnings, err := p.ReadModelFromDatabase(cmd.Context(), conn, a.cfg.ReadOptions(desired.Name))
	if err != nil {
		return nil, err
	}
	a.logWarnings(warnings)
	return p.AlterTablesSQL(live, desired)
}

// writeScript renders script to the output file, or to stdout when none is given.
func writeScript(stdout io.Writer, outputFile string, compress bool, script *platform.Script) (err error) {
	w := stdout
	if outputFile != "" {
		if compress && !strings.HasSuffix(outputFile, ".xz") {
			outputFile += ".xz"
		}
		var f *os.File
		f, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}

	if !compress {
		_, err = script.WriteTo(w)
		return err
	}

	zw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := script.WriteTo(zw); err != nil {
		return err
	}
	return zw.Close()
}

func newCreateDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-db",
		Short: "Create the database at --url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.platform()
			if err != nil {
				return err
			}
			if err := p.CreateDatabase(cmd.Context(), a.connect, a.cfg.ConnectionConfig()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database created")
			return nil
		},
	}
}

func newDropDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-db",
		Short: "Drop the database at --url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.platform()
			if err != nil {
				return err
			}
			if err := p.DropDatabase(cmd.Context(), a.connect, a.cfg.ConnectionConfig()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database dropped")
			return nil
		},
	}
}

// newApplyCmd builds the commands that load a descriptor and run a script
// against the database at --url.
func newApplyCmd(a *app, use, short string, run func(cmd *cobra.Command, p *platform.Platform, conn platform.Connection, m *model.Database) (*platform.Report, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			p, err := a.platform()
			if err != nil {
				return err
			}
			conn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeConn(conn)

			report, err := run(cmd, p, conn, m)
			return a.finish(cmd.OutOrStdout(), report, err)
		},
	}
	cmd.Flags().Bool("continue-on-error", false, "Keep executing after a statement fails")
	return cmd
}

func newCreateTablesCmd(a *app) *cobra.Command {
	cmd := newApplyCmd(a, "create-tables <schema.xml>", "Create the tables of a schema descriptor",
		func(cmd *cobra.Command, p *platform.Platform, conn platform.Connection, m *model.Database) (*platform.Report, error) {
			return p.CreateTables(cmd.Context(), conn, m, a.cfg.Build.DropFirst, a.cfg.Build.ContinueOnError)
		})
	cmd.Flags().Bool("drop-first", false, "Drop the tables before creating them")
	return cmd
}

func newDropTablesCmd(a *app) *cobra.Command {
	return newApplyCmd(a, "drop-tables <schema.xml>", "Drop the tables of a schema descriptor",
		func(cmd *cobra.Command, p *platform.Platform, conn platform.Connection, m *model.Database) (*platform.Report, error) {
			return p.DropTables(cmd.Context(), conn, m, a.cfg.Build.ContinueOnError)
		})
}

func newAlterCmd(a *app) *cobra.Command {
	return newApplyCmd(a, "alter <schema.xml>", "Alter the database to match a schema descriptor",
		func(cmd *cobra.Command, p *platform.Platform, conn platform.Connection, m *model.Database) (*platform.Report, error) {
			return p.AlterTables(cmd.Context(), conn, m, a.cfg.ReadOptions(m.Name), a.cfg.Build.ContinueOnError)
		})
}

const formatXML = "xml"

func newReadCmd(a *app) *cobra.Command {
	var (
		outputFile     string
		outputDir      string
		tables         string
		exclude        string
		format         string
		name           string
		splitThreshold int
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the schema of the database at --url",
		Long: `Read the schema of the database at --url and write it as an XML schema descriptor
or as a compact text or markdown description.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" && outputFile != "" {
				return fmt.Errorf("cannot use both --output-dir and --output flags")
			}
			switch format {
			case formatter.FormatText, formatter.FormatMarkdown, formatXML:
			default:
				return fmt.Errorf("invalid format: %s (must be 'text', 'markdown' or 'xml')", format)
			}
			if format == formatXML && outputDir != "" {
				return fmt.Errorf("--output-dir is not supported for xml output")
			}

			p, err := a.platform()
			if err != nil {
				return err
			}
			conn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeConn(conn)

			m, warnings, err := p.ReadModelFromDatabase(cmd.Context(), conn, a.cfg.ReadOptions(name))
			if err != nil {
				return err
			}
			a.logWarnings(warnings)

			if list := splitList(tables); len(list) > 0 {
				filterTables(m, list, true)
			}
			if list := splitList(exclude); len(list) > 0 {
				filterTables(m, list, false)
			}

			shouldSplit := outputDir != "" && (splitThreshold == 0 || len(m.Tables) > splitThreshold)
			if shouldSplit {
				if err := formatter.NewMultiFileFormatter(outputDir, format).Format(m); err != nil {
					return fmt.Errorf("failed to format output: %w", err)
				}
				return nil
			}

			return writeOutput(cmd.OutOrStdout(), outputFile, func(w io.Writer) error {
				switch format {
				case formatXML:
					return xmlmodel.Write(w, m)
				case formatter.FormatMarkdown:
					return formatter.NewMarkdownFormatter(w).Format(m)
				default:
					return formatter.NewTextFormatter(w).Format(m)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	cmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	cmd.Flags().StringVarP(&format, "format", "f", formatXML, "Output format: xml, text or markdown")
	cmd.Flags().StringVar(&name, "name", "", "Name of the read model (default: catalog or schema name)")
	cmd.Flags().IntVar(&splitThreshold, "split-threshold", 0, "Split into multiple files when table count exceeds this (requires --output-dir)")
	return cmd
}

func writeOutput(stdout io.Writer, outputFile string, write func(io.Writer) error) (err error) {
	if outputFile == "" {
		return write(stdout)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// filterTables keeps the named tables when keep is set and drops them otherwise.
func filterTables(m *model.Database, names []string, keep bool) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}

	filtered := make([]*model.Table, 0, len(m.Tables))
	for _, t := range m.Tables {
		if set[strings.ToLower(t.Name)] == keep {
			filtered = append(filtered, t)
		}
	}
	m.Tables = filtered
}

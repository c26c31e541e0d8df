package main

import (
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/yigit/ssis/internal/app/migrations"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/bootstrap"
	"github.com/yigit/ssis/internal/config"
	"github.com/yigit/ssis/internal/db"
	"github.com/yigit/ssis/internal/pkg/logger"
	"github.com/yigit/ssis/internal/storage/csvstore"
	"github.com/yigit/ssis/internal/transfer"
)

func main() {
	app := &cli.App{
		Name:  "ssisctl",
		Usage: "administer the student registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			{
				Name:   "counts",
				Usage:  "show the number of colleges, programs and students",
				Action: runCounts,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending SQL migrations",
				Action: runMigrate,
			},
			{
				Name:   "import",
				Usage:  "load CSV files from a directory into the configured database",
				Flags:  []cli.Flag{dirFlag()},
				Action: runImport,
			},
			{
				Name:   "export",
				Usage:  "write the configured store out as CSV files",
				Flags:  []cli.Flag{dirFlag()},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{Name: "dir", Usage: "directory holding colleges.csv, programs.csv and students.csv", Required: true}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "render one page of records as a table",
		ArgsUsage: "<colleges|programs|students>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "size", Value: 10},
			&cli.StringFlag{Name: "search-field", Usage: "field label or column; empty searches every field"},
			&cli.StringFlag{Name: "search", Usage: "case-insensitive substring"},
			&cli.StringFlag{Name: "sort", Usage: "field label or column"},
			&cli.StringFlag{Name: "order", Usage: "ASC or DESC"},
		},
		Action: runList,
	}
}

// loadConfig reads the config and sends logs to stderr so tables stay clean.
func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	return cfg, lgr, nil
}

func openDependencies(c *cli.Context) (*bootstrap.Dependencies, error) {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	store, err := bootstrap.OpenStore(cfg, lgr)
	if err != nil {
		return nil, err
	}
	return bootstrap.BuildDependencies(store, lgr), nil
}

func runList(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("list needs exactly one entity: colleges, programs or students", 2)
	}
	entity, err := models.ParseEntity(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	deps, err := openDependencies(c)
	if err != nil {
		return err
	}
	defer deps.Store.Close()

	query := models.ListQuery{
		Page:        c.Int("page"),
		Size:        c.Int("size"),
		SearchField: c.String("search-field"),
		SearchValue: c.String("search"),
		SortField:   c.String("sort"),
		SortOrder:   c.String("order"),
	}

	var (
		rows       [][]string
		pagination models.Pagination
	)
	ctx := c.Context
	switch entity {
	case models.EntityCollege:
		page, err := deps.CollegeService.ListColleges(ctx, query)
		if err != nil {
			return err
		}
		for _, col := range page.Items {
			rows = append(rows, []string{col.Code, col.Name})
		}
		pagination = page.Pagination
	case models.EntityProgram:
		page, err := deps.ProgramService.ListPrograms(ctx, query)
		if err != nil {
			return err
		}
		for _, p := range page.Items {
			rows = append(rows, []string{p.Code, p.Name, display(p.CollegeCode)})
		}
		pagination = page.Pagination
	case models.EntityStudent:
		page, err := deps.StudentService.ListStudents(ctx, query)
		if err != nil {
			return err
		}
		for _, s := range page.Items {
			rows = append(rows, []string{
				s.IDNumber, s.FirstName, s.LastName, strconv.Itoa(s.YearLevel), s.Gender, display(s.ProgramCode),
			})
		}
		pagination = page.Pagination
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(models.SchemaFor(entity).Header())
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	color.Cyan("Page %d of %d (%d %s records)",
		pagination.CurrentPage, pagination.TotalPages, pagination.TotalItems, entity)
	return nil
}

func display(fk *string) string {
	if fk == nil {
		return csvstore.Null
	}
	return *fk
}

func runCounts(c *cli.Context) error {
	deps, err := openDependencies(c)
	if err != nil {
		return err
	}
	defer deps.Store.Close()

	counts, err := deps.RegistryService.Counts(c.Context)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Entity", "Count"})
	table.Append([]string{"Colleges", strconv.FormatInt(counts.Colleges, 10)})
	table.Append([]string{"Programs", strconv.FormatInt(counts.Programs, 10)})
	table.Append([]string{"Students", strconv.FormatInt(counts.Students, 10)})
	table.Render()
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return err
	}

	database, err := db.NewDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	migrator := migrations.NewMigrator(database.DB, database.Driver == config.DriverPostgres)
	applied, err := migrator.Migrate(c.Context)
	if err != nil {
		return err
	}
	versions, err := migrator.Applied(c.Context)
	if err != nil {
		return err
	}

	lgr.Debug().Strs("versions", versions).Msg("Migration history")
	color.Green("Applied %d migration(s); %d recorded in total.", applied, len(versions))
	return nil
}

func runImport(c *cli.Context) error {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendSQL {
		lgr.Warn().Str("backend", cfg.Storage.Backend).Msg("Import always targets the configured database")
		cfg.Storage.Backend = config.BackendSQL
	}

	src, err := csvstore.Open(c.String("dir"), cfg.CascadeMode())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	dst, err := bootstrap.OpenStore(cfg, lgr)
	if err != nil {
		return err
	}
	defer dst.Close()

	report, err := transfer.Copy(c.Context, src, dst, lgr)
	printReport(report)
	if err != nil {
		return err
	}
	color.Green("Import completed successfully!")
	return nil
}

func runExport(c *cli.Context) error {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return err
	}

	src, err := bootstrap.OpenStore(cfg, lgr)
	if err != nil {
		return err
	}
	defer src.Close()

	dir := c.String("dir")
	if cfg.Storage.Backend == config.BackendCSV && samePath(dir, cfg.Storage.CSVDir) {
		return cli.Exit("export directory is the configured CSV directory", 2)
	}
	dst, err := csvstore.New(dir, cfg.CascadeMode())
	if err != nil {
		return err
	}

	report, err := transfer.Copy(c.Context, src, dst, lgr)
	printReport(report)
	if err != nil {
		return err
	}
	color.Green("Export written to %s", dst.Dir())
	return nil
}

func samePath(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func printReport(r *transfer.Report) {
	if r == nil {
		return
	}
	color.Yellow("\nTransfer summary")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Entity", "Copied", "Skipped"})
	for _, e := range models.Entities {
		table.Append([]string{string(e), strconv.Itoa(r.Copied[e]), strconv.Itoa(r.Skipped[e])})
	}
	table.Render()
}

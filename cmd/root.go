package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/themanforfree/jwglxt/pkg/config"
	"github.com/themanforfree/jwglxt/pkg/scrape"
	"github.com/themanforfree/jwglxt/pkg/timetable"
)

const startLayout = "2006-01-02"

type options struct {
	year     int
	term     int
	start    string
	output   string
	format   string
	dbFile   string
	offline  bool
	baseURL  string
	timeout  time.Duration
	debug    bool
	envFile  string
	semester timetable.Semester
}

var opts options

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jwglxt",
	Short: "Export a class timetable from the jwglxt portal",
	Long: `Logs into the academic affairs portal, fetches the class timetable of
one academic year and term, and writes it as a file calendar applications
can import. Each class meeting becomes one event, and every teaching week
gets an all-day marker event.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := calendarRows(cmd)
		if err != nil {
			return err
		}
		if err := writeRows(rows, outputName(cmd), opts.format); err != nil {
			return err
		}
		fmt.Println("Done!")
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("username", "u", "", "Portal username (default: $"+config.UsernameEnv+")")
	pf.StringP("password", "p", "", "Portal password (default: $"+config.PasswordEnv+")")
	pf.IntVar(&opts.year, "year", 2021, "Academic year the timetable belongs to")
	pf.IntVar(&opts.term, "term", 2, "Term within the academic year (1 or 2)")
	pf.StringVar(&opts.start, "start", timetable.DefaultStart.Format(startLayout), "Monday of the first teaching week")
	pf.StringVar(&opts.dbFile, "db", "", "Archive fetched classes in this SQLite file")
	pf.BoolVar(&opts.offline, "offline", false, "Read classes from the --db archive instead of the portal")
	pf.StringVar(&opts.baseURL, "base-url", scrape.DefaultBaseURL, "Portal address")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout of each portal request")
	pf.BoolVar(&opts.debug, "debug", false, "Dump the decoded classes")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Load credentials from this dotenv file")

	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "schedules.csv", "Output file")
	rootCmd.Flags().StringVar(&opts.format, "format", "csv", "Output format (csv or ics)")
}

// prepare checks the flags before anything touches the network.
func prepare(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return fmt.Errorf("Config Error: %v", err)
	}
	start, err := time.Parse(startLayout, opts.start)
	if err != nil {
		return fmt.Errorf("Config Error: invalid --start %q, want YYYY-MM-DD", opts.start)
	}
	opts.semester = timetable.NewSemester(start)
	if _, err := scrape.TermCode(opts.term); err != nil {
		return fmt.Errorf("Get Schedule Error: %w", err)
	}
	if opts.offline && opts.dbFile == "" {
		return fmt.Errorf("Config Error: --offline needs --db")
	}
	switch opts.format {
	case "csv", "ics":
	default:
		return fmt.Errorf("Config Error: unknown format %q", opts.format)
	}
	return nil
}

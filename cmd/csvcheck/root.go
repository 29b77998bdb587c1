package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recipientcsv/internal/config"
	"github.com/JonMunkholm/recipientcsv/internal/core"
	"github.com/JonMunkholm/recipientcsv/internal/logging"
)

// errBatchHasProblems is returned after the report is printed when the file
// cannot be sent as is.
var errBatchHasProblems = errors.New("file has problems")

type checkFlags struct {
	channel      string
	content      string
	templateFile string
	subject      string
	allow        []string
	remaining    int

	allowInternational bool
	allowLandline      bool
	allowPremium       bool
	allowTV            bool
	allowIntlLetters   bool

	budget  time.Duration
	maxRows int
	workers int
	format  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "csvcheck [file]",
		Short: "Check a recipient CSV file before sending a batch",
		Long: `csvcheck reads a table of recipients and checks every row against a
message template: the contact column for the channel, the columns the
template's ((placeholders)) need, and the limits a batch must meet.

Policy defaults come from the same environment variables as the server
(ALLOW_INTERNATIONAL_SMS, VALIDATION_BUDGET, ...); flags override them.
Reads standard input when no file is given or the file is "-".

Exit status is 0 for a file ready to send, 2 when it has problems and 1
when it could not be checked.

Examples:
  # Text messages personalised with a name
  csvcheck --channel sms --content "Hello ((name))" recipients.csv

  # Letters, template body read from a file, JSON report
  csvcheck --channel letter --subject "Your appointment" --template letter.txt --format json people.csv

  # Restricted service sending only to its team
  csvcheck --channel email --allow ann@example.com --allow bob@example.com team.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyEnvDefaults(cmd, &f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, &f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.channel, "channel", "c", "sms", "channel: sms, email or letter")
	fl.StringVar(&f.content, "content", "", "template body")
	fl.StringVarP(&f.templateFile, "template", "t", "", "read the template body from a file")
	fl.StringVar(&f.subject, "subject", "", "template subject (email and letter)")
	fl.StringSliceVar(&f.allow, "allow", nil, "restrict recipients to these contacts (repeatable)")
	fl.IntVar(&f.remaining, "remaining", 0, "messages the service can still send today, 0 for no limit")
	fl.BoolVar(&f.allowInternational, "allow-international-sms", false, "allow text messages to international numbers")
	fl.BoolVar(&f.allowLandline, "allow-landline", false, "allow text messages to UK landlines")
	fl.BoolVar(&f.allowPremium, "allow-premium", false, "allow premium rate numbers")
	fl.BoolVar(&f.allowTV, "allow-tv-numbers", true, "allow numbers reserved for TV and radio drama")
	fl.BoolVar(&f.allowIntlLetters, "allow-international-letters", false, "allow letters to addresses outside the UK")
	fl.DurationVar(&f.budget, "budget", 0, "stop checking after this long, 0 for no limit")
	fl.IntVar(&f.maxRows, "max-rows", 0, "largest table to check row by row")
	fl.IntVarP(&f.workers, "workers", "w", 1, "validate rows on this many goroutines")
	fl.StringVarP(&f.format, "format", "o", "text", "output format: text or json")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log progress to standard error")

	cmd.AddCommand(newKindsCmd())
	return cmd
}

// applyEnvDefaults fills flags the user did not set from the environment
// configuration.
func applyEnvDefaults(cmd *cobra.Command, f *checkFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	v := cfg.Validation
	changed := cmd.Flags().Changed
	if !changed("allow-international-sms") {
		f.allowInternational = v.AllowInternationalSMS
	}
	if !changed("allow-landline") {
		f.allowLandline = v.AllowSMSToUKLandline
	}
	if !changed("allow-premium") {
		f.allowPremium = v.AllowPremiumRate
	}
	if !changed("allow-tv-numbers") {
		f.allowTV = v.AllowTVNumbers
	}
	if !changed("allow-international-letters") {
		f.allowIntlLetters = v.AllowInternationalLetters
	}
	if !changed("budget") {
		f.budget = v.Budget
	}
	if !changed("max-rows") {
		f.maxRows = v.MaxRows
	}
	if !changed("workers") {
		f.workers = v.Workers
	}
	return nil
}

func runCheck(cmd *cobra.Command, f *checkFlags, args []string) error {
	channel, err := core.ParseChannel(f.channel)
	if err != nil {
		return err
	}
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", f.format)
	}

	content := f.content
	if f.templateFile != "" {
		b, err := os.ReadFile(f.templateFile)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		content = string(b)
	}

	in, size, closeIn, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeIn()

	level := "warn"
	if f.verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), level, "text")

	budget := f.budget
	if budget == 0 {
		budget = core.NoBudget
	}

	opts := core.Options{
		Template: &core.Template{Channel: channel, Subject: f.subject, Content: content},
		Policy: core.Policy{
			AllowInternationalSMS:     f.allowInternational,
			AllowSMSToUKLandline:      f.allowLandline,
			AllowPremiumRate:          f.allowPremium,
			AllowTVNumbers:            f.allowTV,
			AllowInternationalLetters: f.allowIntlLetters,
		},
		Budget:            budget,
		MaxRows:           f.maxRows,
		RemainingMessages: f.remaining,
		Workers:           f.workers,
		Logger:            logger,
	}
	if len(f.allow) > 0 {
		opts.AllowList = core.NewAllowList(f.allow...)
	}

	p, err := core.NewProcessor(core.NewCSVSource(in, size), opts)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}
	summary, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	out := cmd.OutOrStdout()
	if f.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else if err := printSummary(out, summary); err != nil {
		return err
	}

	if summary.HasErrors() {
		return errBatchHasProblems
	}
	return nil
}

// openInput returns the file named in args, or standard input.
func openInput(cmd *cobra.Command, args []string) (io.Reader, int64, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), 0, func() {}, nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, 0, nil, err
	}
	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	return file, size, func() { file.Close() }, nil
}

func printSummary(w io.Writer, s core.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Channel:\t%s\n", s.Channel)
	fmt.Fprintf(tw, "Rows:\t%d\n", s.TotalRows)
	fmt.Fprintf(tw, "Valid:\t%d\n", s.ValidRows)
	fmt.Fprintf(tw, "With problems:\t%d\n", s.InvalidRows)
	if s.DuplicateRecipients > 0 {
		fmt.Fprintf(tw, "Repeated recipients:\t%d\n", s.DuplicateRecipients)
	}
	if len(s.ExtraColumns) > 0 {
		fmt.Fprintf(tw, "Unused columns:\t%s\n", strings.Join(s.ExtraColumns, ", "))
	}
	if len(s.DuplicateHeaders) > 0 {
		fmt.Fprintf(tw, "Repeated columns:\t%s\n", strings.Join(s.DuplicateHeaders, ", "))
	}
	if s.TimedOut {
		fmt.Fprintf(tw, "Stopped early:\tchecking took longer than allowed\n")
	}

	if len(s.BatchErrors) > 0 {
		fmt.Fprintln(tw, "\nFile problems:")
		for _, e := range s.BatchErrors {
			fmt.Fprintf(tw, "  %s\n", e.Error())
		}
	}

	if len(s.ErrorCounts) > 0 {
		fmt.Fprintln(tw, "\nProblems by type:")
		type count struct {
			kind string
			msg  string
			n    int
		}
		counts := make([]count, 0, len(s.ErrorCounts))
		for k, n := range s.ErrorCounts {
			counts = append(counts, count{k.String(), core.MessageFor(k).Message, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].n != counts[j].n {
				return counts[i].n > counts[j].n
			}
			return counts[i].kind < counts[j].kind
		})
		for _, c := range counts {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", c.kind, c.n, c.msg)
		}
	}

	if len(s.ErrorSamples) > 0 {
		fmt.Fprintln(tw, "\nFirst rows with problems:")
		for _, r := range s.ErrorSamples {
			msgs := make([]string, len(r.Errors))
			for i, e := range r.Errors {
				msgs[i] = e.Error()
			}
			fmt.Fprintf(tw, "  row %d\t%s\n", r.Record, strings.Join(msgs, "; "))
		}
	}

	return tw.Flush()
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/cdtire-go/internal/backend"
	"github.com/ukaji3/cdtire-go/internal/store"
	"github.com/ukaji3/cdtire-go/internal/workflow"
	"github.com/ukaji3/cdtire-go/pkg/cdtire"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/form"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/output"
)

type submitFlags struct {
	mesh      string
	project   string
	projectID string
	protocol  string
	yes       bool
	store     bool
	jsonOut   bool
}

func newSubmitCmd(a *app) *cobra.Command {
	f := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit operator values to the simulation backend",
		Long: `submit validates the operator values, generates the parameter file,
fills and saves the protocol template, then extracts and stores the
resulting run matrix.`,
		Args: cobra.NoArgs,
	}
	ff := addFormFlags(cmd)
	cmd.Flags().StringVar(&f.mesh, "mesh", "", "Mesh file to upload before processing")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name (default: $CDTIRE_PROJECT)")
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "Project id; enables draft saving and the project matrix copy")
	cmd.Flags().StringVar(&f.protocol, "protocol", "", "Protocol (default: $CDTIRE_PROTOCOL)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Replace an existing project without asking")
	cmd.Flags().BoolVar(&f.store, "store", false, "Also save the records to the run store")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the stored records as JSON")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		in := ff.inputs()
		in[form.MeshFile] = f.mesh
		return a.runSubmit(cmd, f, in)
	}
	return cmd
}

func (a *app) runSubmit(cmd *cobra.Command, f *submitFlags, in form.Inputs) error {
	sub := &workflow.Submission{
		Backend:     a.client(),
		ProjectName: orDefault(f.project, a.cfg.Project.Name),
		ProjectID:   f.projectID,
		Protocol:    orDefault(f.protocol, a.cfg.Project.Protocol),
		Options:     cdtire.DefaultOptions(),
		Confirm: func(folder string) bool {
			if f.yes {
				return true
			}
			return confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
				fmt.Sprintf("Project %q already exists. Do you want to Replace it?", folder))
		},
	}

	res, err := sub.Run(cmd.Context(), in)
	if errors.Is(err, workflow.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
		return nil
	}
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(cmd.ErrOrStderr(), verr.Detail())
		}
		if errors.Is(err, cdtire.ErrNoValidData) {
			fmt.Fprintln(cmd.ErrOrStderr(), cdtire.NoValidDataMessage)
		}
		return err
	}

	if f.store {
		if err := a.saveRuns(cmd, sub.ProjectName, sub.Protocol, res.Records); err != nil {
			return err
		}
	}

	if f.jsonOut {
		data, err := output.RecordsToJSON(res.Workbook, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d runs for %s (%s).\n", len(res.Records), sub.ProjectName, sub.Protocol)
	if res.Summary == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Unable to load test summary")
		return nil
	}
	printSummary(cmd.OutOrStdout(), res.Summary)
	return nil
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

type summaryFlags struct {
	local    bool
	project  string
	protocol string
}

func newSummaryCmd(a *app) *cobra.Command {
	f := &summaryFlags{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the number of runs per test name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.local {
				return a.localSummary(cmd, f)
			}
			items, err := a.client().Summary(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.local, "store", false, "Read the summary from the run store instead of the backend")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name for the run store (default: $CDTIRE_PROJECT)")
	cmd.Flags().StringVar(&f.protocol, "protocol", "", "Protocol for the run store (default: $CDTIRE_PROTOCOL)")
	return cmd
}

func (a *app) localSummary(cmd *cobra.Command, f *summaryFlags) error {
	if a.dsn == "" {
		return fmt.Errorf("run store: no DSN (set --dsn or CDTIRE_DATABASE_URL)")
	}
	s, err := store.Open(cmd.Context(), a.dsn)
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.Summary(cmd.Context(),
		orDefault(f.project, a.cfg.Project.Name),
		orDefault(f.protocol, a.cfg.Project.Protocol))
	if err != nil {
		return err
	}
	items := make([]backend.SummaryItem, len(rows))
	for i, r := range rows {
		items[i] = backend.SummaryItem{TestName: r.TestName, Count: r.Count}
	}
	printSummary(cmd.OutOrStdout(), items)
	return nil
}

func printSummary(w io.Writer, items []backend.SummaryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No tests available")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s: %d\n", it.Label(), it.Count)
	}
}

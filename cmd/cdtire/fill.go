package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/cdtire-go/pkg/cdtire"
)

func newFillCmd(a *app) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "fill [template.xlsx]",
		Short: "Fill a protocol template with operator values",
		Long: `fill replaces the P1, L1-L5, VEL, IA and SR placeholders of a protocol
template and appends the Original P Values and Original L Values columns.`,
		Args: cobra.ExactArgs(1),
	}
	ff := addFormFlags(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path")
	cmd.MarkFlagRequired("output")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open template: %w", err)
		}
		defer in.Close()

		out, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := cdtire.FillTemplate(in, out, ff.inputs().Replacements()); err != nil {
			out.Close()
			os.Remove(outputPath)
			return fmt.Errorf("fill failed: %w", err)
		}
		return out.Close()
	}
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/rgonek/uniast-converter/uniast"
)

func newConvertCmd(o *options) *cobra.Command {
	var from, to, output string
	var pretty, watch bool
	cmd := &cobra.Command{
		Use:   "convert [input] [-o output]",
		Short: "Convert a document from one format to another",
		Long: `This command reads a document in the --from format and writes it in
the --to format. JSON output is indented when written to a terminal
or when --pretty is set.

With --watch the input file is converted again every time it changes,
until the command is interrupted.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseFormat(from)
			if err != nil {
				return err
			}
			dst, err := parseFormat(to)
			if err != nil {
				return err
			}
			if watch && len(args) == 0 {
				return errors.New("--watch needs an input file")
			}

			logger := o.newLogger(cmd.ErrOrStderr())
			p, err := newPipeline(o, logger)
			if err != nil {
				return err
			}

			run := func() error {
				input, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				doc, err := p.decode(cmd.Context(), src, input)
				if err != nil {
					return err
				}
				if output == "" {
					out := cmd.OutOrStdout()
					data, err := p.encode(cmd.Context(), dst, doc, pretty || isTerminal(out))
					if err != nil {
						return err
					}
					_, err = out.Write(data)
					return err
				}
				data, err := p.encode(cmd.Context(), dst, doc, pretty)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				logger.Info("Converted document", "input", args, "output", output, "from", src, "to", dst)
				return nil
			}

			if watch {
				return watchFile(cmd.Context(), logger, args[0], run)
			}
			return run()
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", string(formatMarkdown), "``input format: blocknote, uniast or markdown")
	cmd.Flags().StringVarP(&to, "to", "t", string(formatUniAst), "``output format: blocknote, uniast or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "``name of the output file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "convert again whenever the input file changes")
	return cmd
}

func newDumpCmd(o *options) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "dump [input]",
		Short: "Print the UniAst tree of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseFormat(from)
			if err != nil {
				return err
			}
			doc, err := decodeInput(cmd, o, src, args)
			if err != nil {
				return err
			}
			return dump(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", string(formatMarkdown), "``input format: blocknote, uniast or markdown")
	return cmd
}

func newValidateCmd(o *options) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "validate [input]",
		Short: "Check that a document converts to a valid UniAst tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseFormat(from)
			if err != nil {
				return err
			}
			doc, err := decodeInput(cmd, o, src, args)
			if err != nil {
				return err
			}
			if err := uniast.Validate(doc); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return err
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", string(formatUniAst), "``input format: blocknote, uniast or markdown")
	return cmd
}

func decodeInput(cmd *cobra.Command, o *options, src format, args []string) (*uniast.Document, error) {
	p, err := newPipeline(o, o.newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	input, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	return p.decode(cmd.Context(), src, input)
}

func dump(w io.Writer, doc *uniast.Document) error {
	opts := litter.Options{
		HidePrivateFields: true,
		HideZeroValues:    true,
		Separator:         " ",
	}
	_, err := io.WriteString(w, opts.Sdump(doc)+"\n")
	return err
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rust-practice/conn-mon/internal/domain"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "readlog <file>",
		Short:        "readlog prints the records of a per-target events log",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return readLog(cmd.OutOrStdout(), args[0])
		},
	}
}

func readLog(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		var rec domain.TimestampedResponse
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("parse line %d: %w", line, err)
		}
		switch rec.Response.Kind {
		case domain.KindTime:
			fmt.Fprintf(w, "%s %s %dms\n", rec.Timestamp, rec.Response.Kind, rec.Response.TimeMS)
		case domain.KindTimeout:
			fmt.Fprintf(w, "%s %s\n", rec.Timestamp, rec.Response.Kind)
		default:
			fmt.Fprintf(w, "%s %s %s\n", rec.Timestamp, rec.Response.Kind, domain.SingleLine(rec.Response.Message))
		}
	}
	return sc.Err()
}

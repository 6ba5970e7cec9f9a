package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArionMiles/finlog/pkg/sms"
)

func (a *app) newParseCmd() *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "parse [sms...]",
		Short: "Parse bank SMS text and print the extracted fields as JSON",
		Long: `Parse bank SMS text and print the extracted fields as JSON.

Each argument is one message. With no arguments, messages are read from
stdin, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("loading time zone %q: %w", tz, err)
			}

			messages := args
			if len(messages) == 0 {
				messages, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			parser := sms.New(sms.Config{Location: loc})
			results := make([]sms.Result, 0, len(messages))
			for _, m := range messages {
				res := parser.Parse(m)
				if res.Amount == nil || res.MerchantName == "" {
					a.logger.Warn("incomplete parse", "sms", m)
				}
				results = append(results, res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "UTC", "time zone for parsed dates")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

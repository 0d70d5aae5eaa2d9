package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var brand string
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the site assistant from the terminal",
		Long:  "With a message, print one reply. Without, read questions from stdin until EOF or \"exit\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			if brand == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				brand = cfg.BrandName
			}
			resp := chat.NewResponder(brand)
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				r := resp.Respond(strings.Join(args, " "))
				fmt.Fprintf(out, "[%s] %s\n", r.Intent, r.Text)
				return nil
			}
			return repl(cmd.InOrStdin(), out, resp)
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "Brand name used in replies (default: $SITE_BRAND_NAME)")
	return cmd
}

// repl answers one line at a time. Blank lines are skipped.
func repl(in io.Reader, out io.Writer, resp *chat.Responder) error {
	fmt.Fprintf(out, "assistant> %s\n", resp.Welcome().Text)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		fmt.Fprintf(out, "assistant> %s\n", resp.Respond(line).Text)
	}
}

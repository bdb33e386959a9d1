package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/pkg/assistant"
)

var (
	assistantDelay  time.Duration
	assistantInsert string
)

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Research assistant panel",
}

var assistantAskCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Ask the research assistant a question",
	Long: `Ask the research assistant a question and print its reply.
With --insert the reply is appended to the given note.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		panel := assistant.NewPanel(assistant.WithDelay(assistantDelay))
		defer panel.Close()

		if _, ok := panel.Ask(strings.Join(args, " ")); !ok {
			fmt.Fprintln(os.Stderr, "Nothing to ask.")
			os.Exit(1)
		}

		fmt.Fprintln(os.Stderr, "Thinking...")
		if err := panel.Wait(ctx); err != nil {
			fatal("Cancelled", err)
		}

		msgs := panel.Messages()
		reply := msgs[len(msgs)-1]
		if reply.Role != assistant.RoleAssistant {
			fmt.Fprintln(os.Stderr, "No reply.")
			os.Exit(1)
		}
		fmt.Println(reply.Content)

		if assistantInsert == "" {
			return
		}

		s, sctx := openSession(cmd)
		defer closeSession(sctx, s)

		note, ok := s.Notes().Get(assistantInsert)
		if !ok {
			notFound("note %s", assistantInsert)
		}
		content := note.Content
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += "\n" + reply.Content + "\n"
		s.Notes().Update(sctx, note.ID, syllabus.NotePatch{Content: &content})
		fmt.Fprintf(os.Stderr, "Reply inserted into note %s.\n", note.ID)
	},
}

func init() {
	rootCmd.AddCommand(assistantCmd)
	assistantCmd.AddCommand(assistantAskCmd)
	assistantAskCmd.Flags().DurationVar(&assistantDelay, "delay", assistant.DefaultDelay, "Reply delay")
	assistantAskCmd.Flags().StringVar(&assistantInsert, "insert", "", "Append the reply to this note ID")
}

package cli

import (
	"fmt"
	"strings"

	"blog-planner-go/internal/model"

	"github.com/spf13/cobra"
)

func newRespondCmd(app *App, preRun func(*cobra.Command, []string) error) *cobra.Command {
	var transcriptPath string

	cmd := &cobra.Command{
		Use:     "respond <message>",
		Short:   "Print the assistant reply to one message",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			var history []model.Message
			if transcriptPath != "" {
				var err error
				if history, err = loadTranscript(app, transcriptPath); err != nil {
					return err
				}
			}
			input := strings.Join(args, " ")
			transcript := append(history, model.NewMessage(model.RoleUser, input))

			reply, err := app.Responder.Respond(cmd.Context(), input, transcript)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.Out, reply)
			return err
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Prior transcript JSON file, or - for stdin")
	return cmd
}

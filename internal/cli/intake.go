package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"smart-task-tracker/internal/usecase/intake"
)

type intakeOutput struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func newIntakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "intake <text...>",
		Short: "Suggest a task title and priority from free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := &intake.SmartIntakeUsecase{}
			s, err := uc.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(intakeOutput{Title: s.Title, Priority: string(s.Priority)})
		},
	}
}

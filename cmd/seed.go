package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <bank.yaml>",
	Short: "Import a question bank into the database",
	Long: "Import inserts and questions from a YAML file. Existing rows with the same\n" +
		"IDs are replaced.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := seed.LoadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.QuestionRepo().Import(cmd.Context(), bank.Inserts, bank.Questions); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d inserts and %d questions\n",
			len(bank.Inserts), len(bank.Questions))
		return nil
	},
}

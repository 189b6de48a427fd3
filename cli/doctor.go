package cli

import (
	"github.com/mobile-next/mumucli/commands"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Checks the MuMu installation, the renderer library and the instance list for better troubleshooting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.DoctorCommand(version))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

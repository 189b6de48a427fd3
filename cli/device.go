package cli

import (
	"github.com/mobile-next/mumucli/commands"
	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Device management commands",
	Long:  `Commands for managing individual MuMu instances including booting, rebooting and getting device information.`,
}

var deviceInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Get device info",
	Long:  `Get detailed information about a MuMu instance, including its IPC connection state and coordinate convention.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := commands.InfoCommand(deviceId)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}
		return printResponse(commands.NewSuccessResponse(map[string]interface{}{
			"device": info,
		}))
	},
}

var deviceBootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Launch a MuMu instance",
	Long:  `Launches the given MuMu instance and waits until Android has started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.BootCommand(commands.BootRequest{DeviceID: deviceId}))
	},
}

var deviceShutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop a MuMu instance",
	Long:  `Disconnects the IPC session and shuts the MuMu instance down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ShutdownCommand(commands.ShutdownRequest{DeviceID: deviceId}))
	},
}

var deviceRebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Restart a MuMu instance",
	Long:  `Restarts the MuMu instance through MuMuManager and waits until it is running again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.RebootCommand(commands.RebootRequest{DeviceID: deviceId}))
	},
}

var deviceResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the IPC session of a device",
	Long:  `Disconnects the renderer session and clears the exited state so the next command reconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ResetCommand(commands.ResetRequest{DeviceID: deviceId}))
	},
}

func init() {
	rootCmd.AddCommand(deviceCmd)

	deviceCmd.AddCommand(deviceInfoCmd)
	deviceCmd.AddCommand(deviceBootCmd)
	deviceCmd.AddCommand(deviceShutdownCmd)
	deviceCmd.AddCommand(deviceRebootCmd)
	deviceCmd.AddCommand(deviceResetCmd)

	deviceInfoCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to get info from")
	deviceBootCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to boot")
	deviceShutdownCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to shut down")
	deviceRebootCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to reboot")
	deviceResetCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to reset")
}

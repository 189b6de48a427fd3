package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mobile-next/mumucli/commands"
	"github.com/mobile-next/mumucli/config"
	"github.com/mobile-next/mumucli/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "dev"

// loadedConfig is the effective configuration after the ini file and flag
// overrides were applied.
var loadedConfig = config.Default()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mumucli",
	Short: "Drive MuMu Player 12 instances through the renderer IPC",
	Long:  `Captures the display of MuMu Player 12 instances and injects touch and key events through the emulator's native renderer library.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func initConfig() error {
	utils.SetVerbose(viper.GetBool("verbose"))
	if err := utils.SetFormat(viper.GetString("log_format")); err != nil {
		return err
	}

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}

	if viper.IsSet("emulator_folder") && viper.GetString("emulator_folder") != "" {
		cfg.Emulator.EmulatorFolder = viper.GetString("emulator_folder")
	}
	if viper.IsSet("index") {
		cfg.Emulator.Index = viper.GetInt("index")
	}
	if viper.IsSet("package") && viper.GetString("package") != "" {
		cfg.Emulator.PackageName = viper.GetString("package")
	}

	if err := cfg.Emulator.Validate(); err != nil {
		return err
	}

	loadedConfig = cfg
	commands.SetConfig(cfg.Emulator)
	utils.Verbose("using emulator folder %s, index %d", cfg.Emulator.EmulatorFolder, cfg.Emulator.Index)
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&configFile, "config", config.DefaultFileName, "path to the ini configuration file")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("emulator-folder", "", "MuMu shell folder containing MuMuManager.exe")
	flags.Int("index", 0, "MuMu instance index")
	flags.String("package", "", "package to relaunch when focus is lost")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("emulator_folder", flags.Lookup("emulator-folder"))
	_ = viper.BindPFlag("index", flags.Lookup("index"))
	_ = viper.BindPFlag("package", flags.Lookup("package"))

	viper.SetEnvPrefix("MUMUCLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints a command response and turns an error status into a
// returned error so cobra exits non-zero.
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

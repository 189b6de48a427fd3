package cli

var (
	verbose    bool
	configFile string

	// all commands
	deviceId string

	// for screenshot command
	screenshotOutputPath  string
	screenshotFormat      string
	screenshotJpegQuality int

	// for swipe and gesture commands
	swipeDurationMs int

	// for devices command
	showAllDevices bool
)

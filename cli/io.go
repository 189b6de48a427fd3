package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/mumucli/commands"
	"github.com/mobile-next/mumucli/devices/nemu"
	"github.com/spf13/cobra"
)

var gestureDurations string

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Input operations with devices",
	Long:  `Perform input operations like tapping, swiping and pressing keys through the renderer IPC.`,
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap on a device screen at the given coordinates",
	Long:  `Sends a tap event to the specified device at the given x,y coordinates. Coordinates are in landscape screen space and should be provided as a single string "x,y".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseInts(args[0], ",", 2)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		return printResponse(commands.TapCommand(commands.TapRequest{
			DeviceID: deviceId,
			X:        coords[0],
			Y:        coords[1],
		}))
	},
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Swipe on a device screen",
	Long:  `Drags from (x1,y1) to (x2,y2) and releases. Coordinates should be provided as a single string "x1,y1,x2,y2".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseInts(args[0], ",", 4)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		return printResponse(commands.SwipeCommand(commands.SwipeRequest{
			DeviceID:   deviceId,
			X1:         coords[0],
			Y1:         coords[1],
			X2:         coords[2],
			Y2:         coords[3],
			DurationMs: swipeDurationMs,
		}))
	},
}

var ioGestureCmd = &cobra.Command{
	Use:   "gesture [x,y;x,y;...]",
	Short: "Drag through several points without lifting",
	Long:  `Presses at the first point, drags through every following point and releases at the last one. Segment durations are given in milliseconds with --durations.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(args[0])
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		durations, err := parseDurations(gestureDurations, len(points)-1)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		return printResponse(commands.GestureCommand(commands.GestureRequest{
			DeviceID:  deviceId,
			Points:    points,
			Durations: durations,
		}))
	},
}

var ioButtonCmd = &cobra.Command{
	Use:   "button [button_name]",
	Short: "Press a hardware button on a device",
	Long:  `Sends a hardware button press event to the specified device (e.g., "BACK", "HOME", "VOLUME_UP", "VOLUME_DOWN", "POWER"). Button names are case-insensitive.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ButtonCommand(commands.ButtonRequest{
			DeviceID: deviceId,
			Button:   args[0],
		}))
	},
}

var ioKeyCmd = &cobra.Command{
	Use:   "key [code]",
	Short: "Send a raw key code to a device",
	Long:  `Presses and releases the given renderer key code.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return printResponse(commands.NewErrorResponse(fmt.Errorf("invalid key code '%s'", args[0])))
		}

		return printResponse(commands.KeyCommand(commands.KeyRequest{
			DeviceID: deviceId,
			Code:     code,
		}))
	},
}

var ioBackCmd = &cobra.Command{
	Use:   "back",
	Short: "Press back on a device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.BackCommand(deviceId))
	},
}

// parseInts splits s by sep and expects exactly n integers.
func parseInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d values separated by '%s', got '%s'", n, sep, s)
	}

	values := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s'. Values must be integers", part)
		}
		values[i] = v
	}
	return values, nil
}

func parsePoints(s string) ([]nemu.Point, error) {
	var points []nemu.Point
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		coords, err := parseInts(pair, ",", 2)
		if err != nil {
			return nil, err
		}
		points = append(points, nemu.Point{X: coords[0], Y: coords[1]})
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("gesture needs at least 2 points, got %d", len(points))
	}
	return points, nil
}

// parseDurations reads comma separated milliseconds. An empty value spreads
// the default swipe duration evenly over all segments.
func parseDurations(s string, segments int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		each := int(nemu.DefaultSwipeDuration.Milliseconds()) / segments
		durations := make([]int, segments)
		for i := range durations {
			durations[i] = each
		}
		return durations, nil
	}

	parts := strings.Split(s, ",")
	durations := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid duration '%s'", part)
		}
		durations[i] = v
	}
	return durations, nil
}

func init() {
	rootCmd.AddCommand(ioCmd)

	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioGestureCmd)
	ioCmd.AddCommand(ioButtonCmd)
	ioCmd.AddCommand(ioKeyCmd)
	ioCmd.AddCommand(ioBackCmd)

	ioTapCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to tap on")
	ioSwipeCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to swipe on")
	ioSwipeCmd.Flags().IntVar(&swipeDurationMs, "duration", int(nemu.DefaultSwipeDuration.Milliseconds()), "swipe duration in milliseconds")
	ioGestureCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to perform the gesture on")
	ioGestureCmd.Flags().StringVar(&gestureDurations, "durations", "", "comma separated segment durations in milliseconds")
	ioButtonCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to press button on")
	ioKeyCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to send the key to")
	ioBackCmd.Flags().StringVar(&deviceId, "device", "", "ID of the device to press back on")
}

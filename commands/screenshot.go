package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobile-next/mumucli/devices"
)

// ScreenshotRequest represents the parameters for taking a screenshot
type ScreenshotRequest struct {
	DeviceID   string `json:"deviceId"`
	Format     string `json:"format,omitempty"`     // "png" or "jpeg"
	Quality    int    `json:"quality,omitempty"`    // 1-100, only used for JPEG
	OutputPath string `json:"outputPath,omitempty"` // file path, "-" for stdout, or empty for default naming
}

// ScreenshotResponse represents the response for a screenshot command
type ScreenshotResponse struct {
	Format   string `json:"format"`
	Data     string `json:"data,omitempty"`     // base64 encoded image data
	FilePath string `json:"filePath,omitempty"` // path where file was saved
}

// ScreenshotCommand captures the emulator display through the IPC driver
func ScreenshotCommand(req ScreenshotRequest) *CommandResponse {
	// Set default format
	if req.Format == "" {
		req.Format = "png"
	}

	// Validate format
	req.Format = strings.ToLower(req.Format)
	if req.Format == "jpg" {
		req.Format = "jpeg"
	}
	if req.Format != "png" && req.Format != "jpeg" {
		return NewErrorResponse(fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", req.Format))
	}

	// Validate JPEG quality
	if req.Format == "jpeg" {
		if req.Quality < 1 || req.Quality > 100 {
			req.Quality = devices.DefaultJpegQuality
		}
	}

	targetDevice, err := FindDeviceOrAutoSelect(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %v", err))
	}

	imageBytes, err := targetDevice.TakeScreenshot(req.Format, req.Quality)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error taking screenshot: %v", err))
	}

	response := ScreenshotResponse{
		Format: req.Format,
	}

	// Handle output
	if req.OutputPath == "-" {
		// Return as base64 data for stdout
		response.Data = base64.StdEncoding.EncodeToString(imageBytes)
		return NewSuccessResponse(response)
	}

	// Save to file
	var finalPath string
	if req.OutputPath != "" {
		finalPath, err = filepath.Abs(req.OutputPath)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("invalid output path: %v", err))
		}
	} else {
		// Default filename generation
		timestamp := time.Now().Format("20060102150405")
		extension := "png"
		if req.Format == "jpeg" {
			extension = "jpg"
		}
		fileName := fmt.Sprintf("screenshot-%s-%s.%s", targetDevice.ID(), timestamp, extension)
		finalPath, err = filepath.Abs("./" + fileName)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("error creating default path: %v", err))
		}
	}

	// Write file
	err = os.WriteFile(finalPath, imageBytes, 0o600)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error writing file: %v", err))
	}

	response.FilePath = finalPath
	return NewSuccessResponse(response)
}

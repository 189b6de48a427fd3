package commands

import (
	"github.com/mobile-next/mumucli/devices"
)

// DevicesCommand lists MuMu instances; stopped ones only with showAll
func DevicesCommand(showAll bool) *CommandResponse {
	list, err := deviceLister(GetConfig(), showAll)
	if err != nil {
		return NewErrorResponse(err)
	}

	deviceInfoList := make([]devices.DeviceInfo, len(list))
	for i, d := range list {
		deviceInfoList[i] = devices.DeviceInfo{
			ID:       d.ID(),
			Name:     d.Name(),
			Platform: d.Platform(),
			Type:     d.DeviceType(),
			Version:  d.Version(),
			State:    d.State(),
		}
	}

	return NewSuccessResponse(map[string]interface{}{
		"devices": deviceInfoList,
	})
}

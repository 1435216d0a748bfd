package store

import "linkdeck/internal/clientcontext"

func deviceType(s string) clientcontext.DeviceType {
	switch clientcontext.DeviceType(s) {
	case clientcontext.DeviceDesktop, clientcontext.DeviceMobile,
		clientcontext.DeviceTablet, clientcontext.DeviceBot:
		return clientcontext.DeviceType(s)
	default:
		return clientcontext.DeviceUnknown
	}
}

// Package clientcontext derives a visitor context from an incoming request:
// public IP, country, device class, referrer platform, and UTM parameters.
// Everything in here is best-effort; a field that cannot be derived is left
// empty rather than failing the request that carries it.
package clientcontext

// DeviceType is the coarse device class recorded with analytics events.
type DeviceType string

const (
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceMobile  DeviceType = "MOBILE"
	DeviceTablet  DeviceType = "TABLET"
	DeviceBot     DeviceType = "BOT"
	DeviceUnknown DeviceType = "UNKNOWN"
)

// UTM holds the standard campaign query parameters. Absent parameters stay
// empty.
type UTM struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// Context is the resolved visitor context for one request.
//
// Private is set when the visitor sent a Do-Not-Track or Global Privacy
// Control signal; all other fields are zero in that case and nothing
// downstream may record the interaction.
type Context struct {
	Private bool

	// IP is the visitor's public IP, or empty when none of the candidate
	// headers yielded a non-private address.
	IP string

	// Country is a 2-letter upper-case code, or empty when unknown.
	Country string

	Device           DeviceType
	UserAgent        string
	Referrer         string
	ReferrerPlatform string
	UTM              UTM
}

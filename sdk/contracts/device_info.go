package contracts

// DeviceInfo contains information about a MIDI port exposed by an input or output backend.
type DeviceInfo struct {
	ID           int    // Index accepted by SelectDevice.
	Name         string // Port name.
	Manufacturer string // Device manufacturer, when the backend reports one.
	EntityName   string // Name of the entity to which the port belongs.
}

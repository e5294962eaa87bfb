package device

// Request type masks (USB 2.0 Spec Table 9-2).
const (
	RequestTypeDirectionMask = 0x80 // Direction bit mask
	RequestTypeTypeMask      = 0x60 // Type bits mask
	RequestTypeRecipientMask = 0x1F // Recipient bits mask
)

// Request type direction values.
const (
	RequestDirectionHostToDevice = 0x00 // Host to device
	RequestDirectionDeviceToHost = 0x80 // Device to host
)

// Request recipient values.
const (
	RequestRecipientDevice    = 0x00 // Device recipient
	RequestRecipientInterface = 0x01 // Interface recipient
	RequestRecipientEndpoint  = 0x02 // Endpoint recipient
	RequestRecipientOther     = 0x03 // Other recipient
)

// bmRequestType values recognized by the engine's dispatch table
// (standard requests only).
const (
	RequestTypeDeviceOut    = RequestDirectionHostToDevice | RequestRecipientDevice    // 0x00
	RequestTypeInterfaceOut = RequestDirectionHostToDevice | RequestRecipientInterface // 0x01
	RequestTypeDeviceIn     = RequestDirectionDeviceToHost | RequestRecipientDevice    // 0x80
	RequestTypeInterfaceIn  = RequestDirectionDeviceToHost | RequestRecipientInterface // 0x81
)

// USB Descriptor Types (USB 2.0 Spec Table 9-5).
const (
	DescriptorTypeDevice        = 0x01
	DescriptorTypeConfiguration = 0x02
	DescriptorTypeString        = 0x03
)

// Device class codes used by the default descriptor.
const (
	ClassPerInterface = 0x00 // Class defined at interface level
	ClassVendor       = 0xFF // Vendor Specific
)

// MaxPacketSize0 is the endpoint 0 packet size of a full-speed device.
const MaxPacketSize0 = 64

// MaxResponseWords bounds a single-packet control response in words.
const MaxResponseWords = MaxPacketSize0 / 2

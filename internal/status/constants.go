// internal/status/constants.go
package status

// Scanner Status Block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per status block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the scanner health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last scan error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds how long (in seconds) the scanner has been in error.
const SlotSecondsInError = 2

// SlotCycleCount holds the number of completed scan cycles, modulo 65536.
const SlotCycleCount = 3

// SlotLastAdvertisements holds the advertisement count of the last cycle.
const SlotLastAdvertisements = 4

// ---- RESERVED RANGE ----

// Slots 5-10 are reserved for future use.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first cycle.
const HealthUnknown uint16 = 0

// HealthOK represents a scanner whose last cycle succeeded.
const HealthOK uint16 = 1

// HealthError represents a scanner whose last cycle failed.
const HealthError uint16 = 2

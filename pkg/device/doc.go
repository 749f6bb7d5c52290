// Package device defines the addressable surface of the supported receiver
// families: which keys exist, whether they are device-level or channel-level,
// and whether they can be written.
//
// Every command the client or monitor sends is validated here first. A key
// that fails validation never reaches the network.
package device

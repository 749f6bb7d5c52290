// Package discovery finds Shure receivers on the local network via mDNS.
//
// Receivers announce themselves under the service type "_shure._tcp" in the
// "local." domain. Browsing yields one Receiver per instance; addresses seen
// on multiple interfaces are merged into a single entry.
package discovery

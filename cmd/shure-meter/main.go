// Command shure-meter is a terminal level meter for Shure receivers. It
// polls the audio level keys of every channel and draws bars with peak
// hold, the way the rack hardware front panel does.
//
// Usage:
//
//	shure-meter [flags]
//
// Flags:
//
//	-host string        Receiver hostname or IP (required)
//	-port int           Control port (default 2202)
//	-device string      Device family: ad4d, p10t (default "ad4d")
//	-refresh duration   Poll interval (default 500ms)
//
// Press q to quit.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shuretools/shurelink/pkg/client"
	"github.com/shuretools/shurelink/pkg/device"
)

func main() {
	var (
		host    string
		port    int
		family  string
		refresh = flag.Duration("refresh", defaultRefresh, "Poll interval")
	)
	flag.StringVar(&host, "host", "", "Receiver hostname or IP")
	flag.IntVar(&port, "port", 2202, "Control port")
	flag.StringVar(&family, "device", "ad4d", "Device family: ad4d, p10t")
	flag.Parse()

	if host == "" {
		fmt.Fprintln(os.Stderr, "missing -host")
		os.Exit(1)
	}
	f, err := device.ParseFamily(family)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := client.DefaultConfig()
	c := client.New(f, host, port, cfg)

	p := tea.NewProgram(newModel(c, f, host, *refresh))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

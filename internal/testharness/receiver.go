// Package testharness provides an in-process fake receiver for tests. It
// speaks just enough of the ASCII control protocol to exercise the client
// and the CLIs without hardware: it accepts connections, records every
// command line, and answers through a scripted reply function.
package testharness

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
)

// ReplyFunc maps one received command line (framing stripped of its
// trailing newline) to the raw bytes to send back. Empty means no answer,
// like a receiver ignoring an unknown key.
type ReplyFunc func(cmd string) string

// Receiver is a scripted fake device listening on a loopback port.
type Receiver struct {
	ln    net.Listener
	reply ReplyFunc

	mu       sync.Mutex
	commands []string
	dials    int
}

// Start listens on an ephemeral loopback port and serves until the test
// ends. Each connection is handled concurrently; one receiver can serve a
// pipelined bulk query and a monitor at the same time.
func Start(t *testing.T, reply ReplyFunc) *Receiver {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testharness listen: %v", err)
	}

	r := &Receiver{ln: ln, reply: reply}
	t.Cleanup(func() { ln.Close() })

	go r.acceptLoop()
	return r
}

// Host returns the listen host.
func (r *Receiver) Host() string {
	return "127.0.0.1"
}

// Port returns the listen port.
func (r *Receiver) Port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

// Commands returns every command line received so far, in arrival order.
func (r *Receiver) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Dials returns how many connections have been accepted.
func (r *Receiver) Dials() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dials
}

func (r *Receiver) acceptLoop() {
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			return
		}
		r.mu.Lock()
		r.dials++
		r.mu.Unlock()
		go r.serve(conn)
	}
}

func (r *Receiver) serve(conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)

		r.mu.Lock()
		r.commands = append(r.commands, cmd)
		r.mu.Unlock()

		if out := r.reply(cmd); out != "" {
			if _, err := conn.Write([]byte(out)); err != nil {
				return
			}
		}
	}
}

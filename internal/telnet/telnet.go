// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package telnet provides the telnet protocol adapter: a line-oriented
// server that runs the login dialog over each connection and negotiates
// client echo for password entry.
package telnet

// Telnet protocol constants (RFC 854, RFC 857).
const (
	iac  byte = 255 // Interpret As Command
	dont byte = 254
	do   byte = 253
	wont byte = 252
	will byte = 251

	optEcho byte = 1
)

// stripCommands removes telnet command sequences from one input line.
// IAC IAC unescapes to a literal 255; three-byte option negotiations and
// two-byte commands are dropped. Subnegotiation is not expected on the
// login dialog and any stray SB payload is treated as data.
func stripCommands(in []byte) []byte {
	out := in[:0]
	for i := 0; i < len(in); i++ {
		if in[i] != iac {
			out = append(out, in[i])
			continue
		}
		if i+1 >= len(in) {
			break
		}
		switch in[i+1] {
		case iac:
			out = append(out, iac)
			i++
		case will, wont, do, dont:
			i += 2
		default:
			i++
		}
	}
	return out
}

// zbsniff receives, decodes and stores ZigBee NWK frames forwarded over UDP.
//
// Usage:
//
//	zbsniff [--config zbsniff.toml] <command>
//
// Commands:
//
//	listen              receive frames until interrupted
//	decode <hex>        decode one PDU
//	captures            list stored PDUs
//	send <addr> <hex>   inject one PDU into a bridge
//	bridges             browse bridges advertised over mDNS
//
// Example:
//
//	zbsniff decode 0800fcff00001e05deadbeef
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

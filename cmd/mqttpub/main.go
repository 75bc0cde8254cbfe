// Command mqttpub publishes MQTT messages from the command line and forwards
// device events to a broker.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/panorama_navigator/internal/app"
	"github.com/relabs-tech/panorama_navigator/internal/config"
)

func main() {
	log.Println("starting panorama-navigator viewer")

	// Load configuration
	if err := config.InitGlobal(config.DefaultPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if config.Get().MQTTBroker == "" {
		log.Println("Note: MQTT_BROKER is empty, sensors only arrive over the websocket or serial port")
	}

	if err := app.RunViewer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

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
	log.Println("panorama-navigator pick journal")

	// Load configuration
	if err := config.InitGlobal(config.DefaultPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunPickLog(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

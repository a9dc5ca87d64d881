// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/panorama_navigator/internal/config"
	"github.com/relabs-tech/panorama_navigator/internal/journal"
)

// printRecentPicks writes up to limit journal entries, newest first.
func printRecentPicks(ctx context.Context, w io.Writer, j *journal.Journal, limit int) error {
	picks, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(picks) == 0 {
		fmt.Fprintln(w, "no picks recorded")
		return nil
	}
	for _, r := range picks {
		fmt.Fprintf(w, "%s  %s  cylinder %d - texture coords: %d %d  (u=%.4f v=%.4f %s)\n",
			r.At.Local().Format(time.RFC3339), r.ID, r.Cylinder+1, r.Pixel.X, r.Pixel.Y, r.U, r.V, r.Part)
	}
	return nil
}

// RunPickLog prints the most recent journal entries.
func RunPickLog() error {
	cfg := config.Get()
	if cfg.PickJournalPath == "" {
		return errors.New("PICK_JOURNAL_PATH is not set")
	}

	j, err := journal.Open(cfg.PickJournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return printRecentPicks(ctx, os.Stdout, j, cfg.PickLogLimit)
}

// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"

	"docsync/cli/internal/terminal"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startSpinner shows an inline spinner with text while a session runs and
// returns the function that removes it. Nothing is drawn when stdin is not
// a terminal or debug logging would interleave with the animation.
func startSpinner(w io.Writer, text string) func() {
	if verbose || !terminal.IsInteractive() {
		return func() {}
	}
	return startInlineSpinner(w, text, spinnerFrames, 120*time.Millisecond)
}

// startInlineSpinner redraws frames followed by text on the current line
// until the returned stop function is called, then clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	cursor.Hide()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
		cursor.Show()
	}
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/bizevents/internal/calendar"
	"github.com/pfrederiksen/bizevents/internal/event"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

func main() {
	start, _ := event.ParseTimestamp("2026-03-15T17:30:00")
	end, _ := event.ParseTimestamp("2026-03-15T19:30:00")

	// A sample stored event
	evt := storage.Event{
		ID:        123,
		Title:     "Spring Networking Mixer at The Vault",
		Start:     start,
		End:       end,
		Organizer: "NAIOP Tampa Bay",
		Industry:  "CRE",
		Market:    "TPA",
		Link:      "https://example.org/events/spring-mixer",
		Valid:     true,
	}

	var buf bytes.Buffer
	if err := calendar.Write(&buf, []storage.Event{evt}, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	// Write to file (owner read/write only)
	filename := "test-bizevents.ics"
	if err := os.WriteFile(filename, buf.Bytes(), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(buf.String())
}

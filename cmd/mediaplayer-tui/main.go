// Command mediaplayer-tui is a small terminal dashboard for a running
// mediaplayer instance: it logs in, polls GET /api/status, and prints
// the status (track, position, shuffle/repeat/mute) whenever it
// changes. Playlist changes are not shown. It is a tests/demos
// convenience, not part of the core pipeline.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	resty "github.com/go-resty/resty/v2"
	flag "github.com/spf13/pflag"
)

type status struct {
	State           string  `json:"state"`
	TrackID         uint64  `json:"trackId"`
	URI             string  `json:"uri"`
	Metadata        string  `json:"metadata"`
	PositionSeconds float64 `json:"positionSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
	Shuffle         bool    `json:"shuffle"`
	Repeat          bool    `json:"repeat"`
	Muted           bool    `json:"muted"`
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	var (
		addr     = flag.String("addr", "http://localhost:8001", "mediaplayer control API base address")
		username = flag.String("username", "dj", "operator username")
		password = flag.String("password", "", "operator password")
		interval = flag.Duration("interval", 2*time.Second, "poll interval")
	)
	flag.Parse()

	client := resty.New().SetBaseURL(*addr)

	var login struct {
		Token string `json:"token"`
	}
	resp, err := client.R().
		SetBody(map[string]string{"username": *username, "password": *password}).
		SetResult(&login).
		Post("/api/auth/login")
	if err != nil || resp.IsError() {
		logger.Fatal("login failed", "error", err, "status", resp.Status())
	}
	client.SetAuthToken(login.Token)
	logger.Info("authenticated", "addr", *addr)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var last status
	for range ticker.C {
		var st status
		r, err := client.R().SetResult(&st).Get("/api/status")
		if err != nil {
			logger.Error("status poll failed", "error", err)
			continue
		}
		if r.IsError() {
			logger.Error("status poll returned error", "status", r.Status())
			continue
		}
		if st != last {
			printStatus(logger, st)
			last = st
		}
	}
}

func printStatus(logger *log.Logger, st status) {
	logger.Info(fmt.Sprintf("%s — %s", st.State, st.URI),
		"track", st.TrackID,
		"position", fmt.Sprintf("%.1fs/%.1fs", st.PositionSeconds, st.DurationSeconds),
		"shuffle", st.Shuffle,
		"repeat", st.Repeat,
		"muted", st.Muted,
		"metadata", st.Metadata,
	)
}

// Command hitster runs a headless Hitster game client: it joins a game,
// keeps its state reconciled from the server's push stream and renders
// notifications, speech and sound cues to the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Timtam/hitster-sub000/internal/audio"
	"github.com/Timtam/hitster-sub000/internal/client"
	"github.com/Timtam/hitster-sub000/internal/config"
	"github.com/Timtam/hitster-sub000/internal/consumers"
	"github.com/Timtam/hitster-sub000/internal/i18n"
	"github.com/Timtam/hitster-sub000/internal/session"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("hitster client failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	loc := i18n.New(cfg.Locale)
	identity := &session.TokenProvider{Token: func() string { return cfg.SessionToken }}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initial, err := client.FetchSnapshot(ctx, nil, cfg.ServerURL, cfg.GameID)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"game":    initial.ID,
		"state":   initial.State,
		"players": len(initial.Players),
	}).Info("joined game")

	// One hit plays at a time; a new URL replaces the current stream.
	pool := audio.NewPool(1)
	defer pool.Teardown()
	var playing *audio.Handle

	sess := client.NewSession(initial, client.Options{
		Log:   log,
		Audio: audio.NewResolver(cfg.ServerURL, nil),
		OnAudioURL: func(url string) {
			if playing != nil {
				pool.Release(playing)
			}
			h, err := pool.Acquire(url)
			if err != nil {
				log.WithError(err).Warn("cannot start hit playback")
				return
			}
			playing = h
			fmt.Printf("[audio] %s\n", url)
		},
		OnInterrupted: func(err error) {
			fmt.Println(loc.T("notify.connection_lost"))
			stop()
		},
		OnRemoved: func() {
			fmt.Println(loc.T("notify.removed"))
			stop()
		},
	})
	defer sess.Teardown()

	printOut := func(text string, politeness consumers.Politeness) {
		fmt.Printf("[%s] %s\n", politeness, text)
	}
	notifications := consumers.NewNotificationLog(sess.Bus(), loc, cfg.AnnounceInterval, printOut)
	sess.OnTeardown(notifications.Teardown)

	speech := consumers.NewSpeechQueue(sess.Bus(), loc, cfg.AnnounceInterval, func(text string, _ consumers.Politeness) {
		fmt.Printf("[speech] %s\n", text)
	})
	sess.OnTeardown(speech.Teardown)

	sounds := consumers.NewSoundPlayer(sess.Bus(), identity, sess.Snapshot,
		func() float64 { return cfg.EffectsVolume },
		func(cue consumers.Cue, volume float64) {
			fmt.Printf("[sound] %s (volume %.2f)\n", cue, volume)
		})
	sess.OnTeardown(sounds.Teardown)

	if err := sess.Connect(ctx, cfg.ServerURL); err != nil {
		return err
	}
	log.Info("listening for game events, press Ctrl+C to leave")

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

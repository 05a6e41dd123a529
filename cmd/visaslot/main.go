// Package main runs the visa appointment booking bot: on a fixed schedule
// it opens an isolated Chromium session, walks the scheduling site's form
// looking for a preferred appointment date, notifies the operator over
// Telegram, and tears the browser's process family down completely before
// the next attempt.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/visaslot/visaslot/pkg/booking"
	"github.com/visaslot/visaslot/pkg/browser"
	"github.com/visaslot/visaslot/pkg/config"
	"github.com/visaslot/visaslot/pkg/logging"
	"github.com/visaslot/visaslot/pkg/notify"
	"github.com/visaslot/visaslot/pkg/procs"
	"github.com/visaslot/visaslot/pkg/sched"
)

const version = "0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "visaslot.yaml", "Path to the YAML configuration file")
		once        = flag.Bool("once", false, "Run a single booking attempt and exit")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("visaslot v%s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg, *once); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, once bool) error {
	mainLog, _ := logging.NewLogger("main")
	defer mainLog.Close()

	pred, err := procs.NewPredicate(cfg.Browser.ExtraProcessPatterns...)
	if err != nil {
		return err
	}
	inv := procs.NewInventory(procs.SystemLister{}, pred)

	client, err := browser.NewPlaywrightClient()
	if err != nil {
		return err
	}
	defer client.Close()

	browserLog, _ := logging.NewLogger("browser")
	defer browserLog.Close()
	controller := browser.NewController(client, inv, procs.SystemSignaller{}, browserLog, browser.Options{
		Headless:        cfg.Browser.Headless,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	})

	var notifier *notify.Notifier
	if cfg.NotificationsEnabled() {
		notifier, err = notify.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			// Keep attempting bookings even when the bot is unreachable.
			mainLog.Errorf("telegram bot unavailable: %v", err)
		}
	}

	bookingLog, _ := logging.NewLogger("booking")
	defer bookingLog.Close()
	booker := booking.New(booking.Config{
		URL:         cfg.Booking.URL,
		ServiceName: cfg.Booking.Service,
		Applicant: booking.Applicant{
			FirstName: cfg.Applicant.FirstName,
			LastName:  cfg.Applicant.LastName,
			Email:     cfg.Applicant.Email,
			Phone:     cfg.Applicant.Phone,
		},
		PreferredDates: cfg.Booking.PreferredDates,
	}, bookingLog)

	job := func() {
		attempt(ctx, controller, booker, notifier, mainLog)
	}

	if once {
		job()
		return nil
	}

	scheduler, err := sched.New(cfg.SchedulerPeriod(), job, mainLog)
	if err != nil {
		return err
	}
	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()
	return nil
}

// attempt runs one booking pass inside a controller-scoped browser session.
// Workflow errors are logged and reported; they never stop the schedule.
func attempt(ctx context.Context, controller *browser.Controller, booker *booking.Booker, notifier *notify.Notifier, log *logging.Logger) {
	var result *booking.Result

	survivors, err := controller.Run(ctx, func(h browser.Handle) error {
		var runErr error
		result, runErr = booker.Run(h.Page())
		return runErr
	})

	if survivors > 0 {
		log.Warnf("%d browser processes survived cleanup", survivors)
	}
	if err != nil {
		log.Errorf("booking attempt failed: %v", err)
		return
	}

	switch {
	case result == nil:
		// Session never reached the workflow.
	case result.Booked():
		log.Infof("booked appointment for %s", result.BookedDate)
		if notifier != nil {
			caption := fmt.Sprintf("Appointment booked for %s", result.BookedDate)
			if len(result.Screenshot) > 0 {
				if err := notifier.SendPhoto(caption, result.Screenshot); err != nil {
					log.Errorf("failed to notify operator: %v", err)
				}
			} else if err := notifier.SendMessage(caption); err != nil {
				log.Errorf("failed to notify operator: %v", err)
			}
		}
	default:
		log.Infof("no preferred date available; calendar offered %v", result.AvailableDates)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/bootstrap"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	"github.com/zatekoja/patientqueue/pkg/config"
)

const dateLayout = "2006-01-02"

type options struct {
	queueUUID string
	date      string
	status    string
}

func parseOptions(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("waitstats", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.queueUUID, "queue", "", "Queue UUID (required)")
	fs.StringVar(&opts.date, "date", "", "Calendar day as YYYY-MM-DD (default today)")
	fs.StringVar(&opts.status, "status", "", "Only count entries with this status concept UUID")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if strings.TrimSpace(opts.queueUUID) == "" {
		return opts, errors.New("-queue is required")
	}
	return opts, nil
}

// report prints the average wait for one queue and day
func report(ctx context.Context, svc *services.QueueService, opts options, out io.Writer) error {
	date := svc.Today()
	if opts.date != "" {
		parsed, err := time.ParseInLocation(dateLayout, opts.date, svc.Location())
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", opts.date, err)
		}
		date = parsed
	}

	var status *string
	if opts.status != "" {
		status = &opts.status
	}

	avg, err := svc.GetAverageWaitTimeByUUID(ctx, opts.queueUUID, status, date)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "queue=%s date=%s", opts.queueUUID, date.Format(dateLayout))
	if status != nil {
		fmt.Fprintf(out, " status=%s", *status)
	}
	fmt.Fprintf(out, " average_wait_minutes=%.2f\n", avg)
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: waitstats -queue <uuid> [-date YYYY-MM-DD] [-status <uuid>]\n%v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("waitstats", cfg.Log.Env, cfg.Log.Level)

	location, err := cfg.Queue.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid queue time zone")
	}

	storage, err := bootstrap.OpenStorage(cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer storage.Close()

	svc := services.NewQueueService(
		storage.Queues,
		storage.Entries,
		nil,
		nil,
		providers.SystemClock{},
		services.WithTimeZone(location),
		services.WithWaitWindow(services.WaitWindow(cfg.Queue.WaitWindow)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := report(ctx, svc, opts, os.Stdout); err != nil {
		log.Error().Err(err).Str("queue_uuid", opts.queueUUID).Msg("failed to compute average wait time")
		storage.Close()
		os.Exit(1)
	}
}

package main

import (
	"context"
	_ "embed"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/adapters/database"
	"github.com/zatekoja/patientqueue/internal/adapters/events"
	"github.com/zatekoja/patientqueue/internal/adapters/search"
	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	"github.com/zatekoja/patientqueue/pkg/config"
)

//go:embed schema.sql
var schema string

type seedQueue struct {
	name     string
	location string
	rooms    []string
	// minutes waited by each patient seeded today; negative means still waiting
	waits []int
}

var seedQueues = []seedQueue{
	{name: "Triage", location: "8d6c993e-c2cc-11de-8d13-0010c6dffd0f", rooms: []string{"Triage Room 1", "Triage Room 2"}, waits: []int{12, 25, 40, -1}},
	{name: "Consultation", location: "8d6c993e-c2cc-11de-8d13-0010c6dffd0f", rooms: []string{"Consultation Room A"}, waits: []int{35, 50, -1, -1}},
	{name: "Pharmacy", location: "58c57d25-8d39-41ab-8422-108a0c277d98", rooms: []string{"Dispensary"}, waits: []int{5, 8, 15}},
	{name: "Laboratory", location: "58c57d25-8d39-41ab-8422-108a0c277d98", rooms: []string{"Sample Collection"}, waits: []int{20}},
}

const (
	statusWaiting   = "51ae5e4d-b72b-4912-bf31-a17efb690aeb"
	statusFinished  = "ca7494ae-437f-4fd0-8aae-b88b9a2ba47d"
	priorityRoutine = "f4620bfa-3625-4883-bd3f-84c2cce14470"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("queue-seed", cfg.Log.Env, cfg.Log.Level)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				queue_entries,
				queue_rooms,
				queues
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	var searchRepo repositories.QueueSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, skipping search indexing")
		} else {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = search.NewTypesenseAdapter(tsClient)
		}
	}

	location, err := cfg.Queue.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid queue time zone")
	}

	queueRepo := database.NewQueueAdapter(pgClient, nil)
	entryRepo := database.NewQueueEntryAdapter(pgClient, nil)
	roomRepo := database.NewQueueRoomAdapter(pgClient, nil)

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	clock := providers.SystemClock{}
	queueService := services.NewQueueService(queueRepo, entryRepo, searchRepo, bus, clock, services.WithTimeZone(location))
	entryService := services.NewQueueEntryService(entryRepo, queueRepo, bus, clock)
	roomService := services.NewQueueRoomService(roomRepo, queueRepo, bus, clock)

	// entries start shortly after local midnight so they land in today's window
	dayStart := queueService.Today().Add(time.Hour)

	for _, sq := range seedQueues {
		queue, err := queueService.CreateQueue(ctx, &entities.Queue{
			Name:         sq.name,
			Description:  sq.name + " queue",
			LocationUUID: sq.location,
		})
		if err != nil {
			log.Error().Err(err).Str("queue", sq.name).Msg("failed to create queue")
			continue
		}

		for _, name := range sq.rooms {
			if _, err := roomService.CreateQueueRoom(ctx, &entities.QueueRoom{
				Name:         name,
				QueueID:      queue.ID,
				LocationUUID: sq.location,
			}); err != nil {
				log.Error().Err(err).Str("room", name).Msg("failed to create queue room")
			}
		}

		priority := priorityRoutine
		for i, wait := range sq.waits {
			startedAt := dayStart.Add(time.Duration(i*10) * time.Minute)
			entry, err := entryService.CreateQueueEntry(ctx, queue.UUID, &entities.QueueEntry{
				PatientUUID:  uuid.NewString(),
				StatusUUID:   statusWaiting,
				PriorityUUID: &priority,
				SortWeight:   float64(i),
				StartedAt:    startedAt,
			})
			if err != nil {
				log.Error().Err(err).Str("queue", sq.name).Msg("failed to create queue entry")
				continue
			}
			if wait < 0 {
				continue
			}

			endedAt := startedAt.Add(time.Duration(wait) * time.Minute)
			if _, err := entryService.UpdateQueueEntryStatus(ctx, entry.UUID, statusFinished); err != nil {
				log.Error().Err(err).Str("entry", entry.UUID).Msg("failed to update entry status")
			}
			if _, err := entryService.EndQueueEntry(ctx, entry.UUID, &endedAt); err != nil {
				log.Error().Err(err).Str("entry", entry.UUID).Msg("failed to end queue entry")
			}
		}

		avg, err := queueService.GetAverageWaitTime(ctx, queue, nil, dayStart)
		if err != nil {
			log.Warn().Err(err).Str("queue", sq.name).Msg("failed to compute average wait time")
			continue
		}
		log.Info().
			Str("queue", sq.name).
			Str("uuid", queue.UUID).
			Int("entries", len(sq.waits)).
			Float64("average_wait_minutes", avg).
			Msg("queue seeded")
	}

	log.Info().Msg("seeding complete")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	apperrors "github.com/zatekoja/patientqueue/pkg/errors"
)

var validate = validator.New()

// validateEntity runs the struct tags of an entity and reports every failed field
func validateEntity(entity interface{}) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

func requireValue(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(name + " is required")
	}
	return nil
}

// publish sends an event to the queue's own channel and the global updates
// channel. Delivery is best effort.
func publish(ctx context.Context, bus providers.EventBus, event *entities.QueueEvent) {
	if bus == nil || event == nil {
		return
	}
	channels := []string{providers.GetQueueChannel(event.QueueUUID), providers.EventChannelQueueUpdates}
	for _, channel := range channels {
		if err := bus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Str("event_type", string(event.EventType)).Msg("failed to publish queue event")
		}
	}
}

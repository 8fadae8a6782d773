package handler

import (
	"context"

	"github.com/iliyamo/travel-experience-marketplace/internal/queue"
	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
	"github.com/iliyamo/travel-experience-marketplace/internal/service/queuepublisher"
)

// OperatorHandler bundles the repositories operators need to manage
// their catalog and review bookings. All methods except CreateOperator
// assume the OperatorAuth middleware already resolved the caller's
// API key to an operator ID in the context; ownership of the touched
// rows is still re-derived per call from the chain
// booking → slot → experience → operator.
type OperatorHandler struct {
	OperatorRepo   *repository.OperatorRepo
	ExperienceRepo *repository.ExperienceRepo
	SlotRepo       *repository.SlotRepo
	BookingRepo    *repository.BookingRepo

	// Publish sends the booking-confirmed event after a successful
	// confirm. Failures are logged by the publisher and ignored here.
	Publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewOperatorHandler constructs an OperatorHandler with the provided
// repositories and the default RabbitMQ publisher. All repositories
// must be non-nil.
func NewOperatorHandler(operatorRepo *repository.OperatorRepo, experienceRepo *repository.ExperienceRepo, slotRepo *repository.SlotRepo, bookingRepo *repository.BookingRepo) *OperatorHandler {
	if operatorRepo == nil || experienceRepo == nil || slotRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewOperatorHandler")
	}
	return &OperatorHandler{
		OperatorRepo:   operatorRepo,
		ExperienceRepo: experienceRepo,
		SlotRepo:       slotRepo,
		BookingRepo:    bookingRepo,
		Publish:        queuepublisher.PublishBookingConfirmed,
	}
}

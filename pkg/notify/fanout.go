package notify

import (
	"context"
	"errors"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// Fanout delivers each notification to every channel
type Fanout []domain.Notifier

// NewFanout drops nil channels
func NewFanout(channels ...domain.Notifier) Fanout {
	out := make(Fanout, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// NotifyNewLead sends to all channels; one failing channel does not stop the rest
func (f Fanout) NotifyNewLead(ctx context.Context, lead models.Lead) error {
	var errs []error
	for _, ch := range f {
		if err := ch.NotifyNewLead(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) NotifyUnsynced(ctx context.Context, kind, ref string, cause error) error {
	var errs []error
	for _, ch := range f {
		if err := ch.NotifyUnsynced(ctx, kind, ref, cause); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

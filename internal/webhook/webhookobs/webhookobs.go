package webhookobs

import (
	"context"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

type observableSink struct {
	sink interfaces.Sink
}

var _ interfaces.Sink = (*observableSink)(nil)

// Wrap wraps a sink with a timed operation (span plus start/end logs).
func Wrap(sink interfaces.Sink) interfaces.Sink {
	return &observableSink{sink: sink}
}

func (s *observableSink) Dispatch(ctx context.Context, webhookURL, text string) (types.DispatchResult, error) {
	op := logger.StartOperation(ctx, "webhook.Dispatch", "target", logger.MaskURL(webhookURL), "chars", len(text))
	res, err := s.sink.Dispatch(op.GetContext(), webhookURL, text)
	if err != nil {
		op.EndWithError(err, "status_code", res.StatusCode)
		return res, err
	}
	op.End("status_code", res.StatusCode)
	return res, nil
}

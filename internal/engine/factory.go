package engine

import (
	"crypto-narrator/internal/challenge"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/store"
)

func New(cfg *store.Config, gate *challenge.Gate, fetcher interfaces.SeriesFetcher, composer *narrative.Composer, sink interfaces.Sink) interfaces.Engine {
	return newEngine(cfg, gate, fetcher, composer, sink)
}

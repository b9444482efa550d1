package engine

import (
	"errors"

	"crypto-narrator/internal/snapshot"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/types"
)

func (e *Engine) assets() [2]store.Asset {
	return [2]store.Asset{e.cfg.Assets.Primary, e.cfg.Assets.Secondary}
}

// buildSnapshot degrades to a price-only snapshot when the series has a single
// point; degraded reports that case.
func buildSnapshot(s *types.NormalizedSeries) (snap types.AssetSnapshot, degraded bool, err error) {
	snap, err = snapshot.Build(s)
	if err == nil {
		return snap, false, nil
	}
	if !errors.Is(err, types.ErrInsufficientData) || s.Len() == 0 {
		return types.AssetSnapshot{}, false, err
	}
	snap, err = snapshot.Partial(s)
	if err != nil {
		return types.AssetSnapshot{}, false, err
	}
	return snap, true, nil
}

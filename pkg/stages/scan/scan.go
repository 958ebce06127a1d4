// Package scan implements the first pass over a stream: it inventories every
// NAL unit and records parameter sets.
package scan

import (
	"context"

	"github.com/user/annexdec/pkg/nalu"
	"github.com/user/annexdec/pkg/paramset"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
)

// Stage scans a stream and fills a parameter set store.
// A nil store only inventories the stream.
type Stage struct {
	store  *paramset.Store
	logger ports.Logger
}

// NewStage creates a new scan stage.
func NewStage(store *paramset.Store, logger ports.Logger) *Stage {
	return &Stage{
		store:  store,
		logger: logger.WithComponent("scanner"),
	}
}

// Execute walks every unit of input.Data.
func (s *Stage) Execute(ctx context.Context, input pipeline.ScanInput) (pipeline.ScanResult, error) {
	result := pipeline.ScanResult{Counts: make(map[string]int)}

	index := 0
	for u := range nalu.Scan(input.Data) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		typ, err := u.Type()
		if err != nil {
			s.logger.Debug("Skipping empty NAL unit at offset %d", u.Offset)
			result.Empty++
			continue
		}

		s.logger.Debug("Found NAL unit with size %d at offset %d (%s)", u.Len(), u.Offset, typ)
		result.Units = append(result.Units, pipeline.UnitInfo{
			Index:  index,
			Offset: u.Offset,
			Size:   u.Len(),
			Type:   typ.String(),
			TypeID: int(typ),
		})
		result.Counts[typ.String()]++
		index++

		if s.store != nil && s.store.Record(typ, u.Payload) {
			s.logger.Debug("Stored %s (%d bytes)", typ, u.Len())
		}
	}

	if s.store != nil {
		result.Ready = s.store.IsReady()
	} else {
		result.Ready = result.Counts[nalu.TypeSPS.String()] > 0 && result.Counts[nalu.TypePPS.String()] > 0
	}
	return result, nil
}

var _ pipeline.Stage[pipeline.ScanInput, pipeline.ScanResult] = (*Stage)(nil)

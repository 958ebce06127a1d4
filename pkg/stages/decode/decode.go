package decode

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/annexdec/pkg/nalu"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
)

// Stage submits every coded unit of a stream to a new decode session.
// SPS and PPS units are not submitted: the session already carries them in
// its format description.
type Stage struct {
	svc    ports.DecoderService
	logger ports.Logger
}

// NewStage creates a new decode stage.
func NewStage(svc ports.DecoderService, logger ports.Logger) *Stage {
	return &Stage{
		svc:    svc,
		logger: logger.WithComponent("decoder"),
	}
}

// Execute opens a session, submits the stream, flushes and closes the session.
// Any error closes the session before returning.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	result := pipeline.DecodeResult{}

	if input.Description == nil {
		return result, fmt.Errorf("%w: no format description", ErrSessionState)
	}

	p := NewPipeline(s.svc, s.logger)
	if err := p.Open(input.Description, input.PixelFormat, input.Handler); err != nil {
		return result, err
	}

	err := s.submitAll(ctx, p, input.Data, &result)
	if err == nil {
		err = p.Flush()
	}
	return result, errors.Join(err, p.Close())
}

func (s *Stage) submitAll(ctx context.Context, p *Pipeline, data []byte, result *pipeline.DecodeResult) error {
	var au []byte
	for u := range nalu.Scan(data) {
		if err := ctx.Err(); err != nil {
			return err
		}

		typ, err := u.Type()
		if err != nil {
			result.Empty++
			continue
		}
		if typ.IsParameterSet() {
			result.ParameterSets++
			continue
		}

		au, err = nalu.AppendReformat(au[:0], u.Payload)
		if err != nil {
			return fmt.Errorf("unit at offset %d: %w", u.Offset, err)
		}

		s.logger.Debug("Submitting %s unit of %d bytes", typ, len(au))
		if err := p.Submit(au); err != nil {
			return err
		}
		result.Submitted++
		result.SubmitBytes += int64(len(au))
	}
	return nil
}

var _ pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult] = (*Stage)(nil)

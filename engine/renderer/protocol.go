package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/webray-go/engine/tile"
)

// protocol drives one render through the device: one dispatch per tile, then a single copy and
// read of the output texture. Device waits run on a dedicated single worker pool so the caller
// only blocks on a channel it can abandon after the poll timeout.
type protocol struct {
	backend     RendererBackend
	pipeline    pipeline.Pipeline
	res         *resources
	pool        worker.DynamicWorkerPool
	pollTimeout time.Duration
	logger      *slog.Logger
}

// newProtocol starts the poll worker for one render.
func newProtocol(backend RendererBackend, p pipeline.Pipeline, res *resources, pollTimeout time.Duration, logger *slog.Logger) *protocol {
	return &protocol{
		backend:     backend,
		pipeline:    p,
		res:         res,
		pool:        worker.NewDynamicWorkerPool(1, 1, time.Second),
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// stop shuts down the poll worker.
func (p *protocol) stop() {
	p.pool.Stop()
}

// runTile writes the tile origin, dispatches one invocation per tile pixel and waits for the dispatch to finish.
//
// Parameters:
//   - t: the tile to render
//
// Returns:
//   - error: a *common.DeviceError if the write, dispatch or wait failed
func (p *protocol) runTile(t tile.Tile) error {
	ctx := tile.NewGPUExecutionContext(t)
	err := p.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: p.res.execution, Binding: binding.BindingExecutionContext, Data: ctx.Marshal()},
	})
	if err != nil {
		return &common.DeviceError{Op: "write execution context", Err: err}
	}

	index, err := p.backend.Dispatch(p.pipeline, p.res.providers(), [3]uint32{t.Width, t.Height, 1})
	if err != nil {
		return &common.DeviceError{Op: "dispatch tile", Err: err}
	}
	return p.await(index)
}

// await polls the device for index on the worker and waits at most pollTimeout for confirmation.
// A non-positive pollTimeout waits indefinitely.
func (p *protocol) await(index SubmissionIndex) error {
	done := make(chan error, 1)
	p.pool.SubmitTask(worker.Task{
		ID:      int(index),
		Payload: index,
		Do: func() (any, error) {
			err := p.backend.Poll(index)
			done <- err
			return nil, err
		},
	})

	var timeout <-chan time.Time
	if p.pollTimeout > 0 {
		timer := time.NewTimer(p.pollTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return &common.DeviceError{Op: "poll", Err: err}
		}
		return nil
	case <-timeout:
		return &common.DeviceError{
			Op:  "poll",
			Err: fmt.Errorf("%w: submission %d not confirmed within %s", common.ErrPollTimeout, index, p.pollTimeout),
		}
	}
}

// readback copies the output texture into the result buffer, maps it and returns a tightly packed copy
// of its pixels. The mapping callback reports through a channel of capacity one and is received once.
//
// Returns:
//   - []byte: width*height*4 RGBA8 bytes, row-major
//   - error: a *common.DeviceError if the copy or wait failed, or a *common.ReadbackError if mapping failed
func (p *protocol) readback() ([]byte, error) {
	res := p.res
	index, err := p.backend.CopyTextureToBuffer(
		res.system, binding.BindingOutputTexture,
		res.readback, readbackBinding,
		res.width, res.height, res.bytesPerRow,
	)
	if err != nil {
		return nil, &common.DeviceError{Op: "copy output texture", Err: err}
	}

	size := res.readbackSize()
	mapped := make(chan error, 1)
	err = p.backend.MapRead(res.readback, readbackBinding, size, func(mapErr error) {
		select {
		case mapped <- mapErr:
		default:
		}
	})
	if err != nil {
		return nil, &common.ReadbackError{Err: wrapMapFailed(err)}
	}

	if err := p.await(index); err != nil {
		return nil, err
	}

	var timeout <-chan time.Time
	if p.pollTimeout > 0 {
		timer := time.NewTimer(p.pollTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case mapErr := <-mapped:
		if mapErr != nil {
			return nil, &common.ReadbackError{Err: wrapMapFailed(mapErr)}
		}
	case <-timeout:
		return nil, &common.ReadbackError{Err: fmt.Errorf("%w: map callback not delivered", common.ErrMapFailed)}
	}

	data := p.backend.MappedRange(res.readback, readbackBinding, size)
	defer p.backend.Unmap(res.readback, readbackBinding)
	if uint64(len(data)) < size {
		return nil, &common.ReadbackError{
			Err: fmt.Errorf("%w: mapped %d bytes, want %d", common.ErrMapFailed, len(data), size),
		}
	}

	out := depad(data, res.width, res.height, res.bytesPerRow)
	p.logger.Info("readback complete", "bytes", len(out))
	return out, nil
}

// wrapMapFailed makes sure a mapping failure matches common.ErrMapFailed.
func wrapMapFailed(err error) error {
	if errors.Is(err, common.ErrMapFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrMapFailed, err)
}

// depad copies rows of bytesPerRow pitch into a tightly packed width*height*4 buffer.
//
// Parameters:
//   - src: the mapped rows, at least bytesPerRow*height bytes
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - bytesPerRow: the row pitch of src
//
// Returns:
//   - []byte: a new buffer owned by the caller
func depad(src []byte, width, height, bytesPerRow uint32) []byte {
	rowBytes := uint64(width) * binding.BytesPerPixel
	pitch := uint64(bytesPerRow)
	out := make([]byte, rowBytes*uint64(height))
	if rowBytes == pitch {
		copy(out, src[:len(out)])
		return out
	}
	for y := range uint64(height) {
		copy(out[y*rowBytes:(y+1)*rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
	return out
}

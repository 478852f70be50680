package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// maxFrameDelta caps the time step after a stall so beams do not jump.
const maxFrameDelta = 250 * time.Millisecond

// LifecycleState is the mount state of a BeamField.
type LifecycleState int

const (
	StateUninitialized LifecycleState = iota
	StateInitializing
	StateRunning
	StateStopped
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("LifecycleState(%d)", int(s))
}

// PointerSampler supplies the pointer position in normalized device
// coordinates (x right, y up, both in [-1, 1]). ok is false when there is no pointer.
type PointerSampler interface {
	Sample() (pos r2.Vec, ok bool)
}

// RenderState is the mutable per-mount state. It exists only while the field is running.
type RenderState struct {
	surface   Surface
	handle    FrameHandle
	elapsed   float64
	lastFrame time.Time
	frames    uint64
	drawCalls uint64
}

// advance moves elapsed time forward by the frame delta scaled by speed.
// The first frame and out-of-order timestamps contribute zero.
func (rs *RenderState) advance(now time.Time, speed float64) time.Duration {
	var delta time.Duration
	if !rs.lastFrame.IsZero() {
		delta = now.Sub(rs.lastFrame)
		if delta < 0 {
			delta = 0
		}
		if delta > maxFrameDelta {
			delta = maxFrameDelta
		}
	}
	if rs.lastFrame.IsZero() || now.After(rs.lastFrame) {
		rs.lastFrame = now
	}
	rs.elapsed += delta.Seconds() * speed
	rs.frames++
	return delta
}

// FieldStats is a snapshot of a field's progress.
type FieldStats struct {
	State     LifecycleState
	Elapsed   float64
	Frames    uint64
	DrawCalls uint64
	Beams     int
}

// FieldOption customizes a BeamField.
type FieldOption func(*BeamField)

// WithSurfaceProvider sets where the field gets its rendering surface.
func WithSurfaceProvider(p SurfaceProvider) FieldOption {
	return func(bf *BeamField) { bf.provider = p }
}

// WithScheduler sets the frame scheduler.
func WithScheduler(s FrameScheduler) FieldOption {
	return func(bf *BeamField) { bf.scheduler = s }
}

// WithPointer enables pointer distortion fed by p.
func WithPointer(p PointerSampler) FieldOption {
	return func(bf *BeamField) { bf.pointer = p }
}

// BeamField is the animated beam background. Start mounts it, Resize follows
// the viewport and Stop unmounts it. Failures never escape as panics; at worst
// the field draws nothing.
type BeamField struct {
	mu        sync.Mutex
	cfg       BeamConfig
	light     colorful.Color
	geom      *Geometry
	provider  SurfaceProvider
	scheduler FrameScheduler
	pointer   PointerSampler

	state   LifecycleState
	rs      *RenderState
	final   FieldStats
	initErr error
}

// NewBeamField validates cfg and generates the beam geometry. Without options
// the field renders into an in-memory image and only advances when stepped.
func NewBeamField(cfg BeamConfig, opts ...FieldOption) (*BeamField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bf := &BeamField{
		cfg:   cfg,
		light: cfg.Light(),
		geom:  BuildGeometry(cfg),
	}
	for _, opt := range opts {
		opt(bf)
	}
	if bf.provider == nil {
		bf.provider = &ImageSurfaceProvider{}
	}
	if bf.scheduler == nil {
		bf.scheduler = &manualScheduler{}
	}
	return bf, nil
}

// Config returns the field configuration.
func (bf *BeamField) Config() BeamConfig {
	return bf.cfg
}

// Beams returns a copy of the generated beams.
func (bf *BeamField) Beams() []Beam {
	out := make([]Beam, len(bf.geom.Beams))
	copy(out, bf.geom.Beams)
	return out
}

// Start acquires a surface of the given size, uploads the geometry and
// schedules the first frame. An initialization failure is logged once and
// leaves the field stopped.
func (bf *BeamField) Start(width, height int) (err error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.state != StateUninitialized {
		return ErrAlreadyMounted
	}
	bf.state = StateInitializing

	var surface Surface
	defer func() {
		if r := recover(); r != nil {
			LogPanic(r, "beam field start")
			if surface != nil {
				surface.Release()
			}
			err = bf.failInit(fmt.Errorf("panic: %v", r))
		}
	}()

	surface, err = bf.provider.Acquire(width, height)
	if err != nil {
		if surface != nil {
			surface.Release()
		}
		return bf.failInit(fmt.Errorf("acquire surface: %w", err))
	}
	if err := surface.Upload(bf.geom); err != nil {
		surface.Release()
		return bf.failInit(fmt.Errorf("upload geometry: %w", err))
	}

	bf.rs = &RenderState{surface: surface}
	bf.state = StateRunning
	LogInfo("Beam field mounted: %d beams, %dx%d", len(bf.geom.Beams), width, height)

	bf.rs.handle = bf.scheduler.Schedule(bf.onFrame)
	return nil
}

func (bf *BeamField) failInit(cause error) error {
	err := &InitializationError{Err: cause}
	bf.initErr = err
	bf.state = StateStopped
	bf.final = FieldStats{State: StateStopped, Beams: len(bf.geom.Beams)}
	LogError("%v", err)
	return err
}

// Err returns the initialization error, if mounting failed.
func (bf *BeamField) Err() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	return bf.initErr
}

// onFrame is the per-frame callback: advance time, push uniforms, draw,
// schedule the next frame.
func (bf *BeamField) onFrame(now time.Time) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.state != StateRunning || bf.rs == nil {
		return
	}
	rs := bf.rs
	rs.handle = nil

	defer func() {
		if r := recover(); r != nil {
			LogPanic(r, "beam field frame")
			bf.shutdownLocked()
		}
	}()

	rs.advance(now, bf.cfg.Speed)

	if len(bf.geom.Beams) > 0 {
		if err := rs.surface.Draw(bf.uniforms(rs)); err != nil {
			LogError("Beam field draw failed, stopping: %v", err)
			bf.shutdownLocked()
			return
		}
		rs.drawCalls++
	}

	rs.handle = bf.scheduler.Schedule(bf.onFrame)
}

func (bf *BeamField) uniforms(rs *RenderState) Uniforms {
	u := Uniforms{
		Time:           rs.elapsed,
		Light:          bf.light,
		NoiseIntensity: bf.cfg.NoiseIntensity,
		Scale:          bf.cfg.Scale,
		Rotation:       bf.cfg.Rotation,
	}
	u.Width, u.Height = rs.surface.Size()
	if bf.pointer != nil {
		u.Pointer, u.HasPointer = bf.pointer.Sample()
	}
	return u
}

// seek jumps the field clock to elapsed without drawing the frames in
// between. The next frame is drawn at exactly that time.
func (bf *BeamField) seek(elapsed float64) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.state != StateRunning || bf.rs == nil {
		return ErrNotRunning
	}
	bf.rs.elapsed = elapsed
	return nil
}

// Resize adjusts the surface without touching the beams or the loop. On
// failure the previous size is kept and a *ResizeError is returned.
func (bf *BeamField) Resize(width, height int) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.state != StateRunning || bf.rs == nil {
		return ErrNotRunning
	}

	prevW, prevH := bf.rs.surface.Size()
	var cause error
	if width <= 0 || height <= 0 {
		cause = errors.New("size must be positive")
	} else {
		cause = bf.rs.surface.Resize(width, height)
	}
	if cause != nil {
		err := &ResizeError{Width: width, Height: height, Err: cause}
		LogError("%v, keeping %dx%d", err, prevW, prevH)
		return err
	}

	LogDebug("Beam field resized: %dx%d -> %dx%d", prevW, prevH, width, height)
	return nil
}

// Stop cancels the pending frame and releases the surface. It is safe to call
// any number of times.
func (bf *BeamField) Stop() {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	switch bf.state {
	case StateStopped:
		return
	case StateUninitialized:
		bf.state = StateStopped
		bf.final = FieldStats{State: StateStopped, Beams: len(bf.geom.Beams)}
		return
	}
	bf.shutdownLocked()
}

func (bf *BeamField) shutdownLocked() {
	rs := bf.rs
	bf.state = StateStopped
	bf.rs = nil
	if rs == nil {
		return
	}

	if rs.handle != nil {
		rs.handle.Cancel()
		rs.handle = nil
	}
	if err := rs.surface.Release(); err != nil {
		LogError("Beam field surface release failed: %v", err)
	}

	bf.final = FieldStats{
		State:     StateStopped,
		Elapsed:   rs.elapsed,
		Frames:    rs.frames,
		DrawCalls: rs.drawCalls,
		Beams:     len(bf.geom.Beams),
	}
	LogInfo("Beam field unmounted after %d frames", rs.frames)
}

// Stats reports the current (or final, once stopped) progress.
func (bf *BeamField) Stats() FieldStats {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.rs == nil {
		st := bf.final
		st.State = bf.state
		st.Beams = len(bf.geom.Beams)
		return st
	}
	return FieldStats{
		State:     bf.state,
		Elapsed:   bf.rs.elapsed,
		Frames:    bf.rs.frames,
		DrawCalls: bf.rs.drawCalls,
		Beams:     len(bf.geom.Beams),
	}
}

// View returns the terminal rendering of the last frame, or "" when the
// field is not running or its surface is not a terminal.
func (bf *BeamField) View() string {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.state != StateRunning || bf.rs == nil {
		return ""
	}
	if v, ok := bf.rs.surface.(interface{ View() string }); ok {
		return v.View()
	}
	return ""
}

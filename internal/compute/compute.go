// Package compute drives GPU compute passes over WebGPU. It is independent
// of raylib's rendering context and safe to use in headless binaries.
package compute

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// System holds the WebGPU device state shared by every compute pass.
type System struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

var (
	global   *System
	initOnce sync.Once
	initErr  error
)

// AdapterInfo describes the GPU the compute system landed on.
type AdapterInfo struct {
	Name    string
	Vendor  string
	Backend string
}

// Initialize brings up the compute system once. Safe to call repeatedly.
func Initialize() (AdapterInfo, error) {
	initOnce.Do(func() {
		global, initErr = newSystem()
	})
	if initErr != nil {
		return AdapterInfo{}, initErr
	}
	info := global.adapter.GetInfo()
	return AdapterInfo{
		Name:    info.Name,
		Vendor:  info.VendorName,
		Backend: info.BackendType.String(),
	}, nil
}

// Get returns the global compute system, or nil before Initialize succeeds.
func Get() *System {
	return global
}

func newSystem() (*System, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(err, "requesting GPU adapter")
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "requesting GPU device")
	}

	return &System{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}, nil
}

func (s *System) createBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating buffer %s", label)
	}
	return buf, nil
}

// readBuffer copies the first size bytes of a GPU buffer back to the CPU,
// blocking until the copy lands. The source must carry BufferUsageCopySrc.
func (s *System) readBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	staging, err := s.createBuffer("staging_read", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer staging.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating command encoder")
	}
	encoder.CopyBufferToBuffer(buf, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, errors.Wrap(err, "finishing command encoder")
	}
	s.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- errors.Errorf("mapping staging buffer: %v", status)
			return
		}
		done <- nil
	})
	if err != nil {
		return nil, err
	}

	s.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	out := make([]byte, len(mapped))
	copy(out, mapped)
	staging.Unmap()

	return out, nil
}

// Release frees the device state.
func (s *System) Release() {
	s.queue.Release()
	s.device.Release()
	s.adapter.Release()
	s.instance.Release()
}

package compute

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Sphere is a bounding volume handed to the pair cull. Laid out as a vec4
// for the shader: xyz center, w radius.
type Sphere struct {
	X, Y, Z float32
	Radius  float32
}

// Pair indexes two spheres whose bounds overlap. Indices refer to the input
// order of the slice given to Pairs.
type Pair struct {
	A, B uint32
}

const pairShader = `
struct Bounds {
    center: vec3<f32>,
    radius: f32,
}

struct Hit {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> bounds: array<Bounds>;
@group(0) @binding(1) var<storage, read_write> hits: array<Hit>;
@group(0) @binding(2) var<storage, read_write> hitCount: atomic<u32>;
@group(0) @binding(3) var<uniform> bodyCount: u32;

// One invocation per body, testing against every higher index, so each
// pair is emitted exactly once.
@compute @workgroup_size(128)
fn cullPairs(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= bodyCount) {
        return;
    }

    let a = bounds[i];
    for (var j = i + 1u; j < bodyCount; j = j + 1u) {
        let b = bounds[j];
        let d = a.center - b.center;
        let reach = a.radius + b.radius;
        if (dot(d, d) < reach * reach) {
            let slot = atomicAdd(&hitCount, 1u);
            if (slot < arrayLength(&hits)) {
                hits[slot] = Hit(i, j);
            }
        }
    }
}
`

// BroadPhase culls candidate collision pairs on the GPU using bounding
// spheres. The pipeline and buffers are built once and reused per dispatch.
type BroadPhase struct {
	system *System

	pipeline *wgpu.ComputePipeline
	layout   *wgpu.BindGroupLayout

	sphereBuf *wgpu.Buffer
	pairBuf   *wgpu.Buffer
	countBuf  *wgpu.Buffer
	paramBuf  *wgpu.Buffer

	maxBodies uint32
	maxPairs  uint32
}

// NewBroadPhase allocates the cull pipeline for up to maxBodies inputs and
// maxPairs outputs. Requires a successful compute.Initialize.
func NewBroadPhase(maxBodies, maxPairs uint32) (*BroadPhase, error) {
	sys := Get()
	if sys == nil {
		return nil, errors.New("compute system not initialized")
	}

	shader, err := sys.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "pair_cull",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: pairShader},
	})
	if err != nil {
		return nil, errors.Wrap(err, "compiling pair cull shader")
	}
	defer shader.Release()

	layout, err := sys.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "pair_cull_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating bind group layout")
	}

	pipelineLayout, err := sys.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "pair_cull_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, errors.Wrap(err, "creating pipeline layout")
	}
	defer pipelineLayout.Release()

	pipeline, err := sys.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "pair_cull_pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "cullPairs",
		},
	})
	if err != nil {
		layout.Release()
		return nil, errors.Wrap(err, "creating compute pipeline")
	}

	bp := &BroadPhase{
		system:    sys,
		pipeline:  pipeline,
		layout:    layout,
		maxBodies: maxBodies,
		maxPairs:  maxPairs,
	}
	if err := bp.createBuffers(); err != nil {
		bp.Release()
		return nil, err
	}
	return bp, nil
}

func (bp *BroadPhase) createBuffers() error {
	var err error
	bp.sphereBuf, err = bp.system.createBuffer("cull_bounds", uint64(bp.maxBodies)*16,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bp.pairBuf, err = bp.system.createBuffer("cull_hits", uint64(bp.maxPairs)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	bp.countBuf, err = bp.system.createBuffer("cull_hit_count", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bp.paramBuf, err = bp.system.createBuffer("cull_body_count", 4,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	return err
}

// Pairs uploads the bounds, runs the cull and reads the overlapping pairs
// back. Input beyond the configured maximum is truncated.
func (bp *BroadPhase) Pairs(spheres []Sphere) ([]Pair, error) {
	if len(spheres) == 0 {
		return nil, nil
	}
	if uint32(len(spheres)) > bp.maxBodies {
		spheres = spheres[:bp.maxBodies]
	}
	n := uint32(len(spheres))

	bp.system.queue.WriteBuffer(bp.sphereBuf, 0, wgpu.ToBytes(spheres))
	bp.system.queue.WriteBuffer(bp.countBuf, 0, wgpu.ToBytes([]uint32{0}))
	bp.system.queue.WriteBuffer(bp.paramBuf, 0, wgpu.ToBytes([]uint32{n}))

	if err := bp.dispatch(n); err != nil {
		return nil, err
	}

	countData, err := bp.system.readBuffer(bp.countBuf, 4)
	if err != nil {
		return nil, err
	}
	count := wgpu.FromBytes[uint32](countData)[0]
	if count == 0 {
		return nil, nil
	}
	if count > bp.maxPairs {
		count = bp.maxPairs
	}

	pairData, err := bp.system.readBuffer(bp.pairBuf, uint64(count)*8)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, count)
	copy(pairs, wgpu.FromBytes[Pair](pairData))
	return pairs, nil
}

func (bp *BroadPhase) dispatch(n uint32) error {
	bind, err := bp.system.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "pair_cull_bind",
		Layout: bp.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bp.sphereBuf, Size: uint64(bp.maxBodies) * 16},
			{Binding: 1, Buffer: bp.pairBuf, Size: uint64(bp.maxPairs) * 8},
			{Binding: 2, Buffer: bp.countBuf, Size: 4},
			{Binding: 3, Buffer: bp.paramBuf, Size: 4},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating bind group")
	}
	defer bind.Release()

	encoder, err := bp.system.device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Wrap(err, "creating command encoder")
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(bp.pipeline)
	pass.SetBindGroup(0, bind, nil)
	pass.DispatchWorkgroups((n+127)/128, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return errors.Wrap(err, "finishing command encoder")
	}
	defer commands.Release()

	bp.system.queue.Submit(commands)
	return nil
}

// Release frees the cull's GPU resources.
func (bp *BroadPhase) Release() {
	for _, buf := range []*wgpu.Buffer{bp.sphereBuf, bp.pairBuf, bp.countBuf, bp.paramBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	if bp.pipeline != nil {
		bp.pipeline.Release()
	}
	if bp.layout != nil {
		bp.layout.Release()
	}
}

package binding

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// structOffsets lists the member offsets the host marshals each shared struct with.
// A kernel that declares one of these structs must lay it out identically.
var structOffsets = map[string]map[string]uint64{
	"Image":            {"width": 0, "height": 4, "samples": 8, "bounces": 12},
	"Camera":           {"center": 0, "defocus_angle": 12, "defocus_disk_u": 16, "defocus_disk_v": 32},
	"Viewport":         {"width": 0, "height": 4, "u": 16, "v": 32, "delta_u": 48, "delta_v": 64, "upper_left": 80},
	"KernelConfig":     {"image": 0, "camera": 16, "viewport": 64, "pixel_zero": 160},
	"Sphere":           {"center": 0, "radius": 12, "material": 16},
	"Diffuse":          {"albedo": 0},
	"Metal":            {"albedo": 0, "roughness": 12},
	"Dielectric":       {"ior": 0},
	"ExecutionContext": {"tile_position": 0},
}

// Validate checks a kernel against the contract: entry point, workgroup size, every set and
// binding with its resource kind and element size, and the layout of the shared structs it declares.
//
// Parameters:
//   - s: the parsed kernel
//
// Returns:
//   - error: a *common.ConfigError wrapping common.ErrContractMismatch describing the first disagreement, or nil
func Validate(s shader.Shader) error {
	if s.EntryPoint() != EntryPoint {
		return mismatch("entry_point", "entry point is %q, want %q", s.EntryPoint(), EntryPoint)
	}
	if s.WorkgroupSize() != WorkgroupSize {
		return mismatch("workgroup_size", "workgroup size is %v, want %v", s.WorkgroupSize(), WorkgroupSize)
	}

	got := s.BindGroupLayoutDescriptors()
	for set := range got {
		if set < 0 || set >= SetCount {
			return mismatch(fmt.Sprintf("set(%d)", set), "set is not part of the pipeline layout")
		}
	}

	for set, want := range Layouts() {
		desc, ok := got[set]
		if !ok {
			return mismatch(fmt.Sprintf("set(%d)", set), "%s set is not declared", SetName(set))
		}
		if err := compareSet(set, want.Entries, desc.Entries); err != nil {
			return err
		}
	}

	for name, offsets := range structOffsets {
		layout, ok := s.StructLayout(name)
		if !ok {
			continue
		}
		for field, want := range offsets {
			f, ok := layout.Field(field)
			if !ok {
				return mismatch("struct "+name, "member %q is missing", field)
			}
			if f.Offset != want {
				return mismatch("struct "+name, "member %q is at offset %d, want %d", field, f.Offset, want)
			}
		}
	}

	return nil
}

func compareSet(set int, want, got []wgpu.BindGroupLayoutEntry) error {
	byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(got))
	for _, e := range got {
		byBinding[e.Binding] = e
	}

	for _, w := range want {
		field := fmt.Sprintf("set(%d).binding(%d)", set, w.Binding)
		g, ok := byBinding[w.Binding]
		if !ok {
			return mismatch(field, "binding is not declared")
		}
		delete(byBinding, w.Binding)

		if w.Buffer.Type != g.Buffer.Type {
			return mismatch(field, "buffer binding type is %v, want %v", g.Buffer.Type, w.Buffer.Type)
		}
		if w.Buffer.Type != wgpu.BufferBindingTypeUndefined && w.Buffer.MinBindingSize != g.Buffer.MinBindingSize {
			return mismatch(field, "element size is %d bytes, want %d", g.Buffer.MinBindingSize, w.Buffer.MinBindingSize)
		}
		ws, gs := w.StorageTexture, g.StorageTexture
		if ws.Access != gs.Access || ws.Format != gs.Format || ws.ViewDimension != gs.ViewDimension {
			return mismatch(field, "storage texture is %v %v %v, want %v %v %v",
				gs.Format, gs.Access, gs.ViewDimension, ws.Format, ws.Access, ws.ViewDimension)
		}
	}

	if len(byBinding) > 0 {
		extra := slices.Sorted(maps.Keys(byBinding))
		return mismatch(fmt.Sprintf("set(%d).binding(%d)", set, extra[0]), "binding is not part of the %s set", SetName(set))
	}
	return nil
}

func mismatch(field, format string, args ...any) error {
	return common.NewConfigError(common.ErrContractMismatch, "kernel."+field, format, args...)
}

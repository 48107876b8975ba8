package binding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInKernelSatisfiesContract(t *testing.T) {
	var s shader.Shader
	require.NotPanics(t, func() { s = NewKernelShader() })
	require.NoError(t, Validate(s))

	assert.Equal(t, KernelKey, s.Key())
	assert.Equal(t, EntryPoint, s.EntryPoint())
	assert.NotContains(t, s.Source(), "@ray:")
}

func TestGoSizesMatchWGSL(t *testing.T) {
	s := NewKernelShader()

	sizes := map[string]uint64{
		"KernelConfig":     KernelConfigSize,
		"Sphere":           SphereSize,
		"Diffuse":          DiffuseSize,
		"Metal":            MetalSize,
		"Dielectric":       DielectricSize,
		"ExecutionContext": ExecutionContextSize,
	}
	for name, want := range sizes {
		layout, ok := s.StructLayout(name)
		require.True(t, ok, name)
		assert.Equal(t, want, layout.Size, name)
	}

	assert.Equal(t, uint64(176), KernelConfigSize)
	assert.Equal(t, uint64(32), SphereSize)
	assert.Equal(t, uint64(16), DiffuseSize)
	assert.Equal(t, uint64(16), MetalSize)
	assert.Equal(t, uint64(4), DielectricSize)
	assert.Equal(t, uint64(8), ExecutionContextSize)
}

func TestLayouts(t *testing.T) {
	layouts := Layouts()
	require.Len(t, layouts, SetCount)

	assert.Len(t, layouts[SetSystem].Entries, 1)
	assert.Equal(t, OutputFormat, layouts[SetSystem].Entries[0].StorageTexture.Format)
	assert.Len(t, layouts[SetScene].Entries, 5)
	assert.Len(t, layouts[SetExecution].Entries, 1)

	for i, e := range layouts[SetScene].Entries {
		assert.Equal(t, uint32(i), e.Binding)
	}

	// callers may mutate the result
	layouts[SetScene].Entries[0].Binding = 99
	assert.Equal(t, uint32(0), Layouts()[SetScene].Entries[0].Binding)
}

func TestSetName(t *testing.T) {
	assert.Equal(t, "system", SetName(SetSystem))
	assert.Equal(t, "scene", SetName(SetScene))
	assert.Equal(t, "execution", SetName(SetExecution))
	assert.Equal(t, "unknown", SetName(7))
}

func TestValidateMismatches(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(string) string
		field string
	}{
		{
			name:  "renamed entry point",
			edit:  func(s string) string { return strings.Replace(s, "fn main(", "fn shade(", 1) },
			field: "kernel.entry_point",
		},
		{
			name:  "wider workgroup",
			edit:  func(s string) string { return strings.Replace(s, "@workgroup_size(1)", "@workgroup_size(8, 8)", 1) },
			field: "kernel.workgroup_size",
		},
		{
			name: "spheres as read_write",
			edit: func(s string) string {
				return strings.Replace(s, "//@ray:group 1 1 storage_read spheres", "//@ray:group 1 1 storage_read_write spheres", 1)
			},
			field: "kernel.set(1).binding(1)",
		},
		{
			name: "missing dielectric",
			edit: func(s string) string {
				return strings.Replace(s, "//@ray:group 1 4 storage_read dielectric array<dielectric>\n", "", 1)
			},
			field: "kernel.set(1).binding(4)",
		},
		{
			name: "extra set",
			edit: func(s string) string {
				return strings.Replace(s, "const PI", "@group(3) @binding(0) var<uniform> extra: u32;\nconst PI", 1)
			},
			field: "kernel.set(3)",
		},
		{
			name: "extra binding",
			edit: func(s string) string {
				return strings.Replace(s, "const PI", "@group(2) @binding(1) var<uniform> extra: u32;\nconst PI", 1)
			},
			field: "kernel.set(2).binding(1)",
		},
		{
			name: "wrong texel format",
			edit: func(s string) string {
				return strings.Replace(s, "texture_storage_2d<rgba8unorm, write>", "texture_storage_2d<rgba16float, write>", 1)
			},
			field: "kernel.set(0).binding(0)",
		},
		{
			name: "wrong config element size",
			edit: func(s string) string {
				return strings.Replace(s, "//@ray:group 1 0 storage_uniform config kernel_config", "//@ray:group 1 0 storage_uniform config image", 1)
			},
			field: "kernel.set(1).binding(0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKernelShaderFromSource("edited", tt.edit(KernelSource))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrContractMismatch)

			var cfgErr *common.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateStructOffsets(t *testing.T) {
	src := `struct Image {
    height: u32,
    width: u32,
    samples: u32,
    bounces: u32,
};
` + strings.Replace(KernelSource, "//@ray:include image\n", "", 1)

	_, err := NewKernelShaderFromSource("reordered", src)
	require.Error(t, err)
	var cfgErr *common.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "kernel.struct Image", cfgErr.Field)
}

func TestParseFailureIsContractMismatch(t *testing.T) {
	_, err := NewKernelShaderFromSource("broken", "//@ray:include nothing\n")
	assert.ErrorIs(t, err, common.ErrContractMismatch)
}

func TestLoadKernel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(KernelSource), 0o644))

	s, err := LoadKernel(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Key())

	_, err = LoadKernel(filepath.Join(dir, "missing.wgsl"))
	assert.Error(t, err)
}

func TestLayoutsMatchReflectedKernel(t *testing.T) {
	s := NewKernelShader()
	for set, want := range Layouts() {
		got := s.BindGroupLayoutDescriptor(set).Entries
		require.Len(t, got, len(want.Entries), SetName(set))
		for i := range want.Entries {
			assert.Equal(t, want.Entries[i].Buffer, got[i].Buffer)
			assert.Equal(t, want.Entries[i].StorageTexture, got[i].StorageTexture)
			assert.Equal(t, wgpu.ShaderStageCompute, got[i].Visibility)
		}
	}
}

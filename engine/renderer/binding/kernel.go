package binding

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
)

// KernelSource is the annotated WGSL source of the built-in path tracing kernel.
//
//go:embed assets/kernel.wgsl
var KernelSource string

// KernelKey is the shader key of the built-in kernel.
const KernelKey = "webray kernel"

// NewKernelShader parses the built-in kernel. It panics if the embedded source does not parse
// or does not satisfy the contract, both of which are programming errors.
//
// Returns:
//   - shader.Shader: the parsed built-in kernel
func NewKernelShader() shader.Shader {
	s, err := NewKernelShaderFromSource(KernelKey, KernelSource)
	if err != nil {
		panic(fmt.Sprintf("binding: built-in kernel: %v", err))
	}
	return s
}

// NewKernelShaderFromSource parses an annotated WGSL kernel and validates it against the contract.
//
// Parameters:
//   - key: the shader key
//   - source: the annotated WGSL source
//
// Returns:
//   - shader.Shader: the parsed kernel
//   - error: a *common.ConfigError if the source does not parse or does not satisfy the contract
func NewKernelShaderFromSource(key, source string) (shader.Shader, error) {
	s, err := shader.NewShaderFromSource(key, source)
	if err != nil {
		return nil, common.NewConfigError(common.ErrContractMismatch, "kernel", "%v", err)
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadKernel reads an annotated WGSL kernel from disk and validates it against the contract.
//
// Parameters:
//   - path: the kernel file path
//
// Returns:
//   - shader.Shader: the parsed kernel
//   - error: if the file cannot be read, parsed or validated
func LoadKernel(path string) (shader.Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("binding: read kernel: %w", err)
	}
	return NewKernelShaderFromSource(path, string(data))
}

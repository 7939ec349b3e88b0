// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// compileSPIRV compiles WGSL source to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// createSpriteShader creates the sprite shader module. SPIR-V from naga is
// preferred; when naga rejects the source the HAL compiles the WGSL itself.
func createSpriteShader(device hal.Device) (hal.ShaderModule, error) {
	source := hal.ShaderSource{WGSL: spriteShaderSource}
	if words, err := compileSPIRV(spriteShaderSource); err == nil {
		source = hal.ShaderSource{SPIRV: words}
	} else {
		slogger().Warn("wgpu: naga compile failed, using WGSL source", "err", err)
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sprite_shader",
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	return module, nil
}

package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestKernel_String(t *testing.T) {
	tests := []struct {
		k    Kernel
		want string
	}{
		{KernelBilateralFilter, "bilateral_filter"},
		{KernelGather, "gather"},
		{Kernel(42), "Kernel(42)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSource(t *testing.T) {
	for _, k := range Kernels {
		src := Source(k)
		if src == "" {
			t.Fatalf("%s: empty source", k)
		}
		if !strings.Contains(src, "@workgroup_size(8, 8)") {
			t.Errorf("%s: missing 8x8 workgroup size", k)
		}
		if !strings.Contains(src, "fn "+k.EntryPoint()+"(") {
			t.Errorf("%s: missing entry point", k)
		}
		// Every declared slot appears as an @binding in the source.
		for _, b := range Bindings(k) {
			tag := fmt.Sprintf("@binding(%d)", b.Slot)
			if !strings.Contains(src, tag) {
				t.Errorf("%s: %s slot %d not declared in WGSL", k, b.Name, b.Slot)
			}
		}
	}
	if Source(Kernel(-1)) != "" {
		t.Error("unknown kernel should have no source")
	}
}

func TestSPIRV(t *testing.T) {
	for _, k := range Kernels {
		t.Run(k.String(), func(t *testing.T) {
			words, err := SPIRV(k)
			if err != nil {
				t.Fatalf("SPIRV() error: %v", err)
			}
			if len(words) < 5 {
				t.Fatalf("SPIR-V too short: %d words", len(words))
			}
			if words[0] != 0x07230203 {
				t.Errorf("magic = %#x, want 0x07230203", words[0])
			}
			again, _ := SPIRV(k)
			if &again[0] != &words[0] {
				t.Error("SPIRV should cache the compiled module")
			}
		})
	}
	if _, err := SPIRV(Kernel(7)); err == nil {
		t.Error("SPIRV of unknown kernel succeeded")
	}
}

func TestBuildTable(t *testing.T) {
	tests := []struct {
		kernel Kernel
		name   string
		slot   uint32
		access Access
	}{
		{KernelBilateralFilter, NameParams, 0, AccessUniform},
		{KernelBilateralFilter, NameGBuffer, 1, AccessRead},
		{KernelBilateralFilter, NameNoiseTexture, 2, AccessRead},
		{KernelBilateralFilter, NameInput, 3, AccessRead},
		{KernelBilateralFilter, NameOutput, 4, AccessReadWrite},
		{KernelGather, NameParams, 0, AccessUniform},
		{KernelGather, NameInput, 1, AccessRead},
		{KernelGather, NameOutput, 2, AccessReadWrite},
	}
	for _, tt := range tests {
		table := BuildTable(tt.kernel)
		b, err := table.Lookup(tt.name)
		if err != nil {
			t.Errorf("%s: Lookup(%q) error: %v", tt.kernel, tt.name, err)
			continue
		}
		if b.Slot != tt.slot || b.Access != tt.access {
			t.Errorf("%s: %q = slot %d %v, want slot %d %v", tt.kernel, tt.name, b.Slot, b.Access, tt.slot, tt.access)
		}
	}
}

func TestTable_UnknownName(t *testing.T) {
	table := BuildTable(KernelGather)
	for _, name := range []string{NameGBuffer, NameNoiseTexture, "_Missing", ""} {
		if _, err := table.Lookup(name); !errors.Is(err, ErrUnknownBinding) {
			t.Errorf("Lookup(%q) error = %v, want ErrUnknownBinding", name, err)
		}
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	res := table.Resources()
	if len(res) != 2 || res[0].Name != NameInput || res[1].Name != NameOutput {
		t.Errorf("Resources() = %+v", res)
	}
}

func TestLayoutEntries(t *testing.T) {
	entries := LayoutEntries(KernelBilateralFilter)
	want := []gputypes.BufferBindingType{
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeStorage,
	}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Binding != uint32(i) {
			t.Errorf("entry %d binding = %d", i, e.Binding)
		}
		if e.Visibility != gputypes.ShaderStageCompute {
			t.Errorf("entry %d visibility = %v", i, e.Visibility)
		}
		if e.Buffer == nil || e.Buffer.Type != want[i] {
			t.Errorf("entry %d buffer = %+v, want type %v", i, e.Buffer, want[i])
		}
	}
}

func TestParams_Encode(t *testing.T) {
	p := Params{
		OutputSize:      [2]uint32{960, 540},
		GBufferSize:     [2]uint32{1920, 1080},
		InputSize:       [2]uint32{1920, 1080},
		NoiseSize:       [2]uint32{64, 64},
		Radius:          0.2,
		NormalThreshold: 0.9,
		DepthThreshold:  0.1,
		MaxPixelRadius:  16,
		ProjectionScale: 935.3,
		FrameJitter:     0.5,
		TapCount:        16,
	}
	buf := p.Encode()
	if len(buf) != ParamsSize {
		t.Fatalf("len = %d, want %d", len(buf), ParamsSize)
	}
	le := binary.LittleEndian

	off, ok := FieldOffset(FieldOutputTargetSize)
	if !ok || le.Uint32(buf[off:]) != 960 || le.Uint32(buf[off+4:]) != 540 {
		t.Errorf("%s not encoded at %d", FieldOutputTargetSize, off)
	}
	off, ok = FieldOffset(FieldFilterRadius)
	if !ok || math.Float32frombits(le.Uint32(buf[off:])) != 0.2 {
		t.Errorf("%s not encoded at %d", FieldFilterRadius, off)
	}
	if got := le.Uint32(buf[56:]); got != 16 {
		t.Errorf("tap_count = %d", got)
	}
	if got := le.Uint32(buf[60:]); got != 0 {
		t.Errorf("padding = %d, want 0", got)
	}
	if _, ok := FieldOffset("_Nope"); ok {
		t.Error("FieldOffset of unknown name succeeded")
	}
}

func BenchmarkSPIRVCompile(b *testing.B) {
	src := Source(KernelBilateralFilter)
	for i := 0; i < b.N; i++ {
		if _, err := compileSPIRV(src); err != nil {
			b.Fatal(err)
		}
	}
}

package chunk

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/go-gl/mathgl/mgl32"
)

func TestWindowSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantColumns   int
		wantRows      int
	}{
		{"one pixel", 1, 1, 4, 4},
		{"exact chunk", 256, 256, 4, 4},
		{"720p", 1280, 720, 8, 6},
		{"1080p", 1920, 1080, 11, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, rows := WindowSize(tt.width, tt.height)
			if columns != tt.wantColumns || rows != tt.wantRows {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantColumns, tt.wantRows, columns, rows)
			}
			if got := BufferSize(tt.width, tt.height); got != uint64(columns*rows*GPUChunkSize) {
				t.Errorf("Expected buffer size %d, got %d", columns*rows*GPUChunkSize, got)
			}
		})
	}
}

func TestWindowSizeIsMonotonic(t *testing.T) {
	for width := 1; width <= 8192; width += 37 {
		columns, _ := WindowSize(width, 600)
		doubled, _ := WindowSize(width*2, 600)
		if doubled < columns {
			t.Fatalf("Expected doubling width %d to not decrease columns, got %d then %d", width, columns, doubled)
		}
		next, _ := WindowSize(width+1, 600)
		if next < columns {
			t.Fatalf("Expected width %d to not decrease columns, got %d then %d", width+1, columns, next)
		}
	}
	for height := 1; height <= 8192; height += 41 {
		_, rows := WindowSize(800, height)
		_, doubled := WindowSize(800, height*2)
		if doubled < rows {
			t.Fatalf("Expected doubling height %d to not decrease rows, got %d then %d", height, rows, doubled)
		}
	}
}

func TestWindowAt(t *testing.T) {
	tests := []struct {
		name   string
		camera mgl32.Vec2
		origin [2]int32
	}{
		{"origin", mgl32.Vec2{0, 0}, [2]int32{-1, -1}},
		{"inside first chunk", mgl32.Vec2{255.9, 10}, [2]int32{-1, -1}},
		{"second chunk", mgl32.Vec2{256, 512}, [2]int32{0, 1}},
		{"negative", mgl32.Vec2{-0.5, -257}, [2]int32{-2, -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WindowAt(tt.camera, 800, 600)
			if w.Origin != tt.origin {
				t.Errorf("Expected origin %v, got %v", tt.origin, w.Origin)
			}
			if w.Capacity() != Capacity(800, 600) {
				t.Errorf("Expected capacity %d, got %d", Capacity(800, 600), w.Capacity())
			}
		})
	}
}

func TestWindowSlot(t *testing.T) {
	w := Window{Origin: [2]int32{-1, -1}, Columns: 4, Rows: 3}
	tests := []struct {
		pos  [2]int32
		slot int
		ok   bool
	}{
		{[2]int32{-1, -1}, 0, true},
		{[2]int32{2, -1}, 3, true},
		{[2]int32{0, 0}, 5, true},
		{[2]int32{2, 1}, 11, true},
		{[2]int32{3, 0}, -1, false},
		{[2]int32{0, 2}, -1, false},
		{[2]int32{-2, 0}, -1, false},
	}
	for _, tt := range tests {
		slot, ok := w.Slot(tt.pos)
		if slot != tt.slot || ok != tt.ok {
			t.Errorf("Slot(%v): Expected (%d, %v), got (%d, %v)", tt.pos, tt.slot, tt.ok, slot, ok)
		}
	}
}

func TestChunkMarshalLayout(t *testing.T) {
	c := New(0, 0, tile.Void)
	c.Set(0, 0, tile.Wall)
	c.Set(3, 0, tile.Planks)
	c.Set(15, 15, tile.Wall)
	c.Set(16, 0, tile.Wall)

	buf := c.Marshal()
	if len(buf) != GPUChunkSize {
		t.Fatalf("Expected %d bytes, got %d", GPUChunkSize, len(buf))
	}
	if buf[0] != byte(tile.Wall) || buf[3] != byte(tile.Planks) || buf[255] != byte(tile.Wall) {
		t.Errorf("Expected row-major tile bytes, got % x ... %x", buf[:4], buf[255])
	}
	for i := 4; i < 255; i++ {
		if buf[i] != 0 {
			t.Fatalf("Expected Void at byte %d, got %d", i, buf[i])
		}
	}
}

func TestMarshalWindow(t *testing.T) {
	chunks := []Chunk{New(0, 0, tile.Wall), New(1, 0, tile.Planks)}
	buf, err := MarshalWindow(chunks, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(buf) != 4*GPUChunkSize {
		t.Fatalf("Expected %d bytes, got %d", 4*GPUChunkSize, len(buf))
	}
	if buf[0] != byte(tile.Wall) || buf[GPUChunkSize] != byte(tile.Planks) || buf[2*GPUChunkSize] != 0 {
		t.Errorf("Expected wall, planks, then Void slots")
	}

	if _, err := MarshalWindow(chunks, 1); err == nil {
		t.Errorf("Expected an error when chunks exceed capacity")
	}
}

func TestChunkLocalsLayout(t *testing.T) {
	l := Window{Origin: [2]int32{-1, 2}, Columns: 8, Rows: 6}.Locals()
	buf := l.Marshal()
	if len(buf) != common.DynamicOffsetAlignment {
		t.Fatalf("Expected %d bytes, got %d", common.DynamicOffsetAlignment, len(buf))
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 2, 0, 0, 0, 8, 0, 0, 0, 6, 0, 0, 0}
	if !bytes.Equal(buf[:GPUChunkLocalsSize], want) {
		t.Errorf("Expected % x, got % x", want, buf[:GPUChunkLocalsSize])
	}
	for _, b := range buf[GPUChunkLocalsSize:] {
		if b != 0 {
			t.Fatalf("Expected zero padding after the record")
		}
	}
}

func TestWorldLights(t *testing.T) {
	c := New(2, -1, tile.Void)
	c.Lights = []light.Light{light.NewLight(light.WithPosition(mgl32.Vec2{1, 2}))}

	got := c.WorldLights()
	if len(got) != 1 {
		t.Fatalf("Expected 1 light, got %d", len(got))
	}
	want := mgl32.Vec2{33, -14}
	if got[0].Position != want {
		t.Errorf("Expected %v, got %v", want, got[0].Position)
	}
	if c.Lights[0].Position != (mgl32.Vec2{1, 2}) {
		t.Errorf("Expected the chunk's own light to be unchanged, got %v", c.Lights[0].Position)
	}
}

func TestAtOutOfRange(t *testing.T) {
	c := New(0, 0, tile.Wall)
	if c.At(-1, 0) != tile.Void || c.At(0, Size) != tile.Void {
		t.Errorf("Expected out-of-range cells to read as Void")
	}
	if c.At(5, 5) != tile.Wall {
		t.Errorf("Expected filled cell to read as wall")
	}
}

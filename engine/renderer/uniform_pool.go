package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// uniformPool hands out uniform buffers for per-draw constants. Queue writes land before the
// frame's command buffer executes, so a buffer is used by at most one draw per frame; Reset
// makes every buffer available again once the frame is submitted.
type uniformPool struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	free map[uint64][]*wgpu.Buffer
	used map[uint64]int
}

func newUniformPool(device *wgpu.Device, queue *wgpu.Queue) *uniformPool {
	return &uniformPool{
		device: device,
		queue:  queue,
		free:   make(map[uint64][]*wgpu.Buffer),
		used:   make(map[uint64]int),
	}
}

// Write uploads data, padded or cut to the declared size, into a buffer no other draw of this
// frame uses and returns it.
func (p *uniformPool) Write(label string, data []byte, declared uint32) (*wgpu.Buffer, error) {
	size := alignBufferSize(int(declared))
	i := p.used[size]
	if i == len(p.free[size]) {
		buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Uniform Buffer %d", label, i),
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		p.free[size] = append(p.free[size], buf)
	}
	buf := p.free[size][i]
	p.used[size] = i + 1
	p.queue.WriteBuffer(buf, 0, padConstants(data, uint32(size)))
	return buf, nil
}

// Reset marks every buffer unused.
func (p *uniformPool) Reset() {
	clear(p.used)
}

// Release destroys every pooled buffer.
func (p *uniformPool) Release() {
	for size, bufs := range p.free {
		for _, b := range bufs {
			b.Release()
		}
		delete(p.free, size)
	}
	clear(p.used)
}

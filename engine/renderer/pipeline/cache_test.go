package pipeline

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPipeline struct {
	Pipeline
	released int
}

func (p *countingPipeline) Release() { p.released++ }

func sceneKey(vs, ps uint64) Key {
	return Key{
		VertexProgram: vs,
		PixelProgram:  ps,
		VertexInput:   true,
		Topology:      wgpu.PrimitiveTopologyTriangleList,
		CullMode:      wgpu.CullModeBack,
		ColorFormat:   wgpu.TextureFormatRGBA8Unorm,
		DepthFormat:   wgpu.TextureFormatDepth24Plus,
		DepthWrite:    true,
		DepthCompare:  wgpu.CompareFunctionLess,
	}
}

func TestCache_BuildsOncePerKey(t *testing.T) {
	c := NewCache()
	builds := 0
	build := func(key Key) (Pipeline, error) {
		builds++
		return NewPipeline(key), nil
	}

	first, err := c.Get(sceneKey(1, 2), build)
	require.NoError(t, err)
	second, err := c.Get(sceneKey(1, 2), build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	sky := sceneKey(1, 2)
	sky.CullMode = wgpu.CullModeFront
	sky.DepthCompare = wgpu.CompareFunctionLessEqual
	_, err = c.Get(sky, build)
	require.NoError(t, err)

	assert.Equal(t, 2, builds)
	assert.Equal(t, 2, c.Len())
}

func TestCache_FailedBuildIsRetried(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")
	_, err := c.Get(sceneKey(1, 2), func(Key) (Pipeline, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	p, err := c.Get(sceneKey(1, 2), func(key Key) (Pipeline, error) { return NewPipeline(key), nil })
	require.NoError(t, err)
	assert.Equal(t, sceneKey(1, 2), p.Key())
}

func TestCache_EvictReleasesPipelinesOfProgram(t *testing.T) {
	c := NewCache()
	made := map[Key]*countingPipeline{}
	build := func(key Key) (Pipeline, error) {
		p := &countingPipeline{Pipeline: NewPipeline(key)}
		made[key] = p
		return p, nil
	}
	for _, k := range []Key{sceneKey(1, 2), sceneKey(3, 4), sceneKey(1, 5)} {
		_, err := c.Get(k, build)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Evict(1))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, made[sceneKey(1, 2)].released)
	assert.Equal(t, 1, made[sceneKey(1, 5)].released)
	assert.Equal(t, 0, made[sceneKey(3, 4)].released)

	c.Release()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, made[sceneKey(3, 4)].released)
}

func TestPipeline_ReleaseWithoutObjects(t *testing.T) {
	p := NewPipeline(sceneKey(1, 2))
	assert.Nil(t, p.RenderPipeline())
	assert.NotPanics(t, p.Release)
	assert.True(t, sceneKey(7, 2).Uses(7))
	assert.False(t, sceneKey(7, 2).Uses(3))
}

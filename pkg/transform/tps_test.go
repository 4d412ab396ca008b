package transform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tpsLandmarks() (src, dst []Vec3) {
	src = []Vec3{
		V3(0, 0, 0), V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1),
		V3(1, 1, 0), V3(1, 0, 1), V3(0, 1, 1), V3(1, 1, 1),
	}
	dst = []Vec3{
		V3(0.1, 0, 0), V3(1.2, 0.1, 0), V3(0, 0.9, 0.1), V3(0, 0, 1.1),
		V3(1, 1.1, -0.1), V3(1.1, 0, 1), V3(0.1, 1, 1), V3(0.9, 1, 1.2),
	}
	return
}

func TestThinPlateSplineInterpolatesLandmarks(t *testing.T) {
	src, dst := tpsLandmarks()
	for _, mode := range []string{"2d", "3d"} {
		t.Run(mode, func(t *testing.T) {
			tps, err := NewThinPlateSpline(src, dst, 1, mode)
			require.NoError(t, err)
			for i, s := range src {
				assertVecNear(t, dst[i], tps.ApplyPoint(s), 1e-7)
			}
		})
	}
}

func TestThinPlateSplineIdentityLandmarks(t *testing.T) {
	src, _ := tpsLandmarks()
	tps, err := NewThinPlateSpline(src, src, 1, "3d")
	require.NoError(t, err)

	// Identical landmark sets leave arbitrary points unmoved.
	p := V3(0.33, 0.71, 0.25)
	assertVecNear(t, p, tps.ApplyPoint(p), 1e-7)
}

func TestThinPlateSplineInverse(t *testing.T) {
	src, dst := tpsLandmarks()
	tps, err := NewThinPlateSpline(src, dst, 1, "3d")
	require.NoError(t, err)

	inv, err := tps.Inverse()
	require.NoError(t, err)
	for i, d := range dst {
		assertVecNear(t, src[i], inv.ApplyPoint(d), 1e-7)
	}
}

func TestThinPlateSplineValidation(t *testing.T) {
	src, dst := tpsLandmarks()

	_, err := NewThinPlateSpline(nil, nil, 1, "3d")
	assert.Error(t, err)

	_, err = NewThinPlateSpline(src[:3], dst, 1, "3d")
	assert.Error(t, err)

	_, err = NewThinPlateSpline(src, dst, 1, "4d")
	assert.Error(t, err)

	// Duplicate landmarks make the system singular.
	dupSrc := append(append([]Vec3(nil), src...), src[0])
	dupDst := append(append([]Vec3(nil), dst...), dst[0])
	_, err = NewThinPlateSpline(dupSrc, dupDst, 1, "3d")
	assert.Error(t, err)
}

func TestThinPlateSplineWriteRead(t *testing.T) {
	src, dst := tpsLandmarks()
	tps, err := NewThinPlateSpline(src, dst, 0.8, "2d")
	require.NoError(t, err)
	tps.Comment = "warp"

	path := filepath.Join(t.TempDir(), "tps.json")
	require.NoError(t, tps.Write(path))

	got, err := ReadThinPlateSpline(path)
	require.NoError(t, err)
	assert.Equal(t, "2d", got.Mode)
	assert.InDelta(t, 0.8, got.Sigma, 1e-12)
	assert.Equal(t, "warp", got.Comment)

	p := V3(0.5, 0.5, 0.5)
	assertVecNear(t, tps.ApplyPoint(p), got.ApplyPoint(p), 1e-9)
}

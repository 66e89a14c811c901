package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/errors"
)

// twoSegments returns two collinear chains, 0-1-2 and 3-4-5, with a gap
// between vertices 2 and 3.
func twoSegments() ([]r3.Vec, [][2]int) {
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}
	return vs, [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}}
}

func TestCloseEdges(t *testing.T) {
	vs, _ := twoSegments()
	labels := []int{0, 0, 0, 1, 1, 1}

	got := CloseEdges(vs, labels, 0, 1)
	assert.Equal(t, [][2]int{{0, 3}, {1, 3}, {2, 3}}, got)

	got = CloseEdges(vs, labels, 1, 0)
	assert.Equal(t, [][2]int{{3, 2}, {4, 2}, {5, 2}}, got)

	assert.Nil(t, CloseEdges(vs, labels, 0, 7))
}

func TestCloseEdgesSym(t *testing.T) {
	vs, _ := twoSegments()
	labels := []int{0, 0, 0, 1, 1, 1}

	assert.Equal(t, [][2]int{{2, 3}}, CloseEdgesSym(vs, labels, 0, 1))
	assert.Equal(t, [][2]int{{3, 2}}, CloseEdgesSym(vs, labels, 1, 0))
}

func TestBridge(t *testing.T) {
	vs, edges := twoSegments()

	got, err := Bridge(vs, edges, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2, 3}}, got)
}

func TestBridgeAlreadyConnected(t *testing.T) {
	vs, edges := twoSegments()
	got, err := Bridge(vs, edges, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBridgeIgnoresOtherFragments(t *testing.T) {
	// 0-1 and 4-5 are linked directly. The isolated vertex at 2.5 is in the
	// neighbourhood but not between the two fragments; vertex 3 is far away.
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2.5}, {X: 100}, {X: 4}, {X: 5}}
	edges := [][2]int{{0, 1}, {4, 5}}

	got, err := Bridge(vs, edges, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 4}}, got)
}

func TestBridgeErrors(t *testing.T) {
	vs, edges := twoSegments()

	_, err := Bridge(vs, edges, 0, 9)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "err = %v", err)

	_, err = Bridge(vs, [][2]int{{0, 99}}, 0, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "err = %v", err)
}

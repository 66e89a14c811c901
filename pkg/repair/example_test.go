package repair_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/repair"
)

func ExampleCloseEdgesSym() {
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}
	labels := []int{0, 0, 0, 1, 1, 1}

	fmt.Println(repair.CloseEdges(vs, labels, 0, 1))
	fmt.Println(repair.CloseEdgesSym(vs, labels, 0, 1))
	// Output:
	// [[0 3] [1 3] [2 3]]
	// [[2 3]]
}

func ExampleBridge() {
	// Two chains, 0-1-2 and 3-4-5, with a gap between 2 and 3.
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}
	edges := [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}}

	bridge, err := repair.Bridge(vs, edges, 1, 4)
	if err != nil {
		panic(err)
	}
	fmt.Println("new edges:", bridge)

	bridge, _ = repair.Bridge(vs, edges, 0, 2)
	fmt.Println("already linked:", len(bridge))
	// Output:
	// new edges: [[2 3]]
	// already linked: 0
}

// Callers tell an unlinkable pair (NO_BRIDGE) apart from bad arguments by
// error code.
func ExampleBridge_errors() {
	vs := []r3.Vec{{X: 0}, {X: 1}}

	_, err := repair.Bridge(vs, nil, 0, 5)
	switch {
	case errors.Is(err, errors.ErrCodeNoBridge):
		fmt.Println("fragments cannot be linked")
	case err != nil:
		fmt.Println(errors.GetCode(err))
	}
	// Output: INVALID_INPUT
}

package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, ids []string, edges ...[2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.Equal(t, 0, nodeA.index)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	assert.Equal(t, 1, g.nodes["b"].index)
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.True(t, g.HasNode("b"))
	assert.False(t, g.HasNode("c"))
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Contains(t, nodeA.dependents, "b")
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Contains(t, nodeB.deps, "a")
		assert.Equal(t, nodeA, nodeB.deps["a"])
		assert.True(t, g.HasEdge("a", "b"))
		assert.False(t, g.HasEdge("b", "a"))
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestDependenciesAndDependents(t *testing.T) {
	// --- Arrange ---
	g := build(t, []string{"z", "a", "m", "sink"},
		[2]string{"m", "sink"},
		[2]string{"z", "sink"},
		[2]string{"a", "sink"},
	)

	// --- Act ---
	deps, err := g.Dependencies("sink")
	require.NoError(t, err)
	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	_, missingErr := g.Dependencies("nope")

	// --- Assert ---
	assert.Equal(t, []string{"z", "a", "m"}, deps, "ordered by insertion, not by name")
	assert.Equal(t, []string{"sink"}, dependents)
	assert.ErrorContains(t, missingErr, "node not found")
}

func TestAncestorsAndDescendants(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e"},
		[2]string{"a", "b"},
		[2]string{"b", "c"},
		[2]string{"d", "c"},
		[2]string{"c", "e"},
	)

	up, err := g.Ancestors("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, up)

	down, err := g.Descendants("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "e"}, down)

	_, err = g.Descendants("x")
	assert.Error(t, err)
}

func TestTopologicalSort(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		order, err := New().TopologicalSort()
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("independent nodes keep insertion order", func(t *testing.T) {
		g := build(t, []string{"c", "a", "b"})
		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, order)
	})

	t.Run("dependencies come first", func(t *testing.T) {
		// d is declared before its producer b.
		g := build(t, []string{"d", "a", "b", "c"},
			[2]string{"a", "b"},
			[2]string{"b", "d"},
			[2]string{"a", "c"},
		)
		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "d", "c"}, order)
	})

	t.Run("ready ties go to the earliest declared node", func(t *testing.T) {
		g := build(t, []string{"root", "late", "early_dep", "x"},
			[2]string{"root", "late"},
			[2]string{"root", "early_dep"},
			[2]string{"root", "x"},
		)
		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "late", "early_dep", "x"}, order)
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c", "d", "e", "f"},
			[2]string{"a", "d"},
			[2]string{"b", "d"},
			[2]string{"c", "e"},
			[2]string{"d", "f"},
			[2]string{"e", "f"},
		)
		first, err := g.TopologicalSort()
		require.NoError(t, err)
		for range 20 {
			again, err := g.TopologicalSort()
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("cycle is reported", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"},
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"c", "b"},
		)
		order, err := g.TopologicalSort()
		assert.Nil(t, order)
		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"b", "c"}, cycleErr.Nodes)
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"})
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c", "d"},
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"a", "c"}, // Transitive edge
			[2]string{"c", "d"},
		)
		assert.NoError(t, g.DetectCycles())
		assert.Empty(t, g.Cycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := build(t, []string{"a", "b"},
			[2]string{"a", "b"},
			[2]string{"b", "a"}, // Cycle
		)
		err := g.DetectCycles()
		assert.ErrorContains(t, err, "cycle detected")
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "b"}, cycleErr.Nodes)
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c", "d"},
			[2]string{"a", "b"},
			[2]string{"b", "c"},
			[2]string{"c", "d"},
			[2]string{"d", "a"}, // Cycle back to the start
		)
		err := g.DetectCycles()
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "b", "c", "d"}, cycleErr.Nodes)
	})

	t.Run("only participants are listed", func(t *testing.T) {
		// Component 1 (valid)
		// Component 2 (has a cycle between y and z, x only feeds it)
		g := build(t, []string{"a", "b", "x", "y", "z"},
			[2]string{"a", "b"},
			[2]string{"x", "y"},
			[2]string{"y", "z"},
			[2]string{"z", "y"}, // Cycle
		)
		err := g.DetectCycles()
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"y", "z"}, cycleErr.Nodes)
		assert.Equal(t, "cycle detected involving nodes: y, z", err.Error())
	})

	t.Run("separate cycles are grouped", func(t *testing.T) {
		g := build(t, []string{"p", "q", "r", "s"},
			[2]string{"r", "s"},
			[2]string{"s", "r"},
			[2]string{"p", "q"},
			[2]string{"q", "p"},
		)
		assert.Equal(t, [][]string{{"p", "q"}, {"r", "s"}}, g.Cycles())
		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.Equal(t, []string{"p", "q", "r", "s"}, cycleErr.Nodes)
	})
}

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo builds two sensors, one hidden node and two outputs (ids 1..5).
func twoByTwo(t *testing.T) *Network {
	t.Helper()
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{
		NewNode(Sensor, 1),
		NewNode(Sensor, 2),
		NewNode(Hidden, 3),
		NewNode(Output, 4),
		NewNode(Output, 5),
	}))
	return net
}

func TestAddNodesSplitsInputsAndOutputs(t *testing.T) {
	net := twoByTwo(t)
	assert.Len(t, net.Nodes(), 5)
	assert.Equal(t, 2, net.NumInputs())
	assert.Equal(t, 2, net.NumOutputs())
}

func TestAddNodesRejectsNilAndDuplicates(t *testing.T) {
	net := NewNetwork(Sigmoid())
	assert.ErrorIs(t, net.AddNodes(nil), ErrNilNodes)

	require.NoError(t, net.AddNode(NewNode(Sensor, 1)))
	assert.ErrorIs(t, net.AddNode(NewNode(Hidden, 1)), ErrDuplicateNode)
}

func TestAddLinkUnknownNode(t *testing.T) {
	net := twoByTwo(t)
	assert.ErrorIs(t, net.AddLink(NewLink(1, 9, 1, false)), ErrUnknownNode)
	assert.ErrorIs(t, net.AddLink(NewLink(9, 1, 1, false)), ErrUnknownNode)
}

func TestNodeLookup(t *testing.T) {
	net := twoByTwo(t)
	assert.Nil(t, net.Node(0))
	assert.Nil(t, net.Node(6))
	for id := 1; id <= 5; id++ {
		require.NotNil(t, net.Node(id))
		assert.Equal(t, id, net.Node(id).ID)
	}
}

func TestActivate(t *testing.T) {
	tests := []struct {
		name  string
		links []Link
		want  bool
	}{
		{
			name: "one output not connected",
			links: []Link{
				NewLink(1, 3, 1, false),
				NewLink(2, 3, 1, false),
				NewLink(3, 4, 1, false),
			},
			want: false,
		},
		{
			name: "all outputs connected",
			links: []Link{
				NewLink(1, 3, 1, false),
				NewLink(2, 3, 1, false),
				NewLink(3, 4, 1, false),
				NewLink(3, 5, 1, false),
			},
			want: true,
		},
		{
			name: "one input not connected",
			links: []Link{
				NewLink(2, 3, 1, false),
				NewLink(3, 4, 1, false),
				NewLink(3, 5, 1, false),
			},
			want: true,
		},
		{
			name: "hidden not connected",
			links: []Link{
				NewLink(1, 4, 1, false),
				NewLink(2, 5, 1, false),
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := twoByTwo(t)
			for _, l := range tt.links {
				require.NoError(t, net.AddLink(l))
			}
			assert.Equal(t, tt.want, net.Activate())
		})
	}
}

func TestActivateThroughRecurrentLoop(t *testing.T) {
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{NewNode(Sensor, 1), NewNode(Hidden, 2), NewNode(Output, 3)}))
	require.NoError(t, net.AddLink(NewLink(1, 2, 1, false)))
	require.NoError(t, net.AddLink(NewLink(2, 2, 0.5, true)))
	require.NoError(t, net.AddLink(NewLink(2, 3, 1, false)))
	require.NoError(t, net.SetInput([]float64{1}))
	assert.True(t, net.Activate())
}

func TestComputeNodesActivationSum(t *testing.T) {
	tests := []struct {
		want                      float64
		weight1, weight2, weight3 float64
	}{
		{3.0, 1.0, 1.0, 1.0},
		{3.0, 1.0, 1.0, 0.0},
		{2.5, 0.5, 1.0, 1.0},
		{2.0, 1.0, 0.5, 1.0},
	}
	for _, tt := range tests {
		net := NewNetwork(Sigmoid())
		require.NoError(t, net.AddNodes([]Node{
			NewNode(Sensor, 1),
			NewNode(Sensor, 2),
			NewNode(Output, 3),
			NewNode(Hidden, 4),
			NewNode(Output, 5),
		}))
		net.Node(1).Activation, net.Node(1).ActivationCount = 1, 1
		net.Node(2).Activation, net.Node(2).ActivationCount = 2, 1
		net.Node(3).Activation, net.Node(3).ActivationCount = 4, 1
		require.NoError(t, net.AddLink(NewLink(1, 4, tt.weight1, false)))
		require.NoError(t, net.AddLink(NewLink(2, 4, tt.weight2, false)))
		require.NoError(t, net.AddLink(NewLink(4, 5, tt.weight3, false)))

		net.ComputeNodesActivationSum()
		assert.InDelta(t, tt.want, net.Node(4).ActivationSum, 1e-9)
		assert.True(t, net.Node(4).Active)
	}
}

func TestComputeNodesActivationFunctionValueDefault(t *testing.T) {
	tests := []struct{ sum, want float64 }{
		{-10, 0},
		{0, 0.5},
		{0.5, 0.9214},
		{3, 1},
	}
	for _, tt := range tests {
		net := NewNetwork(Sigmoid())
		require.NoError(t, net.AddNode(NewNode(Hidden, 1)))
		n := net.Node(1)
		n.ActivationSum, n.Active = tt.sum, true
		net.ComputeNodesActivationFunctionValue()
		assert.InDelta(t, tt.want, net.Node(1).Activation, 1e-4)
		assert.Equal(t, 1, net.Node(1).ActivationCount)
		assert.Equal(t, 1.0, net.Node(1).LastActivation)
	}
}

func TestSetInputMismatch(t *testing.T) {
	net := twoByTwo(t)
	assert.ErrorIs(t, net.SetInput([]float64{1}), ErrInputMismatch)
	require.NoError(t, net.SetInput([]float64{0.25, 0.75}))
	assert.Equal(t, 0.25, net.Input(0).Activation)
	assert.Equal(t, 1, net.Input(1).ActivationCount)
}

func TestResetGivesIdenticalOutput(t *testing.T) {
	net := twoByTwo(t)
	require.NoError(t, net.AddLink(NewLink(1, 3, 0.7, false)))
	require.NoError(t, net.AddLink(NewLink(2, 3, -1.3, false)))
	require.NoError(t, net.AddLink(NewLink(3, 4, 2.1, false)))
	require.NoError(t, net.AddLink(NewLink(1, 5, 0.4, false)))
	require.NoError(t, net.AddLink(NewLink(3, 5, -0.2, false)))

	run := func() []float64 {
		require.NoError(t, net.SetInput([]float64{0.3, 0.9}))
		require.True(t, net.Activate())
		for i := 0; i <= net.MaxDepth(); i++ {
			net.Activate()
		}
		out := net.OutputValues()
		net.Reset()
		return out
	}
	first := run()
	second := run()
	assert.Equal(t, first, second)

	for _, n := range net.Nodes() {
		assert.Zero(t, n.ActivationCount, "node %d", n.ID)
	}
}

func TestResetClearsActiveFlags(t *testing.T) {
	// The output is listed before the hidden node feeding it.
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{
		NewNode(Sensor, 1),
		NewNode(Output, 2),
		NewNode(Hidden, 3),
	}))
	require.NoError(t, net.AddLink(NewLink(1, 3, 1.5, false)))
	require.NoError(t, net.AddLink(NewLink(3, 2, 2.0, false)))

	run := func() []float64 {
		require.NoError(t, net.SetInput([]float64{1}))
		require.True(t, net.Activate())
		out := net.OutputValues()
		net.Reset()
		return out
	}
	fresh := run()
	afterReset := run()
	require.Equal(t, fresh, afterReset)
	assert.Greater(t, fresh[0], 0.99)

	for _, n := range net.Nodes() {
		assert.False(t, n.Active, "node %d", n.ID)
		assert.Zero(t, n.ActivationSum, "node %d", n.ID)
	}
}

func TestMaxDepth(t *testing.T) {
	net := twoByTwo(t)
	assert.Equal(t, 0, net.MaxDepth())

	require.NoError(t, net.AddLink(NewLink(1, 3, 1, false)))
	require.NoError(t, net.AddLink(NewLink(3, 4, 1, false)))
	require.NoError(t, net.AddLink(NewLink(2, 5, 1, false)))
	assert.Equal(t, 2, net.MaxDepth())
}

func TestMaxDepthIsCappedOnCycles(t *testing.T) {
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{NewNode(Sensor, 1), NewNode(Hidden, 2), NewNode(Output, 3)}))
	require.NoError(t, net.AddLink(NewLink(1, 2, 1, false)))
	require.NoError(t, net.AddLink(NewLink(3, 2, 1, true)))
	require.NoError(t, net.AddLink(NewLink(2, 3, 1, false)))
	assert.Equal(t, MaxDepthCap, net.MaxDepth())
}

func TestIsRecurrentConnection(t *testing.T) {
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{
		NewNode(Sensor, 1),
		NewNode(Hidden, 2),
		NewNode(Hidden, 3),
		NewNode(Output, 4),
	}))
	require.NoError(t, net.AddLink(NewLink(1, 2, 1, false)))
	require.NoError(t, net.AddLink(NewLink(2, 3, 1, false)))
	require.NoError(t, net.AddLink(NewLink(3, 4, 1, false)))
	thresh := len(net.Nodes()) * len(net.Nodes())

	assert.True(t, net.IsRecurrentConnection(4, 2, 0, thresh), "4->2 closes 2->3->4")
	assert.True(t, net.IsRecurrentConnection(3, 3, 0, thresh), "self loop")
	assert.False(t, net.IsRecurrentConnection(1, 4, 0, thresh), "forward link")
	assert.False(t, net.IsRecurrentConnection(2, 4, 0, thresh), "shortcut")
	assert.False(t, net.IsRecurrentConnection(4, 2, 0, 2), "budget exhausted")
	assert.False(t, net.IsRecurrentConnection(42, 2, 0, thresh), "unknown node")
}

func TestIsRecurrentConnectionIgnoresRecurrentLinks(t *testing.T) {
	net := NewNetwork(Sigmoid())
	require.NoError(t, net.AddNodes([]Node{NewNode(Hidden, 1), NewNode(Hidden, 2)}))
	require.NoError(t, net.AddLink(NewLink(2, 1, 1, true)))
	assert.False(t, net.IsRecurrentConnection(1, 2, 0, 4))
}

package generator

import (
	"math/rand/v2"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/world"
)

// shuffleDocks returns the dock overlay for mode. Two-way docks are paired
// so that docks[docks[x]] == x; one-way docks each lead to some other dock.
// Teleporters always keep their default target.
func shuffleDocks(rng *rand.Rand, w *world.World, mode bootstrap.DockMode) world.DockConnections {
	docks := make(world.DockConnections)
	nodes := w.NodesOfKind(world.NodeDock)
	switch mode {
	case bootstrap.DockTwoWay:
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
		for i := 0; i+1 < len(nodes); i += 2 {
			docks[nodes[i]] = nodes[i+1]
			docks[nodes[i+1]] = nodes[i]
		}
		// an odd dock out leads back to itself, so every pair stays symmetric
		if len(nodes)%2 == 1 {
			last := nodes[len(nodes)-1]
			docks[last] = last
		}
	case bootstrap.DockOneWay:
		if len(nodes) < 2 {
			return docks
		}
		for _, from := range nodes {
			to := from
			for to == from {
				to = nodes[rng.IntN(len(nodes))]
			}
			docks[from] = to
		}
	}
	return docks
}

// chooseStart picks the starting node among the game's allowed locations.
func chooseStart(rng *rand.Rand, game bootstrap.Game, w *world.World, mode bootstrap.StartMode) (world.NodeIndex, bool) {
	allowed := game.StartingLocations(w)
	if len(allowed) == 0 {
		return world.NoNode, false
	}
	if mode == bootstrap.StartRandom {
		return allowed[rng.IntN(len(allowed))], true
	}
	return allowed[0], true
}

// Package object holds the simulated entities of a round: snakes and food.
//
// Entities never draw themselves. They expose the state a renderer needs
// (positions, segment shapes, animation phase) and leave pixel output to
// the caller.
package object

// Rand is the random source used for spawning and wandering.
// *rand.Rand from golang.org/x/exp/rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Destructible is implemented by entities that leave the round one-way.
type Destructible interface {
	// MarkEaten flags the entity for removal on the next cleanup pass.
	MarkEaten()
	// Eaten reports whether the entity has been flagged.
	Eaten() bool
}

var _ Destructible = (*Food)(nil)

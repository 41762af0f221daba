package raffle

import (
	"math/bits"

	"github.com/KirkDiggler/raffled/internal/models"
)

// drawn marks a pool entry whose user has left the roster as a winner
const drawn = -1

type slot struct {
	stake models.Stake
	index int
}

// pool is the participant registry: every registered user with their stake,
// plus a dense roster of the users still eligible to win. slots[u].index is
// the position of u in roster, or drawn.
type pool struct {
	slots  map[models.User]slot
	roster []models.User
	total  models.Stake
}

func newPool() *pool {
	return &pool{
		slots:  make(map[models.User]slot),
		roster: make([]models.User, 0, PlayersRequiredToStart),
	}
}

func (p *pool) contains(u models.User) bool {
	_, ok := p.slots[u]
	return ok
}

func (p *pool) len() int {
	return len(p.roster)
}

// canAdd reports whether stake can be added to the running total without overflow
func (p *pool) canAdd(stake models.Stake) bool {
	_, carry := bits.Add64(uint64(p.total), uint64(stake), 0)
	return carry == 0
}

func (p *pool) add(u models.User, stake models.Stake) {
	p.slots[u] = slot{stake: stake, index: len(p.roster)}
	p.roster = append(p.roster, u)
	p.total += stake
}

// removeAt swap-removes the roster entry at index and returns it.
// The user keeps its slot, marked drawn.
func (p *pool) removeAt(index int) models.User {
	removed := p.roster[index]
	last := len(p.roster) - 1

	if index != last {
		moved := p.roster[last]
		p.roster[index] = moved

		s := p.slots[moved]
		s.index = index
		p.slots[moved] = s
	}

	p.roster[last] = models.User{}
	p.roster = p.roster[:last]

	s := p.slots[removed]
	s.index = drawn
	p.slots[removed] = s

	return removed
}

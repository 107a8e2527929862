// Package nim is an N-player take-away game: players in turn remove between
// one and MaxTake stones from a pile, and whoever takes the last stone wins.
package nim

import (
	"fmt"
	"mcgs/game"
	"strconv"
)

const (
	Win  = 1.0
	Loss = 0.0
)

type Take int

func (t Take) Key() string {
	return strconv.Itoa(int(t))
}

type State struct {
	Pile    int
	MaxTake int
	Current int
	Count   int // Number of players
	Winner  int // -1 until the last stone is taken
}

func New(players, pile, maxTake int) *State {
	return &State{Pile: pile, MaxTake: maxTake, Count: players, Winner: -1}
}

func (s *State) Copy() game.State {
	c := *s
	return &c
}

func (s *State) Key() string {
	return fmt.Sprintf("%d:%d:%d", s.Pile, s.Current, s.Winner)
}

func (s *State) Player() int {
	return s.Current
}

func (s *State) Players() int {
	return s.Count
}

func (s *State) Terminal() bool {
	return s.Pile == 0
}

// Score is Win for the winner and Loss for everyone else; unfinished games
// score the mover by whether the pile leaves them a winning take.
func (s *State) Score(player int) float64 {
	if s.Terminal() {
		if player == s.Winner {
			return Win
		}
		return Loss
	}
	if s.Count == 2 && player == s.Current && s.Pile%(s.MaxTake+1) != 0 {
		return (Win + Loss) / 2
	}
	return Loss
}

type Model struct{}

func (Model) Setup(state game.State) {
	s := state.(*State)
	s.Current = 0
	s.Winner = -1
}

func (Model) Actions(state game.State) []game.Action {
	s := state.(*State)
	actions := []game.Action{}
	for take := 1; take <= s.MaxTake && take <= s.Pile; take++ {
		actions = append(actions, Take(take))
	}
	return actions
}

func (Model) Next(state game.State, action game.Action) {
	s := state.(*State)
	take := int(action.(Take))
	if take < 1 || take > s.Pile || take > s.MaxTake {
		panic(fmt.Sprintf("illegal take %d from pile %d", take, s.Pile))
	}
	s.Pile -= take
	if s.Pile == 0 {
		s.Winner = s.Current
		return
	}
	s.Current = (s.Current + 1) % s.Count
}

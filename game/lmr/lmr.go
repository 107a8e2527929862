// Package lmr is a one-player game in which the player picks Left, Middle or
// Right for a fixed number of turns and collects the reward of each choice.
package lmr

import (
	"fmt"
	"mcgs/game"
)

type Action string

const (
	Left   Action = "Left"
	Middle Action = "Middle"
	Right  Action = "Right"
)

func (a Action) Key() string {
	return string(a)
}

var Actions = []Action{Left, Middle, Right}

// Rewards collected per choice.
var Rewards = map[Action]float64{Left: 1, Middle: 0.5, Right: 0}

// State counts choices rather than recording their order, so different
// orderings of the same choices are the same state.
type State struct {
	Turns  int
	Counts map[Action]int
	Total  float64
}

func New(turns int) *State {
	return &State{Turns: turns, Counts: map[Action]int{}}
}

func (s *State) turn() int {
	turn := 0
	for _, count := range s.Counts {
		turn += count
	}
	return turn
}

func (s *State) Copy() game.State {
	counts := make(map[Action]int, len(s.Counts))
	for action, count := range s.Counts {
		counts[action] = count
	}
	return &State{Turns: s.Turns, Counts: counts, Total: s.Total}
}

func (s *State) Key() string {
	return fmt.Sprintf("%d/%d/%d/%d", s.Turns, s.Counts[Left], s.Counts[Middle], s.Counts[Right])
}

func (s *State) Player() int {
	return 0
}

func (s *State) Players() int {
	return 1
}

func (s *State) Terminal() bool {
	return s.turn() >= s.Turns
}

func (s *State) Score(int) float64 {
	return s.Total
}

type Model struct{}

func (Model) Setup(state game.State) {
	s := state.(*State)
	s.Counts = map[Action]int{}
	s.Total = 0
}

func (Model) Actions(state game.State) []game.Action {
	if state.Terminal() {
		return nil
	}
	actions := make([]game.Action, len(Actions))
	for i, action := range Actions {
		actions[i] = action
	}
	return actions
}

func (Model) Next(state game.State, action game.Action) {
	s := state.(*State)
	a := action.(Action)
	s.Counts[a]++
	s.Total += Rewards[a]
}

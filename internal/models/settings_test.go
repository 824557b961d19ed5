package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTopStarCapsAtFive(t *testing.T) {
	s := DefaultSettings()
	for i := 0; i < MaxTopStarsPerYear; i++ {
		require.True(t, s.AddTopStar("2026"))
	}

	before := append([]TopStudent(nil), s.StarsFor("2026").Students...)
	assert.False(t, s.AddTopStar("2026"))
	assert.Equal(t, before, s.StarsFor("2026").Students)
	assert.Equal(t, 5, s.StarsFor("2026").Students[4].Rank)
}

func TestAddTopStarCreatesUnknownYear(t *testing.T) {
	s := DefaultSettings()
	require.True(t, s.AddTopStar("2030"))

	group := s.StarsFor("2030")
	require.NotNil(t, group)
	assert.Equal(t, []TopStudent{{Rank: 1}}, group.Students)
}

func TestRemoveTopStarKeepsRanks(t *testing.T) {
	s := DefaultSettings()
	s.AddTopStar("2027")
	s.AddTopStar("2027")
	s.AddTopStar("2027")

	require.True(t, s.RemoveTopStar("2027", 0))
	ranks := []int{}
	for _, st := range s.StarsFor("2027").Students {
		ranks = append(ranks, st.Rank)
	}
	assert.Equal(t, []int{2, 3}, ranks)
	assert.False(t, s.RemoveTopStar("2027", 5))
	assert.False(t, s.RemoveTopStar("1999", 0))
}

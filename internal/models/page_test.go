package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestNewPage(t *testing.T) {
	p := NewPage(seq(7), 1, 3)
	assert.Equal(t, []int{1, 2, 3}, p.Items)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
	require.NotNil(t, p.NextPage)
	assert.Equal(t, 2, *p.NextPage)
	assert.Nil(t, p.PrevPage)

	p = NewPage(seq(7), 3, 3)
	assert.Equal(t, []int{7}, p.Items)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
	require.NotNil(t, p.PrevPage)
	assert.Equal(t, 2, *p.PrevPage)
}

func TestNewPage_OutOfRangeIsEmpty(t *testing.T) {
	p := NewPage(seq(4), 9, 3)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPage_ClampsPage(t *testing.T) {
	p := NewPage(seq(2), 0, 3)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, []int{1, 2}, p.Items)
}

func TestNewPageFromWindow(t *testing.T) {
	p := NewPageFromWindow(seq(4), 2, 3)
	assert.Equal(t, []int{1, 2, 3}, p.Items)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPageFromWindow([]int{}, 5, 3)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
}

package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name string
		req  PageRequest
		want int
	}{
		{"first page", PageRequest{Page: 1, PageSize: 10}, 0},
		{"third page", PageRequest{Page: 3, PageSize: 20}, 40},
		{"zero page", PageRequest{Page: 0, PageSize: 10}, 0},
		{"negative page", PageRequest{Page: -4, PageSize: 10}, 0},
		{"zero size", PageRequest{Page: 5, PageSize: 0}, 0},
		{"huge page saturates", PageRequest{Page: 1<<62 + 1, PageSize: 20}, math.MaxInt},
		{"max page", PageRequest{Page: math.MaxInt, PageSize: 5}, math.MaxInt},
		{"largest exact offset", PageRequest{Page: math.MaxInt/50 + 1, PageSize: 50}, math.MaxInt / 50 * 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Offset())
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	assert.Equal(t, StatusFilter(StatusReplied), ParseStatusFilter("replied"))
	assert.Equal(t, FilterAll, ParseStatusFilter("archived"))
	assert.Equal(t, FilterAll, ParseStatusFilter(""))

	status, ok := ParseStatusFilter("unread").Status()
	assert.True(t, ok)
	assert.Equal(t, StatusUnread, status)

	_, ok = FilterAll.Status()
	assert.False(t, ok)
}

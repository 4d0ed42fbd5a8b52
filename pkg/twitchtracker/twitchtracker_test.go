package twitchtracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "clipfetch/pkg/errors"
)

func TestBuildClipsURL(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		date     string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple account",
			account:  "somechannel",
			date:     "20260821",
			expected: "https://twitchtracker.com/somechannel/clips#20260821-20260821",
		},
		{
			name:     "account with underscore and digits",
			account:  "some_channel42",
			date:     "20250101",
			expected: "https://twitchtracker.com/some_channel42/clips#20250101-20250101",
		},
		{
			name:    "empty account",
			account: "",
			date:    "20260821",
			wantErr: true,
		},
		{
			name:    "account with slash",
			account: "some/channel",
			date:    "20260821",
			wantErr: true,
		},
		{
			name:    "account with space",
			account: "some channel",
			date:    "20260821",
			wantErr: true,
		},
		{
			name:    "date too short",
			account: "somechannel",
			date:    "2026821",
			wantErr: true,
		},
		{
			name:    "date not a date",
			account: "somechannel",
			date:    "20261345",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BuildClipsURL(tt.account, tt.date)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.CategoryInvalidInput, errs.CategoryOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestBuildClipsURLDeterministic(t *testing.T) {
	first, err := BuildClipsURL("somechannel", "20260821")
	require.NoError(t, err)
	second, err := BuildClipsURL("somechannel", "20260821")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDateForOffset(t *testing.T) {
	today := DateForOffset(0)
	assert.Equal(t, time.Now().Format(DateLayout), today)

	yesterday := DateForOffset(1)
	assert.Equal(t, time.Now().AddDate(0, 0, -1).Format(DateLayout), yesterday)

	// Every offset must stay parseable as a URL date fragment
	_, err := time.Parse(DateLayout, DateForOffset(30))
	assert.NoError(t, err)
}

func TestIsValidAccount(t *testing.T) {
	assert.True(t, IsValidAccount("somechannel"))
	assert.True(t, IsValidAccount("some_channel_42"))
	assert.True(t, IsValidAccount("A"))
	assert.False(t, IsValidAccount(""))
	assert.False(t, IsValidAccount("has space"))
	assert.False(t, IsValidAccount("has/slash"))
	assert.False(t, IsValidAccount("has#hash"))
	assert.False(t, IsValidAccount("waaaaaaaaaaaaaaaaaaaaaytoolong"))
}

func TestSanitizeAccount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"@somechannel", "somechannel"},
		{"somechannel/", "somechannel"},
		{"  somechannel  ", "somechannel"},
		{"somechannel", "somechannel"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeAccount(tt.in))
	}
}

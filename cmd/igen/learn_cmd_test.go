package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	min, max, err := parseRange("1:3")
	require.NoError(t, err)
	assert.Equal(t, 1, min)
	assert.Equal(t, 3, max)

	for _, s := range []string{"", "3", "3:1", "a:2", "-1:2"} {
		_, _, err := parseRange(s)
		assert.Error(t, err, s)
	}
}

func TestLearnCmdValidate(t *testing.T) {
	c := &learnCmdConfig{rootCmdConfig: &rootCmdConfig{}}
	assert.Error(t, c.Validate())
	c.domainInput = "dom.txt"
	assert.NoError(t, c.Validate())
	c.smallLeaves = "2:5"
	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.minLeafConfs)
	assert.Equal(t, 5, c.maxLeafConfs)
}

func TestCliParserCommands(t *testing.T) {
	names := []string{}
	for _, c := range cliParser().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"version", "learn", "classify", "sample"}, names)
}

package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDOT(t *testing.T) {
	comp, err := NewResolver(logicLibrary()).ResolveComponent("nor")
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteDOT(&b, comp))
	out := b.String()

	assert.True(t, strings.HasPrefix(out, "digraph \"nor\" {\n"))
	assert.Contains(t, out, `"x" [shape = box, style = bold];`)
	assert.Contains(t, out, `"q" [shape = box, peripheries = 2];`)
	assert.Contains(t, out, `"or[0]" [shape = folder];`)
	assert.Contains(t, out, `"y" -> "or[0]" [label = "in 1"];`)
	assert.Contains(t, out, `"not[1]" -> "q" [style = dashed, label = "out 0"];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestWriteDOT_PartLabels(t *testing.T) {
	comp, err := NewResolver(logicLibrary()).ResolveComponent("or")
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteDOT(&b, comp))
	out := b.String()

	assert.Contains(t, out, `"joiner" [shape = box, label = "joiner\nspring pull", peripheries = 2];`)
	assert.Contains(t, out, `"x" -> "joiner" [label = "rod push"];`)

	comp, err = NewResolver(logicLibrary()).ResolveComponent("not")
	require.NoError(t, err)
	b.Reset()
	require.NoError(t, WriteDOT(&b, comp))
	assert.Contains(t, b.String(), `"my_gear" [shape = circle, label = "my_gear\n2 teeth"];`)
	assert.Contains(t, b.String(), `"my_gear" -> "y" [label = "offset 1"];`)
}

package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArgs() Args {
	return Args{
		PersonalInfo: map[string]any{
			"name": "Alex Rivera", "title": "Engineer", "email": "a@example.com",
			"phone": "1", "location": "Lisbon", "summary": "Hi",
		},
		WorkExperience: []any{
			map[string]any{"id": "we-1", "company": "Northwind", "position": "Dev"},
		},
		Education: []any{},
		Skills: []any{
			map[string]any{"id": "1", "name": "Go"},
		},
		Projects: []any{},
		Colors: map[string]any{
			"primary": "#000000", "secondary": "#666666",
			"accent": "#0066cc", "background": "#ffffff",
		},
	}
}

func TestExecuteRoundTrip(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('div', null, skills.map(s => React.createElement('span', null, s.name)))`
	repaired := Repair(code)
	require.True(t, Validate(repaired).IsValid)

	node, err := ex.Execute(context.Background(), repaired, testArgs())
	require.NoError(t, err)
	require.Equal(t, "div", node.Tag)
	require.Len(t, node.Children, 1)

	span, ok := node.Children[0].(*Node)
	require.True(t, ok)
	assert.Equal(t, "span", span.Tag)
	assert.Equal(t, "1", span.Key)
	require.Len(t, span.Children, 1)
	assert.Equal(t, "Go", span.Children[0])
}

func TestExecuteInvalidCode(t *testing.T) {
	ex := NewExecutor(nil)
	_, err := ex.Execute(context.Background(), "return React.createElement('div', null,", testArgs())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Invalid template code:"), err.Error())
}

func TestExecuteRuntimeFailure(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('div', null, undefinedFn())`
	_, err := ex.Execute(context.Background(), code, testArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefinedFn")
}

func TestExecuteNothingRenderable(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return true ? null : React.createElement('div', null, 'x')`
	_, err := ex.Execute(context.Background(), code, testArgs())
	assert.ErrorIs(t, err, ErrNothingRenderable)
}

func TestSandboxIsolation(t *testing.T) {
	ex := NewExecutor(nil)
	// nothing outside the seven arguments and the preamble is reachable
	for _, probe := range []string{
		`return React.createElement('div', null, process.env.HOME)`,
		`return React.createElement('div', null, window.location)`,
		`return React.createElement('div', null, require('os'))`,
		`return React.createElement('div', null, globalThis)`,
	} {
		_, err := ex.Execute(context.Background(), probe, testArgs())
		require.Error(t, err, probe)
		assert.Contains(t, err.Error(), "is not defined", probe)
	}
}

func TestPreambleBindings(t *testing.T) {
	ex := NewExecutor(nil)

	// safeRender turns objects into JSON text instead of crashing the child
	node, err := ex.Execute(context.Background(),
		`return React.createElement('div', null, safeRender(personalInfo))`, testArgs())
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	text, _ := node.Children[0].(string)
	assert.Contains(t, text, `"name":"Alex Rivera"`)

	// bare objects as children are rejected with a pointer at safeRender
	_, err = ex.Execute(context.Background(),
		`return React.createElement('div', null, personalInfo)`, testArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safeRender")
}

func TestExecuteTemplateLiteralAndColors(t *testing.T) {
	ex := NewExecutor(nil)
	code := "return React.createElement('h1', { style: { color: templateColors.accent } }, `Hello ${personalInfo.name}`)"
	node, err := ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	assert.Equal(t, "Hello Alex Rivera", node.Children[0])
	html := node.HTML()
	assert.Contains(t, html, "color:#0066cc")
	assert.Contains(t, html, "<h1")
}

func TestExecuteKeyFallsBackToIndex(t *testing.T) {
	ex := NewExecutor(nil)
	args := testArgs()
	args.Skills = []any{map[string]any{"name": "Rust"}} // no id
	code := Repair(`return React.createElement('ul', null, skills.map(s => React.createElement('li', null, s.name)))`)
	node, err := ex.Execute(context.Background(), code, args)
	require.NoError(t, err)
	li := node.Children[0].(*Node)
	assert.Equal(t, "0", li.Key)
}

func TestExecuteObjectComparison(t *testing.T) {
	ex := NewExecutor(nil)

	// comparing two distinct objects must evaluate, not crash
	code := `return personalInfo === templateColors ? React.createElement('div', null, 'same') : React.createElement('div', null, 'different')`
	node, err := ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	assert.Equal(t, "different", node.Children[0])

	// identity: the same binding is equal to itself
	code = `return personalInfo === personalInfo ? React.createElement('div', null, 'same') : React.createElement('div', null, 'different')`
	node, err = ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	assert.Equal(t, "same", node.Children[0])

	// includes walks the list with the same comparison
	code = `return React.createElement('div', null, skills.includes(personalInfo) ? 'has' : 'lacks')`
	node, err = ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	assert.Equal(t, "lacks", node.Children[0])
}

func TestLooseEqual(t *testing.T) {
	m := map[string]any{"a": float64(1)}
	l := []any{"x"}
	assert.True(t, looseEqual(nil, nil))
	assert.False(t, looseEqual(nil, "x"))
	assert.True(t, looseEqual("a", "a"))
	assert.True(t, looseEqual(float64(2), float64(2)))
	assert.False(t, looseEqual(float64(2), "2"))
	assert.True(t, looseEqual(m, m))
	assert.False(t, looseEqual(m, map[string]any{"a": float64(1)}))
	assert.True(t, looseEqual(l, l))
	assert.False(t, looseEqual(l, []any{"x"}))
	assert.False(t, looseEqual(m, l))
}

func TestExecuteConvertsPanicsToErrors(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('div', null, 'ok')`

	// poison the parse cache so evaluation panics; the failure must come back
	// as a runtime error instead of killing the process
	sum := sha256.Sum256([]byte(code))
	ex.cache.Add(hex.EncodeToString(sum[:]), Expr(&ObjectExpr{Keys: []string{"a"}}))

	_, err := ex.Execute(context.Background(), code, testArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template execution failed")
}

func TestExecuteStepBudget(t *testing.T) {
	old := stepBudget
	stepBudget = 5
	defer func() { stepBudget = old }()

	ex := NewExecutor(nil)
	code := `return React.createElement('div', null, skills.map(s => s.name).join(', '))`
	_, err := ex.Execute(context.Background(), code, testArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step budget")
}

func TestExecuteHonorsContextDeadline(t *testing.T) {
	ex := NewExecutor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// enough evaluation steps to guarantee a deadline poll
	code := "return React.createElement('div', null, " + strings.Repeat("1 + ", 4200) + "1)"
	_, err := ex.Execute(ctx, code, testArgs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExecuteConditionalAndJoin(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('p', null, skills.length > 0 ? skills.map(s => s.name).join(', ') : 'none')`
	node, err := ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	assert.Equal(t, "Go", node.Children[0])
}

func TestExecuteReusesParseCache(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('div', null, personalInfo.name)`
	for i := 0; i < 3; i++ {
		node, err := ex.Execute(context.Background(), code, testArgs())
		require.NoError(t, err)
		assert.Equal(t, "Alex Rivera", node.Children[0])
	}
	assert.Equal(t, 1, ex.cache.Len())
}

func TestFormattedAndUnformattedBehaveIdentically(t *testing.T) {
	ex := NewExecutor(nil)
	code := `return React.createElement('div',null,React.createElement('h1',null,personalInfo.name),skills.map((s,i)=>React.createElement('span',{key:s.id},s.name)))`
	formatted := Format(code)
	require.NotEqual(t, code, formatted)

	a, err := ex.Execute(context.Background(), code, testArgs())
	require.NoError(t, err)
	b, err := ex.Execute(context.Background(), formatted, testArgs())
	require.NoError(t, err)
	assert.Equal(t, a.HTML(), b.HTML())
}

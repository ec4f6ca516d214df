package rule_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/mcskg/rule"
)

func TestParseFact_RoundTrip(t *testing.T) {
	for _, tc := range canonical {
		t.Run(tc.statement, func(t *testing.T) {
			cr := specialize(t, tc.statement)

			decoded := rule.ConcreteRule{ID: cr.ID, Expression: cr.Expression}
			fact, err := decoded.Resolve()
			require.NoError(t, err)
			assert.Equal(t, cr.Fact, fact)
		})
	}
}

func TestParseFact_KeepsWholeNames(t *testing.T) {
	tests := []struct {
		statement string
		want      rule.Fact
	}{
		{"The result of painting is a (red) car.", rule.ProductOutput{Product: "(red) car", Process: "painting"}},
		{"After (pre)drilling you should deburr.", rule.ProcessPrecedence{Preceding: "(pre)drilling", Succeeding: "deburr"}},
	}
	for _, tc := range tests {
		t.Run(tc.statement, func(t *testing.T) {
			cr := specialize(t, tc.statement)
			require.Equal(t, tc.want, cr.Fact)

			fact, err := rule.ParseFact(cr.ID, cr.Expression)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fact)
		})
	}
}

func TestParseFact_Errors(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		_, err := rule.ParseFact(9, "∀x (a(x) → ∃y (b(y) ∧ isOutputOf(x, y)))")
		assert.ErrorIs(t, err, rule.ErrUnknownRuleType)
	})

	t.Run("predicate does not match id", func(t *testing.T) {
		_, err := rule.ParseFact(rule.TemplateProcessPrecedence, "∀x (a(x) → ∃y (b(y) ∧ isOutputOf(x, y)))")
		assert.ErrorIs(t, err, rule.ErrUnknownRuleType)
		assert.True(t, rule.IsInputError(err))
	})

	t.Run("trailing text", func(t *testing.T) {
		_, err := rule.ParseFact(rule.TemplateProductMaterial, "∀x (chair(x) → ∃y (wood(y) ∧ partOf(y, x))) extra")
		assert.ErrorIs(t, err, rule.ErrMalformedExpression)
	})

	t.Run("empty entity name", func(t *testing.T) {
		_, err := rule.ParseFact(rule.TemplateProductMaterial, "∀x ((x) → ∃y (wood(y) ∧ partOf(y, x)))")
		assert.ErrorIs(t, err, rule.ErrMalformedExpression)
	})

	t.Run("missing entity atom", func(t *testing.T) {
		_, err := rule.ParseFact(rule.TemplateAssemblySteps, "∀x (Gearbox(x) → ∃y (picking(y) ∧ partOf(y, x)))")
		require.Error(t, err)
		assert.ErrorIs(t, err, rule.ErrMalformedExpression)

		var parseErr *rule.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, rule.TemplateAssemblySteps, parseErr.TemplateID)
	})
}

func TestConcreteRule_ResolveReadsExpression(t *testing.T) {
	cr := specialize(t, "The chair is made of wood.")

	t.Run("fact agrees", func(t *testing.T) {
		got, err := cr.Resolve()
		require.NoError(t, err)
		assert.Equal(t, rule.ProductMaterial{Product: "chair", Material: "wood"}, got)
	})

	t.Run("expression edited", func(t *testing.T) {
		edited := cr
		edited.Expression = "∀x (table(x) → ∃y (steel(y) ∧ partOf(y, x)))"
		_, err := edited.Resolve()
		assert.ErrorIs(t, err, rule.ErrMalformedExpression)

		edited.Fact = nil
		got, err := edited.Resolve()
		require.NoError(t, err)
		assert.Equal(t, rule.ProductMaterial{Product: "table", Material: "steel"}, got)
	})

	t.Run("fact of another template", func(t *testing.T) {
		other := cr
		other.ID = rule.TemplateAssemblySteps
		_, err := other.Resolve()
		assert.ErrorIs(t, err, rule.ErrUnknownRuleType)
	})
}

func TestConcreteRule_UUIDIsStable(t *testing.T) {
	a := specialize(t, "The chair is made of wood.")
	b := rule.ConcreteRule{ID: a.ID, Expression: a.Expression}
	assert.Equal(t, a.UUID(), b.UUID())

	c := rule.ConcreteRule{ID: rule.TemplateAssemblySteps, Expression: a.Expression}
	assert.NotEqual(t, a.UUID(), c.UUID())
}

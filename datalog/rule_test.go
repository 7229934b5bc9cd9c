package datalog

import (
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleApplyWithConstraintFiltersBindings(t *testing.T) {
	syms := DefaultSymbolTable()
	age := syms.Insert("age")
	adult := syms.Insert("adult")

	facts := FactSet{
		{Predicate{Name: age, IDs: []ID{String("alice"), Integer(30)}}},
		{Predicate{Name: age, IDs: []ID{String("bob"), Integer(10)}}},
	}

	name, years := Variable(1), Variable(2)
	rule := Rule{
		Head: Predicate{Name: adult, IDs: []ID{name}},
		Body: []Predicate{{Name: age, IDs: []ID{name, years}}},
		Constraints: []Constraint{{
			Name:    years,
			Checker: IntegerComparisonChecker{Comparison: IntegerLargerOrEqual, Value: Integer(18)},
		}},
	}

	var newFacts FactSet
	require.NoError(t, rule.Apply(&facts, &newFacts))
	require.Len(t, newFacts, 1)
	require.Equal(t, String("alice"), newFacts[0].IDs[0])
}

func TestConstraintCheckers(t *testing.T) {
	t.Run("string prefix", func(t *testing.T) {
		c := StringComparisonChecker{Comparison: StringPrefix, Value: String("/folder/")}
		ok, err := c.Check(String("/folder/file.txt"))
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("string regexp", func(t *testing.T) {
		c := StringRegexpChecker{Regexp: regexp.MustCompile(`^\d+$`)}
		ok, err := c.Check(String("1234"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = c.Check(String("12a4"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("bytes in set", func(t *testing.T) {
		b := Bytes([]byte{0xAB, 0xCD})
		c := BytesInChecker{Set: map[string]struct{}{hex.EncodeToString(b): {}}}
		ok, err := c.Check(b)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("date after", func(t *testing.T) {
		c := DateComparisonChecker{Comparison: DateAfter, Value: Date(100)}
		ok, err := c.Check(Date(200))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = c.Check(Date(50))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("type mismatch errors", func(t *testing.T) {
		c := IntegerComparisonChecker{Comparison: IntegerEqual, Value: Integer(1)}
		_, err := c.Check(String("nope"))
		require.Error(t, err)
	})
}

func TestUnifyRejectsConflictingBindings(t *testing.T) {
	syms := DefaultSymbolTable()
	pred := syms.Insert("pred")
	x := Variable(1)

	base := bindings{x: Integer(1)}
	_, ok := unify(
		Predicate{Name: pred, IDs: []ID{x}},
		Predicate{Name: pred, IDs: []ID{Integer(2)}},
		base,
	)
	require.False(t, ok)
}

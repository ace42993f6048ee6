package merge_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zspec "github.com/apotema/zspec"
	"github.com/apotema/zspec/internal/coerce"
	"github.com/apotema/zspec/internal/merge"
	"github.com/apotema/zspec/internal/shape"
)

type person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type account struct {
	Owner  person `json:"owner"`
	Active bool   `json:"active"`
}

type payment struct {
	zspec.Union
	Card *struct {
		Number string `json:"number"`
		Expiry string `json:"expiry"`
	} `json:"card"`
	Cash *zspec.Unit `json:"cash"`
}

type order struct {
	Pay payment `json:"pay"`
}

func buildAs[T any](t *testing.T, layers ...zspec.Desc) (T, zspec.Issues) {
	t.Helper()
	sh, err := shape.Of(reflect.TypeFor[T]())
	require.NoError(t, err)
	rv, iss := merge.Build(coerce.Env{}, sh, layers)
	if len(iss) > 0 {
		var zero T
		return zero, iss
	}
	return rv.Interface().(T), nil
}

func TestBuild_HighestLayerWins(t *testing.T) {
	got, iss := buildAs[person](t,
		zspec.Desc{"id": 1, "name": "base"},
		zspec.Desc{"name": "variant"},
		zspec.Desc{"name": "call-site"},
	)
	require.Empty(t, iss)
	assert.Equal(t, person{ID: 1, Name: "call-site"}, got)
}

func TestBuild_DeepPartialMergePreservesSiblings(t *testing.T) {
	got, iss := buildAs[account](t,
		zspec.Desc{"owner": zspec.Desc{"id": 7, "name": "base"}, "active": true},
		zspec.Desc{"owner": zspec.Desc{"name": "patched"}},
	)
	require.Empty(t, iss)
	assert.Equal(t, account{Owner: person{ID: 7, Name: "patched"}, Active: true}, got)
}

func TestBuild_WholeTypedValueReplacesInsteadOfMerging(t *testing.T) {
	got, iss := buildAs[account](t,
		zspec.Desc{"owner": zspec.Desc{"id": 7, "name": "base"}, "active": true},
		zspec.Desc{"owner": person{ID: 9, Name: "whole"}},
	)
	require.Empty(t, iss)
	assert.Equal(t, person{ID: 9, Name: "whole"}, got.Owner)
}

func TestBuild_UnionSameTagMergesPayload(t *testing.T) {
	got, iss := buildAs[order](t,
		zspec.Desc{"pay": zspec.Desc{"card": zspec.Desc{"number": "4111", "expiry": "01/30"}}},
		zspec.Desc{"pay": zspec.Desc{"card": zspec.Desc{"expiry": "12/31"}}},
	)
	require.Empty(t, iss)
	require.NotNil(t, got.Pay.Card)
	assert.Equal(t, "4111", got.Pay.Card.Number)
	assert.Equal(t, "12/31", got.Pay.Card.Expiry)
}

func TestBuild_UnionDifferentTagReplacesWholesale(t *testing.T) {
	got, iss := buildAs[order](t,
		zspec.Desc{"pay": zspec.Desc{"card": zspec.Desc{"number": "4111", "expiry": "01/30"}}},
		zspec.Desc{"pay": zspec.Desc{"cash": nil}},
	)
	require.Empty(t, iss)
	assert.Nil(t, got.Pay.Card)
	assert.NotNil(t, got.Pay.Cash)
}

func TestBuild_MissingFieldNamesFieldAndType(t *testing.T) {
	_, iss := buildAs[person](t, zspec.Desc{"id": 1})
	require.Len(t, iss, 1)
	assert.Equal(t, zspec.CodeMissingValue, iss[0].Code)
	assert.Equal(t, "/name", iss[0].Path)
}

func TestBuild_NilLayersAreSkipped(t *testing.T) {
	got, iss := buildAs[person](t,
		zspec.Desc{"id": 1, "name": "base"},
		nil,
	)
	require.Empty(t, iss)
	assert.Equal(t, person{ID: 1, Name: "base"}, got)
}

func TestBuild_NonCompositeTargetRejected(t *testing.T) {
	sh, err := shape.Of(reflect.TypeFor[int]())
	require.NoError(t, err)
	_, iss := merge.Build(coerce.Env{}, sh, nil)
	require.Len(t, iss, 1)
	assert.Equal(t, zspec.CodeInvalidType, iss[0].Code)
}

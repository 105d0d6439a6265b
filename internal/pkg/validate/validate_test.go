package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserID  string `json:"userId" validate:"required,dockey"`
	UserKey string `json:"userKey" validate:"required,dockey"`
	Token   string `json:"token" validate:"required"`
}

func TestStruct_AllPresent(t *testing.T) {
	assert.NoError(t, Struct(sample{UserID: "U1", UserKey: "K1", Token: "t"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{UserID: "U1"})
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"userKey", "token"}, fe.Fields)
	assert.Equal(t, "missing or invalid fields: userKey, token", err.Error())
}

func TestStruct_DocKeyRejectsPathCharacters(t *testing.T) {
	err := Struct(sample{UserID: "../tokens/K2", UserKey: "K1", Token: "t"})
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"userId"}, fe.Fields)

	assert.Error(t, Struct(sample{UserID: "U1", UserKey: "K1/../K2", Token: "t"}))
	assert.NoError(t, Struct(sample{UserID: "U1", UserKey: "K1", Token: "tok/with.dots"}))
}

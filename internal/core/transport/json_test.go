package transport

import (
	"net/http"
	"testing"

	"driver-sync/internal/core/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeData(t *testing.T) {
	t.Run("Envelope", func(t *testing.T) {
		var out []int
		err := DecodeData(&Response{StatusCode: http.StatusOK, Body: []byte(`{"message":"ok","data":[1,2,3]}`)}, &out)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, out)
	})

	t.Run("BareBody", func(t *testing.T) {
		var out []int
		err := DecodeData(&Response{StatusCode: http.StatusOK, Body: []byte(`[4,5]`)}, &out)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5}, out)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		var out []int
		err := DecodeData(&Response{StatusCode: http.StatusNoContent}, &out)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := DecodeData(&Response{StatusCode: http.StatusUnprocessableEntity, Body: []byte(`{"message":"Waypoint already delivered"}`)}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apierror.ErrValidation)
		assert.Equal(t, "Waypoint already delivered", apierror.MessageOf(err))
	})

	t.Run("ServerError", func(t *testing.T) {
		err := DecodeData(&Response{StatusCode: http.StatusInternalServerError, Body: []byte(`oops`)}, nil)
		assert.ErrorIs(t, err, apierror.ErrServer)
	})
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int
	}{
		{"Envelope", `{"data":[1,2]}`, []int{1, 2}},
		{"Paginated", `{"data":{"current_page":2,"data":[3,4]}}`, []int{3, 4}},
		{"Bare", `[5]`, []int{5}},
		{"NullData", `{"message":"No routes","data":null}`, nil},
		{"EmptyPage", `{"data":{"current_page":3,"data":[]}}`, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []int
			err := DecodeList(&Response{StatusCode: http.StatusOK, Body: []byte(tt.body)}, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("Error", func(t *testing.T) {
		var out []int
		err := DecodeList(&Response{StatusCode: http.StatusUnauthorized}, &out)
		assert.ErrorIs(t, err, apierror.ErrAuth)
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Route accepted", Message(&Response{Body: []byte(`{"message":"Route accepted"}`)}))
	assert.Equal(t, "", Message(&Response{Body: []byte(`[]`)}))
}

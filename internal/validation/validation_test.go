package validation

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

type sample struct {
	SenderID int64   `json:"senderId" validate:"gt=0"`
	Title    string  `json:"title" validate:"notblank,max=30"`
	Body     *string `json:"body" validate:"omitnil,notblank,max=250"`
}

func TestStruct(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		require.NoError(t, Struct(sample{SenderID: 1, Title: "Hi"}))
	})

	t.Run("reports every failing field by its json name", func(t *testing.T) {
		req := require.New(t)

		err := Struct(sample{SenderID: 0, Title: "   ", Body: lo.ToPtr(strings.Repeat("b", 251))})

		req.True(apperrors.IsValidation(err))
		details := apperrors.ToDomainError(err).Details
		req.Equal("must be greater than 0", details["senderId"])
		req.Equal("must not be blank", details["title"])
		req.Equal("must be at most 250 characters", details["body"])
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		require.NoError(t, Struct(sample{SenderID: 1, Title: strings.Repeat("ñ", 30)}))
		require.Error(t, Struct(sample{SenderID: 1, Title: strings.Repeat("ñ", 31)}))
	})

	t.Run("nil optional fields are skipped", func(t *testing.T) {
		require.NoError(t, Struct(sample{SenderID: 3, Title: "x", Body: nil}))
	})
}

func TestStruct_PresentEmptyOptionalField(t *testing.T) {
	err := Struct(sample{SenderID: 3, Title: "x", Body: lo.ToPtr("")})

	require.True(t, apperrors.IsValidation(err))
	require.Equal(t, "must not be blank", apperrors.ToDomainError(err).Details["body"])
}
